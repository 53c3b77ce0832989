package strategy

import (
	"testing"
	"time"

	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// uptrend rises by one every day with constant volume: aligned and rising but
// too far above MA20 for a pullback and with no loss to define RSI.
func uptrend(n int) model.PriceSeries {
	s := model.PriceSeries{Symbol: "UP"}
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		s.Bars = append(s.Bars, model.PriceBar{Date: day0.AddDate(0, 0, i), Close: c, High: c + 1, Low: c - 1, Volume: 1e6})
	}
	return s
}

// pullbackBounce is a choppy uptrend that dips for four days into MA20 and
// bounces on the last bar with lastVolume traded.
func pullbackBounce(lastVolume float64) model.PriceSeries {
	const (
		n      = 247
		dips   = 4
		step   = 0.2
		amp    = 1.2
		dip    = 0.004
		bounce = 0.01
	)
	d0 := n - 1 - dips
	s := model.PriceSeries{Symbol: "SWING"}
	var c float64
	for i := 0; i < n; i++ {
		switch {
		case i < d0:
			a := -amp
			if i%2 == 1 {
				a = amp
			}
			c = 100 + step*float64(i) + a
		case i < n-1:
			c = c * (1 - dip)
		default:
			c = c * (1 + bounce)
		}
		vol := 1e6 + float64(i%5)*1e4
		if i == n-1 {
			vol = lastVolume
		}
		s.Bars = append(s.Bars, model.PriceBar{Date: day0.AddDate(0, 0, i), Close: c, High: c * 1.01, Low: c * 0.99, Volume: vol})
	}
	return s
}

func TestEvaluateInsufficientHistory(t *testing.T) {
	status, res, err := Evaluate("SHORT", uptrend(199), fund.DefaultRiskParams())
	assert.ErrorIs(t, err, ErrInsufficientHistory)
	assert.Equal(t, model.StatusInsufficientData, status)
	assert.Nil(t, res)
	assert.False(t, status.HasResult())
}

func TestEvaluateInsufficientIndicatorRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinHistory = 10
	cfg.Indicators.RSIWindow = 30
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	status, res, err := e.Evaluate("TINY", uptrend(30), fund.DefaultRiskParams())
	assert.ErrorIs(t, err, ErrInsufficientIndicatorRows)
	assert.Equal(t, model.StatusInsufficientIndRows, status)
	assert.Nil(t, res)
}

func TestEvaluateInvalidRisk(t *testing.T) {
	_, _, err := Evaluate("UP", uptrend(250), fund.RiskParams{RiskPerTrade: 0, PortfolioSize: 1000})
	assert.Error(t, err)
}

func TestEvaluateTrendOnly(t *testing.T) {
	status, res, err := Evaluate("UP", uptrend(250), fund.DefaultRiskParams())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, model.StatusTrendOnly, status)
	assert.False(t, res.IsStrongSignal)
	assert.Equal(t, 349.0, res.Price)
	assert.InDelta(t, 339.5, res.Indicators.MA20.Or(0), 1e-9)
	assert.InDelta(t, 324.5, res.Indicators.MA50.Or(0), 1e-9)
	assert.InDelta(t, 249.5, res.Indicators.MA200.Or(0), 1e-9)
	assert.InDelta(t, 5.0, res.Indicators.MA20Slope.Or(0), 1e-9)
	assert.False(t, res.Indicators.RSI.Valid(), "no losses leaves RSI unavailable")
	assert.Equal(t, 0.0, res.Indicators.VolumeZScore.Or(-1))

	assert.Equal(t, []string{
		"Trend: MA alignment and MA20 slope positive.",
		"Pullback: price away from MA20.",
		"Momentum: no reversal signal.",
		"Volume: normal level.",
	}, res.Reasons)

	assert.Equal(t, 2.5, res.DynamicMultiplier)
	assert.Equal(t, 344.0, res.StopLoss.Or(0))
	require.NotNil(t, res.RecommendedLot)
	assert.Equal(t, int64(250), *res.RecommendedLot)
	assert.Equal(t, day0.AddDate(0, 0, 249), res.AnalysisDate)
}

func TestEvaluateStrong(t *testing.T) {
	s := pullbackBounce(1.6e6)
	status, res, err := Evaluate("SWING", s, fund.DefaultRiskParams())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, model.StatusStrong, status)
	assert.True(t, res.IsStrongSignal)
	assert.Equal(t, []string{
		"Trend: MA alignment and MA20 slope positive.",
		"Pullback: price within MA20 support band.",
		"Momentum: RSI reversal confirmed.",
		"Volume: statistical spike (Z>=1.0).",
	}, res.Reasons)

	ind := res.Indicators
	assert.InDelta(t, 148.4941, res.Price, 1e-3)
	assert.InDelta(t, 147.1671, ind.MA20.Or(0), 1e-3)
	assert.InDelta(t, 54.27, ind.RSI.Or(0), 1e-2)
	assert.InDelta(t, 4.22, ind.VolumeZScore.Or(0), 1e-2)
	assert.InDelta(t, 3.4117, ind.ATR.Or(0), 1e-3)
	assert.InDelta(t, 2.2975, ind.ATRPercent.Or(0), 1e-3)

	assert.Equal(t, 1.5, res.DynamicMultiplier)
	stop, ok := res.StopLoss.Get()
	require.True(t, ok)
	assert.Equal(t, 143.38, stop)
	assert.Equal(t, fund.RoundPrice(res.Price-1.5*ind.ATR.Or(0)), stop)
	assert.Less(t, stop, res.Price)
	require.NotNil(t, res.RecommendedLot)
	assert.Equal(t, int64(244), *res.RecommendedLot)
}

func TestEvaluateModerate(t *testing.T) {
	status, res, err := Evaluate("SWING", pullbackBounce(1.02e6), fund.DefaultRiskParams())
	require.NoError(t, err)
	assert.Equal(t, model.StatusModerate, status)
	assert.False(t, res.IsStrongSignal)
	assert.Equal(t, "Volume: normal level.", res.Reasons[len(res.Reasons)-1])
	assert.Less(t, res.Indicators.VolumeZScore.Or(1), 1.0)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	s := pullbackBounce(1.6e6)
	before := s.Clone()
	_, first, err := Evaluate("SWING", s, fund.DefaultRiskParams())
	require.NoError(t, err)
	_, second, err := Evaluate("SWING", s, fund.DefaultRiskParams())
	require.NoError(t, err)
	assert.Equal(t, before, s)
	assert.Equal(t, first, second)
}

func TestEvaluateVolumeThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VolumeZScoreThreshold = 5
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	status, res, err := e.Evaluate("SWING", pullbackBounce(1.6e6), fund.DefaultRiskParams())
	require.NoError(t, err)
	assert.Equal(t, model.StatusModerate, status)
	assert.Equal(t, "Volume: normal level.", res.Reasons[3])
}

func TestNewEngineValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinHistory = 1
	_, err := NewEngine(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Indicators.ATRWindow = -1
	_, err = NewEngine(cfg)
	assert.Error(t, err)
}
