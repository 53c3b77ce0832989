package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"SwingScanner/internal/cache"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
	"SwingScanner/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analysisDay = time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)

func lot(n int64) *int64 { return &n }

func result(sym string, price, z float64, strong bool, l *int64) *model.SignalResult {
	return &model.SignalResult{
		Symbol:         sym,
		Price:          price,
		Indicators:     model.IndicatorRow{VolumeZScore: model.Some(z)},
		IsStrongSignal: strong,
		RecommendedLot: l,
		AnalysisDate:   analysisDay,
	}
}

// fakeEngine answers from a table keyed by symbol.
type fakeEngine map[string]func() (model.Status, *model.SignalResult, error)

func (f fakeEngine) Evaluate(symbol string, _ model.PriceSeries, _ fund.RiskParams) (model.Status, *model.SignalResult, error) {
	return f[symbol]()
}

func TestScanIsolatesFailures(t *testing.T) {
	engine := fakeEngine{
		"STRONG": func() (model.Status, *model.SignalResult, error) {
			return model.StatusStrong, result("STRONG", 10, 2, true, lot(5)), nil
		},
		"SHORT": func() (model.Status, *model.SignalResult, error) {
			return model.StatusInsufficientData, nil, strategy.ErrInsufficientHistory
		},
		"BROKEN": func() (model.Status, *model.SignalResult, error) {
			return "", nil, errors.New("bad input")
		},
		"PANIC": func() (model.Status, *model.SignalResult, error) {
			var m map[string]int
			m["x"]++
			return "", nil, nil
		},
		"FLAT": func() (model.Status, *model.SignalResult, error) {
			return model.StatusNotApplicable, result("FLAT", 5, 0, false, nil), nil
		},
	}
	s := New(engine, cache.NewMemoryCache(), 2)
	syms := []string{"STRONG", "SHORT", "BROKEN", "PANIC", "FLAT"}

	rep, err := s.Scan(context.Background(), syms, fund.DefaultRiskParams())
	require.NoError(t, err)
	require.Len(t, rep.Rows, 5)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 5, rep.Total)
	assert.Equal(t, 1, rep.Strong)
	assert.Equal(t, analysisDay, rep.AnalysisDate)

	for i, sym := range syms {
		assert.Equal(t, sym, rep.Rows[i].Symbol, "rows keep input order")
	}
	assert.Equal(t, string(model.StatusInsufficientData), rep.Rows[1].Error)
	assert.Equal(t, "calculation error: bad input", rep.Rows[2].Error)
	assert.Contains(t, rep.Rows[3].Error, "calculation error")
	assert.Nil(t, rep.Rows[3].Result)
	assert.Equal(t, model.StatusNotApplicable, rep.Rows[4].Status)
}

func TestScanInvalidRisk(t *testing.T) {
	s := New(fakeEngine{}, cache.NewMemoryCache(), 1)
	_, err := s.Scan(context.Background(), []string{"A"}, fund.RiskParams{})
	assert.Error(t, err)
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(fakeEngine{}, cache.NewMemoryCache(), 1)
	_, err := s.Scan(ctx, []string{"A", "B"}, fund.DefaultRiskParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanWithEngine(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	d := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	up := model.PriceSeries{Symbol: "UP"}
	for i := 0; i < 250; i++ {
		p := 100 + float64(i)
		up.Bars = append(up.Bars, model.PriceBar{Date: d.AddDate(0, 0, i), Close: p, High: p + 1, Low: p - 1, Volume: 1e6})
	}
	require.NoError(t, c.Put(ctx, up))
	tiny := up.Tail(50)
	tiny.Symbol = "TINY"
	require.NoError(t, c.Put(ctx, tiny))

	engine, err := strategy.NewEngine(strategy.DefaultConfig())
	require.NoError(t, err)
	rep, err := New(engine, c, 4).Scan(ctx, []string{"UP", "TINY", "MISSING"}, fund.DefaultRiskParams())
	require.NoError(t, err)

	assert.Equal(t, model.StatusTrendOnly, rep.Rows[0].Status)
	assert.Equal(t, string(model.StatusInsufficientData), rep.Rows[1].Error)
	assert.Equal(t, string(model.StatusInsufficientData), rep.Rows[2].Error)
	assert.Equal(t, d.AddDate(0, 0, 249), rep.AnalysisDate)
}

func sampleReport() *Report {
	return &Report{
		Total:  5,
		Strong: 2,
		Rows: []model.ScanRow{
			{Symbol: "BBB", Result: result("BBB", 20, 1.5, true, lot(10))},
			{Symbol: "ERR", Error: "insufficient data (< 200 bars)"},
			{Symbol: "AAA", Result: result("AAA", 30, -0.5, false, nil)},
			{Symbol: "CCC", Result: result("CCC", 10, 3.0, true, lot(40))},
			{Symbol: "DDD", Result: result("DDD", 15, 0.2, false, lot(0))},
		},
	}
}

func symbolsOf(r *Report) []string {
	var out []string
	for _, row := range r.Rows {
		out = append(out, row.Symbol)
	}
	return out
}

func TestReportFilter(t *testing.T) {
	rep := sampleReport()
	strong, err := rep.Filter(FilterStrong)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB", "CCC"}, symbolsOf(strong))
	assert.Equal(t, 5, strong.Total)
	assert.Len(t, rep.Rows, 5, "original is untouched")

	all, err := rep.Filter("")
	require.NoError(t, err)
	assert.Len(t, all.Rows, 5)

	_, err = rep.Filter("weak")
	assert.Error(t, err)
}

func TestReportSort(t *testing.T) {
	rep := sampleReport()
	cases := []struct {
		column string
		desc   bool
		want   []string
	}{
		{"price", true, []string{"AAA", "BBB", "DDD", "CCC", "ERR"}},
		{"price", false, []string{"CCC", "DDD", "BBB", "AAA", "ERR"}},
		{"volume_zscore", true, []string{"CCC", "BBB", "DDD", "AAA", "ERR"}},
		{"recommended_lot", true, []string{"CCC", "BBB", "DDD", "ERR", "AAA"}},
		{"symbol", false, []string{"AAA", "BBB", "CCC", "DDD", "ERR"}},
		{"rsi", true, []string{"BBB", "ERR", "AAA", "CCC", "DDD"}},
	}
	for _, tc := range cases {
		got, err := rep.Sort(tc.column, tc.desc)
		require.NoError(t, err)
		assert.Equal(t, tc.want, symbolsOf(got), "%s desc=%v", tc.column, tc.desc)
	}

	_, err := rep.Sort("volume", true)
	assert.Error(t, err)
	assert.Contains(t, SortColumns(), "atr_percent")
}
