package calculator

import (
	"fmt"

	"SwingScanner/internal/model"
)

// Params configures the indicator windows.
type Params struct {
	RSIWindow    int
	MACD         MACDOption
	ATRWindow    int
	VolumeWindow int
	SlopePeriod  int
}

// DefaultParams returns the standard windows.
func DefaultParams() Params {
	return Params{
		RSIWindow:    14,
		MACD:         DefaultMACDOption,
		ATRWindow:    14,
		VolumeWindow: 20,
		SlopePeriod:  5,
	}
}

// Validate checks every window.
func (p Params) Validate() error {
	for _, c := range []struct {
		field string
		v     int
	}{
		{"rsi window", p.RSIWindow},
		{"atr window", p.ATRWindow},
		{"volume window", p.VolumeWindow},
		{"slope period", p.SlopePeriod},
	} {
		if err := requirePositive(c.field, c.v); err != nil {
			return err
		}
	}
	return p.MACD.Validate()
}

// WarmUp is the number of leading rows needed before the momentum inputs
// (RSI and MACD histogram) are past their warm-up.
func (p Params) WarmUp() int {
	return p.RSIWindow - 1
}

// Compute builds the full indicator frame for a series. It never mutates the
// input and calling it twice on the same series yields identical frames.
func Compute(series model.PriceSeries, p Params) (*model.IndicatorFrame, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	closes := series.Closes()

	ma20, err := SMA(closes, 20)
	if err != nil {
		return nil, fmt.Errorf("ma20: %w", err)
	}
	ma50, err := SMA(closes, 50)
	if err != nil {
		return nil, fmt.Errorf("ma50: %w", err)
	}
	ma200, err := SMA(closes, 200)
	if err != nil {
		return nil, fmt.Errorf("ma200: %w", err)
	}
	rsi, err := RSI(closes, p.RSIWindow)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	macd, err := MACD(closes, p.MACD)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	atr, err := ATR(series.Bars, p.ATRWindow)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	vol, err := VolumeZScore(series.Volumes(), p.VolumeWindow)
	if err != nil {
		return nil, fmt.Errorf("volume zscore: %w", err)
	}
	slope, err := Slope(ma20, p.SlopePeriod)
	if err != nil {
		return nil, fmt.Errorf("ma20 slope: %w", err)
	}

	return &model.IndicatorFrame{
		MA20:           ma20,
		MA50:           ma50,
		MA200:          ma200,
		RSI:            rsi,
		MACD:           macd.MACD,
		MACDSignalLine: macd.Signal,
		MACDHist:       macd.Hist,
		TR:             atr.TR,
		ATR:            atr.ATR,
		ATRPercent:     atr.Percent,
		VolumeMA:       vol.Mean,
		VolumeStd:      vol.Std,
		VolumeZScore:   vol.ZScore,
		MA20Slope:      slope,
	}, nil
}
