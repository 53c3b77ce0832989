package fund

import (
	"fmt"
	"math"

	"SwingScanner/internal/model"

	"github.com/shopspring/decimal"
)

const (
	DefaultRiskPerTrade  = 0.025
	DefaultPortfolioSize = 50000.00

	// MinRiskPerLot is the smallest stop distance that still yields a lot size.
	MinRiskPerLot = 0.01
)

// RiskParams are the per-scan portfolio risk inputs.
type RiskParams struct {
	RiskPerTrade  float64 `json:"risk_per_trade"` // fraction of the portfolio
	PortfolioSize float64 `json:"portfolio_size"`
}

// DefaultRiskParams returns the configured defaults.
func DefaultRiskParams() RiskParams {
	return RiskParams{RiskPerTrade: DefaultRiskPerTrade, PortfolioSize: DefaultPortfolioSize}
}

// Validate requires both parameters to be positive.
func (p RiskParams) Validate() error {
	if !(p.RiskPerTrade > 0) {
		return fmt.Errorf("risk_per_trade must be positive, got %v", p.RiskPerTrade)
	}
	if !(p.PortfolioSize > 0) {
		return fmt.Errorf("portfolio_size must be positive, got %v", p.PortfolioSize)
	}
	return nil
}

// RiskAmount is the currency amount at risk per trade.
func (p RiskParams) RiskAmount() float64 {
	return p.PortfolioSize * p.RiskPerTrade
}

// StopMultiplier maps ATR% to a stop-distance multiplier:
// below 2.0 -> 2.5, 2.0..5.0 inclusive -> 1.5, above 5.0 -> 1.0.
// An unavailable ATR% falls into the middle band.
func StopMultiplier(atrPercent model.Value) float64 {
	pct, ok := atrPercent.Get()
	switch {
	case !ok:
		return 1.5
	case pct < 2.0:
		return 2.5
	case pct > 5.0:
		return 1.0
	default:
		return 1.5
	}
}

// Sizing is the stop loss and position size for one entry.
type Sizing struct {
	Multiplier     float64
	StopLoss       model.Value
	RecommendedLot *int64 // nil when it cannot be computed
}

// Size computes the volatility-scaled stop and the lot size that caps the loss
// at the risk amount. When ATR is unavailable or not positive, stop and lot are
// left unavailable rather than zero.
func Size(price float64, atr, atrPercent model.Value, p RiskParams) Sizing {
	s := Sizing{Multiplier: StopMultiplier(atrPercent)}
	a, ok := atr.Get()
	if !ok || a <= 0 {
		return s
	}

	stop := RoundPrice(price - s.Multiplier*a)
	s.StopLoss = model.Some(stop)

	var lot int64
	riskPerLot := price - stop
	if riskPerLot > MinRiskPerLot {
		lot = int64(math.Floor(p.RiskAmount() / riskPerLot))
	}
	s.RecommendedLot = &lot
	return s
}

// RoundPrice rounds to two decimals, ties to even.
func RoundPrice(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(2).Float64()
	return f
}
