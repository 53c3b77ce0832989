package strategy

import (
	"fmt"

	"SwingScanner/internal/model"
)

// Criteria are the four independent checks over the current bar.
type Criteria struct {
	Trend          bool
	MAAligned      bool
	MA20Rising     bool
	Pullback       bool
	Momentum       bool
	RSIReversal    bool
	MACDReversal   bool
	VolumeConfirms bool
}

const (
	pullbackLower  = 0.98
	pullbackUpper  = 1.02
	rsiReversalCap = 55.0
)

// checkTrend requires price > ma20 > ma50 > ma200 and a rising MA20.
func checkTrend(cur Point, c *Criteria) string {
	price := model.Some(cur.Bar.Close)
	ind := cur.Ind
	c.MAAligned = model.Gt(price, ind.MA20) && model.Gt(ind.MA20, ind.MA50) && model.Gt(ind.MA50, ind.MA200)
	c.MA20Rising = model.Gt(ind.MA20Slope, model.Some(0))
	c.Trend = c.MAAligned && c.MA20Rising

	switch {
	case c.Trend:
		return "Trend: MA alignment and MA20 slope positive."
	case c.MAAligned:
		return "Trend: MAs aligned but MA20 slope not positive."
	default:
		return "Trend: MAs not aligned."
	}
}

// checkPullback requires price within ±2% of MA20.
func checkPullback(cur Point, c *Criteria) string {
	ma20, ok := cur.Ind.MA20.Get()
	price := cur.Bar.Close
	c.Pullback = ok && price >= ma20*pullbackLower && price <= ma20*pullbackUpper
	if c.Pullback {
		return "Pullback: price within MA20 support band."
	}
	return "Pullback: price away from MA20."
}

// checkMomentum looks for an RSI turn below 55 or a MACD histogram zero cross.
func checkMomentum(cur, prev Point, c *Criteria) []string {
	c.RSIReversal = model.Lt(cur.Ind.RSI, model.Some(rsiReversalCap)) && model.Gt(cur.Ind.RSI, prev.Ind.RSI)
	c.MACDReversal = model.Gt(cur.Ind.MACDHist, model.Some(0)) && model.Lt(prev.Ind.MACDHist, model.Some(0))
	c.Momentum = c.RSIReversal || c.MACDReversal

	if !c.Momentum {
		return []string{"Momentum: no reversal signal."}
	}
	var reasons []string
	if c.RSIReversal {
		reasons = append(reasons, "Momentum: RSI reversal confirmed.")
	}
	if c.MACDReversal {
		reasons = append(reasons, "Momentum: MACD histogram crossed above zero.")
	}
	return reasons
}

// checkVolume requires the volume z-score to reach threshold.
func checkVolume(cur Point, threshold float64, c *Criteria) string {
	z, ok := cur.Ind.VolumeZScore.Get()
	c.VolumeConfirms = ok && z >= threshold
	if c.VolumeConfirms {
		return fmt.Sprintf("Volume: statistical spike (Z>=%.1f).", threshold)
	}
	return "Volume: normal level."
}

// Grade maps the criteria to a status; the first matching rule wins.
func (c Criteria) Grade() model.Status {
	switch {
	case c.Trend && c.Pullback && c.Momentum && c.VolumeConfirms:
		return model.StatusStrong
	case c.Trend && c.Pullback && c.Momentum:
		return model.StatusModerate
	case c.Trend:
		return model.StatusTrendOnly
	default:
		return model.StatusNotApplicable
	}
}
