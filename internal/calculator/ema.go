package calculator

import "SwingScanner/internal/model"

// SpanAlpha converts an EMA span to its smoothing factor.
func SpanAlpha(span int) float64 { return 2.0 / (float64(span) + 1.0) }

// ComAlpha converts an EMA center of mass to its smoothing factor.
func ComAlpha(com float64) float64 { return 1.0 / (1.0 + com) }

// EMA is the recursive exponential average seeded with the first defined input:
// y0 = x0, yt = (1-alpha)*y(t-1) + alpha*xt.
// Leading unavailable inputs are skipped. An unavailable input after the start
// repeats the previous output. Outputs stay unavailable until minPeriods defined
// inputs have been seen.
func EMA(in []model.Value, alpha float64, minPeriods int) []model.Value {
	out := make([]model.Value, len(in))
	var avg float64
	seen := 0
	for i, x := range in {
		v, ok := x.Get()
		if ok {
			if seen == 0 {
				avg = v
			} else {
				avg = (1-alpha)*avg + alpha*v
			}
			seen++
		}
		if seen > 0 && seen >= minPeriods {
			out[i] = model.Some(avg)
		}
	}
	return out
}

// AdjustedEMA is the bias-corrected exponential average
// yt = sum((1-alpha)^k * x(t-k)) / sum((1-alpha)^k) over every input seen so far.
// Outputs stay unavailable until minPeriods defined inputs have been seen.
func AdjustedEMA(in []model.Value, alpha float64, minPeriods int) []model.Value {
	out := make([]model.Value, len(in))
	var num, den float64
	seen := 0
	for i, x := range in {
		v, ok := x.Get()
		if ok {
			num = num*(1-alpha) + v
			den = den*(1-alpha) + 1
			seen++
		} else if seen > 0 {
			num *= 1 - alpha
			den *= 1 - alpha
		}
		if seen > 0 && seen >= minPeriods {
			out[i] = model.Some(num / den)
		}
	}
	return out
}

func defined(values []float64) []model.Value {
	out := make([]model.Value, len(values))
	for i, v := range values {
		out[i] = model.Some(v)
	}
	return out
}
