package calculator

import (
	"math"

	"SwingScanner/internal/model"
)

// VolumeSeries holds the rolling volume statistics.
type VolumeSeries struct {
	Mean   []model.Value
	Std    []model.Value
	ZScore []model.Value
}

// VolumeZScore computes the rolling mean, sample standard deviation (N-1) and
// z-score of volume over window bars.
// The z-score is always defined: rows where the deviation is zero or not yet
// available score exactly 0.
func VolumeZScore(volumes []float64, window int) (VolumeSeries, error) {
	mean, err := SMA(volumes, window)
	if err != nil {
		return VolumeSeries{}, err
	}
	std := RollingStd(volumes, window)
	z := make([]model.Value, len(volumes))
	for i, v := range volumes {
		z[i] = model.Some(0)
		m, ok1 := mean[i].Get()
		s, ok2 := std[i].Get()
		if ok1 && ok2 && s != 0 {
			z[i] = model.Some((v - m) / s)
		}
	}
	return VolumeSeries{Mean: mean, Std: std, ZScore: z}, nil
}

// RollingStd returns the sample standard deviation of each trailing window.
// A window of one value has no sample deviation and is unavailable.
func RollingStd(values []float64, window int) []model.Value {
	out := make([]model.Value, len(values))
	if window < 2 {
		return out
	}
	n := float64(window)
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		// shift by the first value so identical windows give exactly zero
		k := w[0]
		var s1, s2 float64
		for _, x := range w {
			d := x - k
			s1 += d
			s2 += d * d
		}
		variance := (s2 - s1*s1/n) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out[i] = model.Some(math.Sqrt(variance))
	}
	return out
}
