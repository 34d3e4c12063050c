package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// describe computes mean, sample standard deviation, min, and max for a
// series. A single-observation series reports zero deviation.
func describe(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}

	s := Stats{
		Mean: stat.Mean(xs, nil),
		Min:  xs[0],
		Max:  xs[0],
	}
	for _, x := range xs {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	return s
}

// correlation computes the Pearson correlation of two equal-length series,
// returning 0 when the result is undefined.
func correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// quantile returns the linearly interpolated p-quantile of the series.
func quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// pctChanges returns the sequence of percentage differences between
// consecutive observations.
func pctChanges(xs []float64) []float64 {
	var out []float64
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 {
			continue
		}
		out = append(out, (xs[i]-xs[i-1])/xs[i-1])
	}
	return out
}

// round2 rounds to two decimal places, matching the precision the reports
// carry.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// round3 rounds to three decimal places.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
