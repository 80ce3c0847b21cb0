package analysis

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformityResult is the outcome of a chi-square goodness-of-fit test against a
// uniform distribution
type UniformityResult struct {
	Statistic        float64
	DegreesOfFreedom int
	// PValue is the probability of a statistic at least this large if the
	// values were uniform.
	PValue float64
}

// Uniform reports whether uniformity is not rejected at the given significance level
func (r UniformityResult) Uniform(significance float64) bool {
	return r.PValue >= significance
}

// ChiSquareUniform tests the in-range counts of h against equal expected counts per bin.
// An empty or single-bin histogram yields a zero statistic and p-value 1.
func ChiSquareUniform(h *Histogram) UniformityResult {
	bins := len(h.Counts)
	if h.Total == 0 || bins < 2 {
		return UniformityResult{PValue: 1}
	}

	observed := make([]float64, bins)
	expected := make([]float64, bins)
	for i, c := range h.Counts {
		observed[i] = float64(c)
		expected[i] = float64(h.Total) / float64(bins)
	}

	chi := stat.ChiSquare(observed, expected)
	dist := distuv.ChiSquared{K: float64(bins - 1)}
	return UniformityResult{
		Statistic:        chi,
		DegreesOfFreedom: bins - 1,
		PValue:           dist.Survival(chi),
	}
}
