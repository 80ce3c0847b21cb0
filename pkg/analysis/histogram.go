package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Histogram counts values in [0, 1] across equal-width bins. A value of exactly 1
// lands in the last bin; anything outside the range or NaN is counted as an outlier.
type Histogram struct {
	Counts   []int
	Total    int
	Outliers int
}

// HistogramStats summarizes the bin counts of a Histogram
type HistogramStats struct {
	// Average is the mean count per bin.
	Average float64
	// Stddev is the population standard deviation of the bin counts.
	Stddev float64
	// Median is the median bin count.
	Median float64
	// MaxDeviation is the largest relative distance of a bin from Average.
	MaxDeviation float64
}

// NewHistogram creates a histogram with the given number of bins (at least one)
func NewHistogram(bins int) *Histogram {
	return &Histogram{Counts: make([]int, max(1, bins))}
}

// Add records one value
func (h *Histogram) Add(v float64) {
	if !(v >= 0 && v <= 1) {
		h.Outliers++
		return
	}
	bins := len(h.Counts)
	h.Counts[min(bins-1, int(v*float64(bins)))]++
	h.Total++
}

// Merge adds the counts of other, which must have the same number of bins
func (h *Histogram) Merge(other *Histogram) error {
	if len(other.Counts) != len(h.Counts) {
		return fmt.Errorf("cannot merge histogram of %d bins into %d bins", len(other.Counts), len(h.Counts))
	}
	for i, c := range other.Counts {
		h.Counts[i] += c
	}
	h.Total += other.Total
	h.Outliers += other.Outliers
	return nil
}

// Stats computes average, standard deviation, and median of the bin counts
func (h *Histogram) Stats() HistogramStats {
	if h.Total == 0 {
		return HistogramStats{}
	}

	counts := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		counts[i] = float64(c)
	}
	avg, stddev := stat.PopMeanStdDev(counts, nil)

	var maxDev float64
	for _, c := range counts {
		maxDev = max(maxDev, math.Abs(c-avg)/avg)
	}

	sort.Float64s(counts)
	return HistogramStats{
		Average:      avg,
		Stddev:       stddev,
		Median:       stat.Quantile(0.5, stat.Empirical, counts, nil),
		MaxDeviation: maxDev,
	}
}
