package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/df07/go-shading-kit/pkg/analysis"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// significance is the p-value below which the uniformity command reports failure
const significance = 1e-3

var uniformityFlags = struct {
	batch     analysis.BatchConfig
	alphaMode string
	scale     float32
	flat      bool
	sampler   string
}{
	batch:     analysis.DefaultBatchConfig(),
	alphaMode: shading.AlphaTestHashedIsotropic.String(),
	scale:     1,
}

var cmdUniformity = &cobra.Command{
	Use:   "uniformity",
	Short: "Chi-square test of hashed alpha thresholds or a sampler against uniform",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		h, label, err := uniformityHistogram(ctx)
		if err != nil {
			return err
		}
		return reportUniformity(os.Stdout, label, h)
	},
}

func init() {
	f := cmdUniformity.Flags()
	f.IntVar(&uniformityFlags.batch.Samples, "samples", uniformityFlags.batch.Samples, "Number of values to draw")
	f.IntVar(&uniformityFlags.batch.Bins, "bins", uniformityFlags.batch.Bins, "Histogram bins")
	f.IntVar(&uniformityFlags.batch.Workers, "workers", 0, "Parallel batches (0 = CPU count)")
	f.Int64Var(&uniformityFlags.batch.Seed, "seed", uniformityFlags.batch.Seed, "Random seed")
	f.StringVar(&uniformityFlags.alphaMode, "alpha-mode", uniformityFlags.alphaMode, "Hashed alpha variant: hashed or hashed-aniso")
	f.Float32Var(&uniformityFlags.scale, "alpha-scale", uniformityFlags.scale, "Hashed alpha noise cell size multiplier")
	f.BoolVar(&uniformityFlags.flat, "flat", false, "Pin coordinates to a plane of constant z")
	f.StringVar(&uniformityFlags.sampler, "sampler", "", "Test a sampler instead: "+samplerList())
}

func samplerList() string {
	var names []string
	for _, kind := range analysis.SamplerKinds() {
		names = append(names, kind.String())
	}
	return strings.Join(names, ", ")
}

func uniformityHistogram(ctx context.Context) (*analysis.Histogram, string, error) {
	opts := uniformityFlags

	if opts.sampler != "" {
		kind, err := analysis.ParseSamplerKind(opts.sampler)
		if err != nil {
			return nil, "", err
		}
		h, err := analysis.SamplerHistogram(ctx, kind, opts.batch)
		return h, "sampler " + kind.String(), err
	}

	mode, err := shading.ParseAlphaTestMode(opts.alphaMode)
	if err != nil {
		return nil, "", err
	}
	if mode != shading.AlphaTestHashedIsotropic && mode != shading.AlphaTestHashedAnisotropic {
		return nil, "", fmt.Errorf("alpha mode %v has no hashed threshold", mode)
	}

	cfg := analysis.DefaultHashedAlphaConfig()
	cfg.BatchConfig = opts.batch
	cfg.Anisotropic = mode == shading.AlphaTestHashedAnisotropic
	cfg.Scale = opts.scale
	cfg.FlatZ = opts.flat

	h, err := analysis.HashedAlphaHistogram(ctx, cfg)
	return h, "hashed alpha " + mode.String(), err
}

// reportUniformity prints the histogram and test result, returning an error when
// uniformity is rejected
func reportUniformity(w io.Writer, label string, h *analysis.Histogram) error {
	stats := h.Stats()
	result := analysis.ChiSquareUniform(h)

	fmt.Fprintf(w, "%s: %d values in %d bins, %d outliers\n", label, h.Total, len(h.Counts), h.Outliers)
	for i, c := range h.Counts {
		lo := float64(i) / float64(len(h.Counts))
		fmt.Fprintf(w, "  [%.3f) %8d %+.2f%%\n", lo, c, 100*(float64(c)-stats.Average)/max(1, stats.Average))
	}
	fmt.Fprintf(w, "stddev %.2f, median %.0f, max deviation %.2f%%\n", stats.Stddev, stats.Median, 100*stats.MaxDeviation)
	fmt.Fprintf(w, "chi-square %.3f with %d degrees of freedom, p-value %.4g\n",
		result.Statistic, result.DegreesOfFreedom, result.PValue)

	if h.Outliers > 0 {
		return fmt.Errorf("%s has %d values outside [0, 1]", label, h.Outliers)
	}
	if !result.Uniform(significance) {
		return fmt.Errorf("%s is not uniform (p-value %.4g < %g)", label, result.PValue, significance)
	}
	return nil
}

var sampleFlags = struct {
	sampler string
	count   int
	seed    int64
}{
	sampler: analysis.SamplerCosine.String(),
	count:   16,
	seed:    1,
}

var cmdSample = &cobra.Command{
	Use:   "sample",
	Short: "Print samples from one of the sampling routines",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := analysis.ParseSamplerKind(sampleFlags.sampler)
		if err != nil {
			return err
		}
		printSamples(os.Stdout, kind, sampleFlags.count, rand.New(rand.NewSource(sampleFlags.seed)))
		return nil
	},
}

func init() {
	f := cmdSample.Flags()
	f.StringVar(&sampleFlags.sampler, "sampler", sampleFlags.sampler, "Sampler: "+samplerList())
	f.IntVar(&sampleFlags.count, "count", sampleFlags.count, "Number of samples")
	f.Int64Var(&sampleFlags.seed, "seed", sampleFlags.seed, "Random seed")
}

// printSamples writes one sample per line as r1 r2 x y z
func printSamples(w io.Writer, kind analysis.SamplerKind, count int, random *rand.Rand) {
	for i := 0; i < count; i++ {
		r1, r2 := random.Float32(), random.Float32()
		s := kind.Sample(r1, r2)
		fmt.Fprintf(w, "%.6f %.6f %+.6f %+.6f %+.6f\n", r1, r2, s.X, s.Y, s.Z)
	}
}
