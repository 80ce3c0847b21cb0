package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// batchSize is the number of values each batch draws; batches are the unit of
// parallelism and of deterministic seeding
const batchSize = 8192

// BatchConfig controls how a histogram is filled
type BatchConfig struct {
	Samples int   // Total number of values
	Bins    int   // Histogram bins
	Workers int   // Concurrent batches (0 = use CPU count)
	Seed    int64 // Batch i draws from rand.NewSource(Seed + i)
}

// DefaultBatchConfig returns 2^20 samples in 20 bins
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{Samples: 1 << 20, Bins: 20, Seed: 1}
}

// drawFunc produces one value in [0, 1] from random
type drawFunc func(random *rand.Rand) float64

// fillHistogram draws cfg.Samples values in parallel batches. The result only depends
// on cfg.Seed and cfg.Samples, not on the number of workers.
func fillHistogram(ctx context.Context, cfg BatchConfig, draw drawFunc) (*Histogram, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", cfg.Samples)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	numBatches := (cfg.Samples + batchSize - 1) / batchSize
	partials := make([]*Histogram, numBatches)

	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))

	for i := range partials {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Wait so no batch is still writing to partials
			_ = eg.Wait()
			return nil, fmt.Errorf("while acquiring batch slot: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)
			if err := ctx.Err(); err != nil {
				return err
			}

			n := min(batchSize, cfg.Samples-i*batchSize)
			random := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			h := NewHistogram(cfg.Bins)
			for j := 0; j < n; j++ {
				h.Add(draw(random))
			}
			partials[i] = h
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("while waiting for histogram batches: %w", err)
	}

	total := NewHistogram(cfg.Bins)
	for _, h := range partials {
		if err := total.Merge(h); err != nil {
			return nil, err
		}
	}
	return total, nil
}
