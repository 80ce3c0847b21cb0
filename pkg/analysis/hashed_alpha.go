package analysis

import (
	"context"
	"math/rand"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// HashedAlphaConfig describes a population of hashed alpha thresholds: random
// coordinates under one fixed screen-space footprint
type HashedAlphaConfig struct {
	BatchConfig
	Anisotropic bool
	Scale       float32
	Deriv       shading.Derivatives
	Extent      float32 // Coordinates are drawn from [-Extent, Extent]³
	FlatZ       bool    // Pin Z to a constant, as on a plane aligned with the XY axes
}

// DefaultHashedAlphaConfig samples isotropic thresholds for a 0.01 unit pixel footprint
func DefaultHashedAlphaConfig() HashedAlphaConfig {
	return HashedAlphaConfig{
		BatchConfig: DefaultBatchConfig(),
		Scale:       1,
		Deriv: shading.Derivatives{
			DX: core.NewVec3(0.01, 0, 0),
			DY: core.NewVec3(0, 0.01, 0),
		},
		Extent: 100,
	}
}

// HashedAlphaHistogram collects hashed alpha thresholds for cfg. A correct hash
// gives a flat histogram, which ChiSquareUniform checks.
func HashedAlphaHistogram(ctx context.Context, cfg HashedAlphaConfig) (*Histogram, error) {
	return fillHistogram(ctx, cfg.BatchConfig, func(random *rand.Rand) float64 {
		coord := core.NewVec3(
			(random.Float32()*2-1)*cfg.Extent,
			(random.Float32()*2-1)*cfg.Extent,
			(random.Float32()*2-1)*cfg.Extent,
		)
		if cfg.FlatZ {
			coord.Z = 0.5
		}
		return float64(shading.CalculateHashedAlpha(coord, cfg.Deriv, cfg.Scale, cfg.Anisotropic))
	})
}
