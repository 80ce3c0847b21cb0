package analysis

import (
	"context"
	"testing"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/shading"
)

func TestHashedAlphaHistogram_Uniform(t *testing.T) {
	skewed := shading.Derivatives{
		DX: core.NewVec3(0.003, 0.001, 0.0002),
		DY: core.NewVec3(0.0005, 0.02, 0.001),
	}

	tests := []struct {
		name   string
		config func(*HashedAlphaConfig)
	}{
		{"isotropic default", func(*HashedAlphaConfig) {}},
		{"isotropic skewed", func(c *HashedAlphaConfig) { c.Deriv = skewed }},
		{"anisotropic skewed", func(c *HashedAlphaConfig) { c.Deriv = skewed; c.Anisotropic = true }},
		{"anisotropic flat plane", func(c *HashedAlphaConfig) { c.Anisotropic = true; c.FlatZ = true }},
		{"coarse scale", func(c *HashedAlphaConfig) { c.Scale = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultHashedAlphaConfig()
			cfg.Samples = 50000
			cfg.Bins = 10
			tt.config(&cfg)

			h, err := HashedAlphaHistogram(context.Background(), cfg)
			if err != nil {
				t.Fatalf("HashedAlphaHistogram failed: %v", err)
			}
			if h.Outliers != 0 {
				t.Errorf("%d thresholds outside [0, 1]", h.Outliers)
			}
			if res := ChiSquareUniform(h); !res.Uniform(1e-4) {
				t.Errorf("thresholds not uniform: chi-square %f, p-value %g", res.Statistic, res.PValue)
			}
		})
	}
}

func TestHashedAlphaHistogram_ZeroDerivativesStayInRange(t *testing.T) {
	cfg := DefaultHashedAlphaConfig()
	cfg.Samples = 20000
	cfg.Deriv = shading.Derivatives{}

	for _, anisotropic := range []bool{false, true} {
		cfg.Anisotropic = anisotropic
		h, err := HashedAlphaHistogram(context.Background(), cfg)
		if err != nil {
			t.Fatalf("HashedAlphaHistogram failed: %v", err)
		}
		if h.Outliers != 0 || h.Total != cfg.Samples {
			t.Errorf("anisotropic=%v: expected every threshold in range, got %d outliers", anisotropic, h.Outliers)
		}
	}
}
