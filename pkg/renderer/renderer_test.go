package renderer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/shading"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func cutoutMaterial() *material.Material {
	return material.NewMaterial("cutout", material.Channel{
		Texture: material.NewCutoutTexture(256, 8, core.NewVec3(0.3, 0.6, 0.2)),
	})
}

func TestNewRenderer_Validation(t *testing.T) {
	badMaterial := constantMaterial(core.Splat3(1), 1)
	badMaterial.AlphaMode = material.AlphaMode(7)

	tests := []struct {
		name   string
		scene  *Scene
		config func(*Config)
		target error
	}{
		{name: "nil scene", target: ErrInvalidScene},
		{name: "missing camera", scene: &Scene{Quad: frontQuad(), Material: cutoutMaterial()}, target: ErrInvalidScene},
		{name: "missing quad", scene: &Scene{Camera: frontCamera(8, 8), Material: cutoutMaterial()}, target: ErrInvalidScene},
		{name: "missing material", scene: &Scene{Camera: frontCamera(8, 8), Quad: frontQuad()}, target: ErrInvalidScene},
		{name: "invalid material", scene: frontScene(badMaterial), target: material.ErrInvalidMaterial},
		{
			name:   "unknown alpha test",
			scene:  frontScene(cutoutMaterial()),
			config: func(c *Config) { c.Shading.AlphaTest = shading.AlphaTestMode(42) },
			target: shading.ErrUnknownAlphaTestMode,
		},
		{name: "zero tile size", scene: frontScene(cutoutMaterial()), config: func(c *Config) { c.TileSize = 0 }},
		{name: "negative workers", scene: frontScene(cutoutMaterial()), config: func(c *Config) { c.NumWorkers = -1 }},
		{name: "zero samples", scene: frontScene(cutoutMaterial()), config: func(c *Config) { c.SamplesPerAxis = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if tt.config != nil {
				tt.config(&config)
			}
			r, err := NewRenderer(tt.scene, config, testLogger{t})
			if err == nil {
				t.Fatalf("expected an error, got renderer %v", r)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	config := DefaultConfig()
	config.TileSize = 16
	config.NumWorkers = 4

	r, err := NewRenderer(DefaultScene(96, 64, cutoutMaterial()), config, testLogger{t})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	img, stats, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 64 {
		t.Fatalf("expected 96x64 image, got %v", b)
	}
	if stats.TotalPixels != 96*64 || stats.TotalSamples != 96*64 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if got := stats.Missed + stats.Culled + stats.Discarded + stats.Kept; got != stats.TotalSamples {
		t.Errorf("sample outcomes sum to %d, expected %d", got, stats.TotalSamples)
	}
	if stats.Missed == 0 {
		t.Error("the sky above the horizon should miss the quad")
	}
	// Discs of radius 0.4 cover about half of each cell
	if c := stats.Coverage(); c < 0.3 || c > 0.7 {
		t.Errorf("coverage %.3f outside the plausible range for the cutout texture", c)
	}
	if lum := CalculateAverageLuminance(img); lum <= 0 || lum >= 1 {
		t.Errorf("average luminance %f should be strictly between black and white", lum)
	}
}

func TestRenderer_DeterministicAcrossWorkerCounts(t *testing.T) {
	render := func(workers int) []byte {
		config := DefaultConfig()
		config.NumWorkers = workers
		config.TileSize = 8
		config.SamplesPerAxis = 2
		config.Shading.AlphaTest = shading.AlphaTestHashedAnisotropic

		r, err := NewRenderer(DefaultScene(48, 32, cutoutMaterial()), config, testLogger{t})
		if err != nil {
			t.Fatalf("NewRenderer failed: %v", err)
		}
		img, _, err := r.Render(context.Background())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return img.Pix
	}

	if !bytes.Equal(render(1), render(6)) {
		t.Error("image depends on the number of workers")
	}
}

func TestRenderer_Cancelled(t *testing.T) {
	r, err := NewRenderer(DefaultScene(64, 64, cutoutMaterial()), DefaultConfig(), testLogger{t})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img, _, err := r.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if img != nil {
		t.Error("expected no image from a cancelled render")
	}
}
