package scene

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-shading-kit/pkg/loaders"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/renderer"
	"github.com/df07/go-shading-kit/pkg/shading"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Width = 32
	opts.Height = 18
	return opts
}

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	if err := loaders.SaveImage(path, img); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestNew_BuiltInScenes(t *testing.T) {
	for _, info := range builtInScenes {
		t.Run(info.ID, func(t *testing.T) {
			s, err := New(info.ID, smallOptions())
			if err != nil {
				t.Fatalf("New(%q) failed: %v", info.ID, err)
			}
			if w, h := s.Camera.Size(); w != 32 || h != 18 {
				t.Errorf("expected 32x18 camera, got %dx%d", w, h)
			}

			// Every preset must render
			r, err := renderer.NewRenderer(s, renderer.DefaultConfig(), testLogger{t})
			if err != nil {
				t.Fatalf("NewRenderer failed: %v", err)
			}
			_, stats, err := r.Render(context.Background())
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if stats.Missed == stats.TotalSamples {
				t.Error("camera does not see the quad")
			}
		})
	}
}

func TestNew_Options(t *testing.T) {
	opts := smallOptions()
	opts.NormalMode = shading.NormalMapLEAN
	opts.DoubleSided = true

	s, err := New("cutout", opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m := s.Material
	if m.NormalMode != shading.NormalMapLEAN || !m.Normal.Present() {
		t.Errorf("expected a LEAN procedural normal map, got mode %v present %v", m.NormalMode, m.Normal.Present())
	}
	if !m.Flags.Has(material.FlagDoubleSided) {
		t.Error("expected a double-sided material")
	}
	if m.Layers[0].Type != material.LayerDielectric {
		t.Errorf("expected a dielectric coat on top, got %v", m.Layers[0].Type)
	}

	opts.Bumps = 0
	if s, err = New("wall", opts); err != nil || s.Material.Normal.Present() {
		t.Errorf("expected no normal map without bumps, err %v", err)
	}
}

func TestNew_Textures(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, filepath.Join(dir, "oak-leaves.png"))

	opts := smallOptions()
	opts.TextureDir = dir

	s, err := New("texture:oak-leaves", opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if w, h := s.Material.BaseColor.Texture.Size(); w != 8 || h != 8 {
		t.Errorf("expected the 8x8 image as base color, got %dx%d", w, h)
	}

	opts.NormalTexture = filepath.Join(dir, "oak-leaves.png")
	if s, err = New("checker", opts); err != nil || !s.Material.Normal.Present() {
		t.Errorf("expected the normal map file to load, err %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		id     string
		modify func(*Options)
		target error
	}{
		{name: "unknown preset", id: "cornell-box", target: ErrUnknownScene},
		{name: "unknown texture", id: "texture:bark", target: ErrUnknownScene},
		{name: "missing base texture", id: "cutout", modify: func(o *Options) { o.Texture = filepath.Join(dir, "none.png") }, target: os.ErrNotExist},
		{name: "missing normal map", id: "wall", modify: func(o *Options) { o.NormalTexture = filepath.Join(dir, "none.png") }, target: os.ErrNotExist},
		{name: "invalid normal mode", id: "checker", modify: func(o *Options) { o.NormalMode = shading.NormalMapMode(9) }, target: material.ErrInvalidMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := smallOptions()
			opts.TextureDir = dir
			if tt.modify != nil {
				tt.modify(&opts)
			}
			if _, err := New(tt.id, opts); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}
