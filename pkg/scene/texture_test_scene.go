package scene

import (
	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/renderer"
)

// NewCheckerScene creates an opaque checkerboard ground under a specular layer whose
// tint follows a gradient texture. It shows mip selection on a receding plane.
func NewCheckerScene(opts Options) (*renderer.Scene, error) {
	checkerboard := material.NewCheckerboardTexture(512, 512, 32,
		core.NewVec3(0.9, 0.9, 0.9), // White
		core.NewVec3(0.2, 0.2, 0.8), // Blue
	)
	base, err := baseTexture(opts, checkerboard)
	if err != nil {
		return nil, err
	}

	m := material.NewMaterial("checker", material.Channel{Texture: base})
	m.AlphaMode = material.AlphaModeOpaque
	m.Specular = material.Channel{Texture: material.NewGradientTexture(256, 256,
		core.NewVec3(1.0, 0.2, 0.2), // Red (top)
		core.NewVec3(0.2, 1.0, 0.2), // Green (bottom)
	)}
	gloss := material.Layer{Type: material.LayerSpecular, Albedo: core.Splat3(1), Blend: 0.3, Roughness: 0.3}
	m.Layers = append([]material.Layer{gloss}, m.Layers...)

	if err := applyOptions(m, opts); err != nil {
		return nil, err
	}
	return renderer.DefaultScene(opts.Width, opts.Height, m), nil
}

// NewUVDebugScene creates an unlit ground that shows its texture coordinates
func NewUVDebugScene(opts Options) (*renderer.Scene, error) {
	base, err := baseTexture(opts, material.NewUVDebugTexture(256, 256))
	if err != nil {
		return nil, err
	}

	m := material.NewMaterial("uv-debug", material.Channel{Constant: core.NewVec4(0, 0, 0, 1)})
	m.AlphaMode = material.AlphaModeOpaque
	m.Emissive = material.Channel{Texture: base}
	opts.Bumps = 0
	if err := applyOptions(m, opts); err != nil {
		return nil, err
	}

	s := renderer.DefaultScene(opts.Width, opts.Height, m)
	s.LightColor = core.Vec3{}
	s.Ambient = core.Vec3{}
	return s, nil
}
