package scene

import (
	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/renderer"
)

var leafColor = core.NewVec3(0.25, 0.55, 0.15)

// NewCutoutScene creates a ground quad receding to the horizon with a grid of
// alpha-cutout discs, so the noise scale of hashed alpha changes down the image
func NewCutoutScene(opts Options) (*renderer.Scene, error) {
	base, err := baseTexture(opts, material.NewCutoutTexture(512, opts.Cells, leafColor))
	if err != nil {
		return nil, err
	}

	m := coatedMaterial("cutout", base)
	if err := applyOptions(m, opts); err != nil {
		return nil, err
	}
	return renderer.DefaultScene(opts.Width, opts.Height, m), nil
}

// NewWallScene creates a cutout quad facing the camera. Every pixel has the same
// footprint, which makes alpha coverage easy to compare across alpha tests.
func NewWallScene(opts Options) (*renderer.Scene, error) {
	base, err := baseTexture(opts, material.NewCutoutTexture(512, opts.Cells, leafColor))
	if err != nil {
		return nil, err
	}

	m := coatedMaterial("wall", base)
	if err := applyOptions(m, opts); err != nil {
		return nil, err
	}

	return &renderer.Scene{
		Camera: renderer.NewCamera(renderer.CameraConfig{
			Center: core.NewVec3(0, 0, 0),
			LookAt: core.NewVec3(0, 0, -1),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   60,
			Width:  opts.Width,
			Height: opts.Height,
		}),
		Quad: renderer.NewQuad(
			core.NewVec3(-3, -2, -2),
			core.NewVec3(6, 0, 0),
			core.NewVec3(0, 4, 0),
			core.NewVec2(3, 2),
		),
		Material:   m,
		LightDir:   core.NewVec3(0.3, 0.5, 1),
		LightColor: core.NewVec3(2, 2, 2),
		Ambient:    core.NewVec3(0.2, 0.2, 0.25),
		Background: core.NewVec3(0.05, 0.05, 0.08),
	}, nil
}
