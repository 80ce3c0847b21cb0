package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/loaders"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/renderer"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// ErrUnknownScene is returned by New for ids that name no scene
var ErrUnknownScene = errors.New("unknown scene")

const (
	texturePrefix  = "texture:"
	maxTextureSize = 2048
)

// Options adjusts a scene preset
type Options struct {
	Width         int
	Height        int
	Texture       string // Base color image; replaces the preset's procedural texture
	NormalTexture string // Normal map image in the NormalMode encoding
	NormalMode    shading.NormalMapMode
	Bumps         int  // Bumps per side of the procedural normal map, 0 disables it
	Cells         int  // Discs per side of the procedural cutout texture
	DoubleSided   bool // Shade back faces instead of culling them
	TextureDir    string
}

// DefaultOptions returns a 16:9 image with procedural textures
func DefaultOptions() Options {
	return Options{
		Width:      400,
		Height:     225,
		NormalMode: shading.NormalMapRGB,
		Bumps:      6,
		Cells:      8,
		TextureDir: "textures",
	}
}

// New creates the scene with the given id: a built-in preset or texture:<name>
// for an image in opts.TextureDir
func New(id string, opts Options) (*renderer.Scene, error) {
	if name, ok := strings.CutPrefix(id, texturePrefix); ok {
		path, err := findTexture(opts.TextureDir, name)
		if err != nil {
			return nil, err
		}
		opts.Texture = path
		return NewCutoutScene(opts)
	}

	switch id {
	case "cutout":
		return NewCutoutScene(opts)
	case "wall":
		return NewWallScene(opts)
	case "checker":
		return NewCheckerScene(opts)
	case "uv-debug":
		return NewUVDebugScene(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
}

// baseTexture loads opts.Texture when set, otherwise returns fallback
func baseTexture(opts Options, fallback material.TextureSampler) (material.TextureSampler, error) {
	if opts.Texture == "" {
		return fallback, nil
	}
	texture, err := loaders.LoadTexture(opts.Texture, loaders.TextureOptions{
		State:   material.DefaultSamplerState(),
		MaxSize: maxTextureSize,
	})
	if err != nil {
		return nil, fmt.Errorf("while loading base color texture: %w", err)
	}
	return texture, nil
}

// applyOptions sets the normal map and sidedness of m from opts
func applyOptions(m *material.Material, opts Options) error {
	m.NormalMode = opts.NormalMode
	if opts.DoubleSided {
		m.Flags |= material.FlagDoubleSided
	}

	switch {
	case opts.NormalTexture != "":
		normals, err := loaders.LoadTexture(opts.NormalTexture, loaders.TextureOptions{
			State:   material.DefaultSamplerState(),
			MaxSize: maxTextureSize,
		})
		if err != nil {
			return fmt.Errorf("while loading normal map: %w", err)
		}
		m.Normal = material.Channel{Texture: normals}
	case opts.Bumps > 0:
		m.Normal = material.Channel{Texture: material.NewBumpNormalTexture(256, opts.Bumps, 0.6, opts.NormalMode)}
	}
	return m.Validate()
}

// coatedMaterial creates a masked diffuse material under a glossy dielectric coat
func coatedMaterial(name string, base material.TextureSampler) *material.Material {
	m := material.NewMaterial(name, material.Channel{Texture: base})
	coat := material.Layer{Type: material.LayerDielectric, Albedo: core.Splat3(1), Blend: 1, Roughness: 0.4}
	m.Layers = append([]material.Layer{coat}, m.Layers...)
	return m
}
