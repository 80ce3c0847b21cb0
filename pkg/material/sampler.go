package material

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// TextureSampler returns filtered colors from a texture. It is the only way shading code
// reads texture data, so tests can substitute constant or synthetic textures.
type TextureSampler interface {
	// SampleLevel samples at an explicit mip level; fractional levels blend between mips
	SampleLevel(uv core.Vec2, lod float32) core.Vec4
	// SampleGrad derives the mip level from the screen-space derivatives of uv
	SampleGrad(uv core.Vec2, dUVdx, dUVdy core.Vec2) core.Vec4
	// Size returns the dimensions of the finest level
	Size() (width, height int)
}

// FilterMode selects texel filtering within and between mip levels
type FilterMode int

const (
	FilterLinear FilterMode = iota // Bilinear within a level, linear between levels
	FilterPoint                    // Nearest texel of the nearest level
)

// AddressMode selects how coordinates outside [0, 1] are resolved
type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
	AddressMirror
)

// SamplerState is the fixed-function sampler configuration attached to a texture
type SamplerState struct {
	Filter  FilterMode
	Address AddressMode
	LODBias float32 // Added to every gradient-derived level
}

// DefaultSamplerState returns trilinear filtering with wrapping
func DefaultSamplerState() SamplerState {
	return SamplerState{Filter: FilterLinear, Address: AddressWrap}
}

// resolve maps a possibly out-of-range texel index into [0, n)
func (a AddressMode) resolve(i, n int) int {
	switch a {
	case AddressClamp:
		return max(0, min(n-1, i))
	case AddressMirror:
		period := 2 * n
		m := ((i % period) + period) % period
		if m >= n {
			return period - 1 - m
		}
		return m
	default:
		return ((i % n) + n) % n
	}
}

// ComputeLOD returns the mip level for a pixel footprint: log2 of the longer of the
// two screen-space derivatives measured in texels of a width x height texture
func ComputeLOD(dUVdx, dUVdy core.Vec2, width, height int) float32 {
	size := core.NewVec2(float32(width), float32(height))
	dx := core.NewVec2(dUVdx.X*size.X, dUVdx.Y*size.Y)
	dy := core.NewVec2(dUVdy.X*size.X, dUVdy.Y*size.Y)
	return math32.Log2(max(dx.Length(), dy.Length()))
}

// ConstantTexture returns the same color everywhere
type ConstantTexture struct {
	Color core.Vec4
}

// NewConstantTexture creates a texture that always samples to color
func NewConstantTexture(color core.Vec4) *ConstantTexture {
	return &ConstantTexture{Color: color}
}

func (c *ConstantTexture) SampleLevel(core.Vec2, float32) core.Vec4 { return c.Color }

func (c *ConstantTexture) SampleGrad(core.Vec2, core.Vec2, core.Vec2) core.Vec4 { return c.Color }

func (c *ConstantTexture) Size() (int, int) { return 1, 1 }
