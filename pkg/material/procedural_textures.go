package material

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// newProceduralTexture fills a width x height texture from a per-texel function.
// Sizes below 1 are raised to 1.
func newProceduralTexture(width, height int, state SamplerState, texel func(x, y int) core.Vec4) *ImageTexture {
	width, height = max(1, width), max(1, height)
	pixels := make([]core.Vec4, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = texel(x, y)
		}
	}
	return newImageTexture(width, height, pixels, state)
}

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	checkSize = max(1, checkSize)
	return newProceduralTexture(width, height, DefaultSamplerState(), func(x, y int) core.Vec4 {
		if (x/checkSize+y/checkSize)%2 == 0 {
			return opaque(color1)
		}
		return opaque(color2)
	})
}

// NewUVDebugTexture creates a texture showing UV coordinates as colors.
// U maps to red, V to green; rows are stored top first so V grows upward.
func NewUVDebugTexture(width, height int) *ImageTexture {
	return newProceduralTexture(width, height, DefaultSamplerState(), func(x, y int) core.Vec4 {
		u := (float32(x) + 0.5) / float32(max(1, width))
		v := 1 - (float32(y)+0.5)/float32(max(1, height))
		return core.NewVec4(u, v, 0, 1)
	})
}

// NewGradientTexture creates a vertical gradient from color1 (top) to color2 (bottom)
func NewGradientTexture(width, height int, color1, color2 core.Vec3) *ImageTexture {
	return newProceduralTexture(width, height, DefaultSamplerState(), func(_, y int) core.Vec4 {
		t := float32(y) / float32(max(1, height-1))
		return opaque(color1.Multiply(1 - t).Add(color2.Multiply(t)))
	})
}

// NewCutoutTexture creates a base color texture whose alpha is a grid of discs,
// the typical foliage or fence cutout. Texels inside a disc have alpha 1, texels
// outside have alpha 0, with a one-texel ramp at the edge.
func NewCutoutTexture(size, cells int, color core.Vec3) *ImageTexture {
	size, cells = max(1, size), max(1, cells)
	cellSize := float32(size) / float32(cells)
	radius := 0.4 * cellSize
	return newProceduralTexture(size, size, DefaultSamplerState(), func(x, y int) core.Vec4 {
		cx := core.Frac((float32(x)+0.5)/cellSize) - 0.5
		cy := core.Frac((float32(y)+0.5)/cellSize) - 0.5
		dist := math32.Sqrt(cx*cx+cy*cy) * cellSize
		alpha := core.Saturate(radius - dist + 0.5)
		return core.NewVec4(color.X, color.Y, color.Z, alpha)
	})
}

// NewBumpNormalTexture encodes the normals of a sinusoidal bump field in the given
// normal map encoding. amplitude is the peak slope.
func NewBumpNormalTexture(size, bumps int, amplitude float32, mode shading.NormalMapMode) *ImageTexture {
	size, bumps = max(1, size), max(1, bumps)
	freq := 2 * math32.Pi * float32(bumps) / float32(size)
	return newProceduralTexture(size, size, DefaultSamplerState(), func(x, y int) core.Vec4 {
		// Height h = cos(fx)cos(fy) scaled so the slopes peak at amplitude.
		// Image rows run downward, so the v slope flips sign.
		px, py := (float32(x)+0.5)*freq, (float32(y)+0.5)*freq
		sx, cx := math32.Sincos(px)
		sy, cy := math32.Sincos(py)
		n := core.NewVec3(amplitude*sx*cy, -amplitude*cx*sy, 1).Normalize()
		return EncodeNormal(mode, n)
	})
}

// EncodeNormal stores a tangent-space normal as a texel in the given encoding.
// DecodeNormal in package shading is its inverse.
func EncodeNormal(mode shading.NormalMapMode, n core.Vec3) core.Vec4 {
	switch mode {
	case shading.NormalMapLEAN:
		return shading.EncodeLean(n)
	case shading.NormalMapRG:
		return core.NewVec4(n.X*0.5+0.5, n.Y*0.5+0.5, 0, 1)
	default:
		return core.NewVec4(n.X*0.5+0.5, n.Y*0.5+0.5, n.Z*0.5+0.5, 1)
	}
}

func opaque(c core.Vec3) core.Vec4 {
	return core.NewVec4(c.X, c.Y, c.Z, 1)
}
