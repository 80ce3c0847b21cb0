package shading

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// ApplyNormalMap rotates a tangent-space normal into frame f and returns the
// re-orthonormalized frame. The bitangent is re-derived first and the tangent is
// rebuilt from it, so the bitangent stays closest to its original direction.
func ApplyNormalMap(tangentNormal core.Vec3, f Frame) Frame {
	n := f.ToWorld(tangentNormal).Normalize()
	b := f.B.Subtract(n.Multiply(f.B.Dot(n))).Normalize()
	t := b.Cross(n).Normalize()
	return Frame{T: t, B: b, N: n}
}

// DecodeNormal turns a normal map texel into a tangent-space normal
func DecodeNormal(mode NormalMapMode, texel core.Vec4) core.Vec3 {
	switch mode {
	case NormalMapRG:
		x := texel.X*2 - 1
		y := texel.Y*2 - 1
		return core.NewVec3(x, y, math32.Sqrt(core.Saturate(1-x*x-y*y)))
	case NormalMapLEAN:
		return LeanNormal(texel)
	default:
		return texel.RGB().Multiply(2).Subtract(core.Splat3(1))
	}
}

// LeanNormal decodes the mean normal from a LEAN texel whose rg channels hold the
// first slope moments (n.x/n.z, n.y/n.z)
func LeanNormal(texel core.Vec4) core.Vec3 {
	return core.NewVec3(texel.X, texel.Y, 1).Normalize()
}

// LeanVariance returns the slope variance encoded by a LEAN texel: the second moments
// in ba minus the squared first moments. Filtering a LEAN map averages the moments, so
// the variance grows where the normal map is minified; callers add it to roughness².
func LeanVariance(texel core.Vec4) core.Vec2 {
	return core.NewVec2(
		max(0, texel.Z-texel.X*texel.X),
		max(0, texel.W-texel.Y*texel.Y),
	)
}

// EncodeLean packs a tangent-space normal into a LEAN texel with zero variance
func EncodeLean(n core.Vec3) core.Vec4 {
	bx := n.X / n.Z
	by := n.Y / n.Z
	return core.NewVec4(bx, by, bx*bx, by*by)
}
