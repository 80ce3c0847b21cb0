package shading

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// DirToSphericalCrd maps a direction to equirectangular texture coordinates.
// u wraps around the Y axis starting at -X, v runs from 0 at -Y to 1 at +Y.
func DirToSphericalCrd(direction core.Vec3) core.Vec2 {
	p := direction.Normalize()
	u := (1 + math32.Atan2(-p.Z, p.X)/math32.Pi) * 0.5
	// Clamp guards acos against |y| a rounding step above 1
	v := 1 - math32.Acos(max(-1, min(1, p.Y)))/math32.Pi
	return core.NewVec2(u, v)
}

// SphericalCrdToDir is the inverse of DirToSphericalCrd
func SphericalCrdToDir(uv core.Vec2) core.Vec3 {
	phi := math32.Pi * (2*uv.X - 1)
	theta := math32.Pi * (1 - uv.Y)
	sinTheta, cosTheta := math32.Sincos(theta)
	sinPhi, cosPhi := math32.Sincos(phi)
	return core.NewVec3(sinTheta*cosPhi, cosTheta, -sinTheta*sinPhi)
}

// ApplyAmbientOcclusion darkens color by an occlusion factor sampled from an AO map
func ApplyAmbientOcclusion(color core.Vec3, occlusion float32) core.Vec3 {
	return color.Multiply(occlusion)
}

// GetMetallic recovers a metallic factor from separate diffuse and specular colors.
//
// It inverts the metal/rough packing diffuse = base*(1-m), specular = lerp(0.04, base, m),
// which assumes a specular level of 0.5. Luminance is used instead of per-channel colors
// because the channels need not agree on a single metallic value.
func GetMetallic(diffuse, specular core.Vec3) float32 {
	d := diffuse.Luminance()
	s := specular.Luminance()
	if s == 0 {
		return 0
	}

	// 0.04m² + (d + s - 0.08)m + (0.04 - s) = 0
	b := s + d - 0.08
	c := 0.04 - s
	root := math32.Sqrt(b*b - 0.16*c)
	return (root - b) * 12.5
}
