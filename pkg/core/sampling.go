package core

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
)

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float32 in [0, 1)
func (r *RandomSampler) Get1D() float32 {
	return r.random.Float32()
}

// Get2D returns two random float32 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float32(), r.random.Float32())
}

// Get3D returns three random float32 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float32(), r.random.Float32(), r.random.Float32())
}

// SampleDisk maps two uniform numbers to a point on the unit disk using the polar mapping.
// minRadiusSq lifts the radius floor, giving an annulus; pass 0 for the full disk.
func SampleDisk(r1, r2, minRadiusSq float32) Vec2 {
	r := math32.Sqrt(max(minRadiusSq, r1))
	phi := 2 * math32.Pi * r2
	sinPhi, cosPhi := math32.Sincos(phi)
	return NewVec2(r*cosPhi, r*sinPhi)
}

// CosineSampleHemisphere returns a cosine-weighted direction around +Z.
// The disk sample is lifted onto the hemisphere, so the result is unit length with Z >= 0.
func CosineSampleHemisphere(r1, r2 float32) Vec3 {
	d := SampleDisk(r1, r2, 0)
	z := math32.Sqrt(max(0, 1-d.X*d.X-d.Y*d.Y))
	return NewVec3(d.X, d.Y, z)
}

// UniformSampleSphere returns a uniformly distributed direction on the unit sphere
func UniformSampleSphere(r1, r2 float32) Vec3 {
	z := 1 - 2*r1 // z ∈ [-1, 1]
	r := math32.Sqrt(max(0, 1-z*z))
	phi := 2 * math32.Pi * r2
	sinPhi, cosPhi := math32.Sincos(phi)
	return NewVec3(r*cosPhi, r*sinPhi, z)
}

// UniformSampleHemisphere returns a uniformly distributed direction on the +Z hemisphere.
// z is linear in r1, so r1 = 0 lands on the equator.
func UniformSampleHemisphere(r1, r2 float32) Vec3 {
	z := r1
	r := math32.Sqrt(max(0, 1-z*z))
	phi := 2 * math32.Pi * r2
	sinPhi, cosPhi := math32.Sincos(phi)
	return NewVec3(r*cosPhi, r*sinPhi, z)
}

// SampleGauss returns a standard normal 2D sample in XY (Z = 0) via the Box-Muller transform.
// r1 is floored at the smallest positive float32 so log(0) never produces an infinite radius.
func SampleGauss(r1, r2 float32) Vec3 {
	r := math32.Sqrt(-2 * math32.Log(max(r1, math.SmallestNonzeroFloat32)))
	phi := 2 * math32.Pi * r2
	sinPhi, cosPhi := math32.Sincos(phi)
	return NewVec3(r*cosPhi, r*sinPhi, 0)
}

// CosineHemispherePDF is the solid-angle density of CosineSampleHemisphere
func CosineHemispherePDF(cosTheta float32) float32 {
	return max(0, cosTheta) / math32.Pi
}

// UniformSpherePDF is the solid-angle density of UniformSampleSphere
func UniformSpherePDF() float32 {
	return 1 / (4 * math32.Pi)
}

// UniformHemispherePDF is the solid-angle density of UniformSampleHemisphere
func UniformHemispherePDF() float32 {
	return 1 / (2 * math32.Pi)
}

// orthonormalBasis builds two unit vectors perpendicular to w
func orthonormalBasis(w Vec3) (u, v Vec3) {
	// Find a vector perpendicular to w
	if math32.Abs(w.X) > 0.1 {
		u = NewVec3(0, 1, 0)
	} else {
		u = NewVec3(1, 0, 0)
	}
	u = u.Cross(w).Normalize()
	v = w.Cross(u)
	return u, v
}

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	local := CosineSampleHemisphere(sample.X, sample.Y)
	tangent, bitangent := orthonormalBasis(normal)

	// Transform to world space
	return tangent.Multiply(local.X).Add(bitangent.Multiply(local.Y)).Add(normal.Multiply(local.Z))
}

// SampleCone samples a direction uniformly within a cone
func SampleCone(direction Vec3, cosTotalWidth float32, sample Vec2) Vec3 {
	u, v := orthonormalBasis(direction)

	cosTheta := 1 - sample.X*(1-cosTotalWidth)
	sinTheta := math32.Sqrt(max(0, 1-cosTheta*cosTheta))
	sinPhi, cosPhi := math32.Sincos(2 * math32.Pi * sample.Y)

	return u.Multiply(sinTheta * cosPhi).Add(v.Multiply(sinTheta * sinPhi)).Add(direction.Multiply(cosTheta))
}

// SamplePointInUnitDisk generates a point in the unit disk using concentric mapping.
// Unlike SampleDisk this keeps neighbouring samples adjacent, which suits stratified input.
func SamplePointInUnitDisk(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	uOffset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return Vec2{}
	}

	var theta, r float32
	if math32.Abs(uOffset.X) > math32.Abs(uOffset.Y) {
		r = uOffset.X
		theta = math32.Pi / 4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = math32.Pi/2 - math32.Pi/4*(uOffset.X/uOffset.Y)
	}

	sinTheta, cosTheta := math32.Sincos(theta)
	return NewVec2(r*cosTheta, r*sinTheta)
}

// SamplePointInUnitSphere generates a uniform point inside the unit sphere
func SamplePointInUnitSphere(sample Vec3) Vec3 {
	// r = ∛(u₁) to account for volume scaling
	r := math32.Pow(sample.X, 1.0/3.0)
	dir := UniformSampleSphere(sample.Z, sample.Y)
	return dir.Multiply(r)
}
