package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// reflectFrameParallelCos is the |n·r| above which the reflection direction is
// treated as parallel to the normal
const reflectFrameParallelCos = 0.999

// Frame is a tangent frame: tangent, bitangent and normal, expected to be orthonormal
type Frame struct {
	T core.Vec3
	B core.Vec3
	N core.Vec3
}

// NewFrameFromNormal builds an arbitrary orthonormal frame around n
func NewFrameFromNormal(n core.Vec3) Frame {
	b := CreateTangentFrame(n)
	return Frame{T: b.Cross(n), B: b, N: n}
}

// Matrix returns the tangent-to-world basis with T, B, N as columns
func (f Frame) Matrix() mgl32.Mat3 {
	return mgl32.Mat3FromCols(f.T.Mgl(), f.B.Mgl(), f.N.Mgl())
}

// ToWorld transforms a tangent-space vector into the frame's space
func (f Frame) ToWorld(v core.Vec3) core.Vec3 {
	return core.FromMgl(f.Matrix().Mul3x1(v.Mgl()))
}

// ToLocal transforms a vector into tangent space
func (f Frame) ToLocal(v core.Vec3) core.Vec3 {
	return core.FromMgl(f.Matrix().Transpose().Mul3x1(v.Mgl()))
}

// IsOrthonormal reports whether all axes are unit length and mutually perpendicular within eps
func (f Frame) IsOrthonormal(eps float32) bool {
	for _, axis := range []core.Vec3{f.T, f.B, f.N} {
		if math32.Abs(axis.Length()-1) > eps {
			return false
		}
	}
	return math32.Abs(f.T.Dot(f.B)) <= eps &&
		math32.Abs(f.T.Dot(f.N)) <= eps &&
		math32.Abs(f.B.Dot(f.N)) <= eps
}

// CreateTangentFrame returns a unit bitangent perpendicular to normal.
// The branch drops the smaller of |x| and |y| so the 2D cross product never degenerates.
func CreateTangentFrame(normal core.Vec3) core.Vec3 {
	if math32.Abs(normal.X) > math32.Abs(normal.Y) {
		invLen := 1 / math32.Sqrt(normal.X*normal.X+normal.Z*normal.Z)
		return core.NewVec3(normal.Z*invLen, 0, -normal.X*invLen)
	}
	invLen := 1 / math32.Sqrt(normal.Y*normal.Y+normal.Z*normal.Z)
	return core.NewVec3(0, normal.Z*invLen, -normal.Y*invLen)
}

// ReflectFrame builds a tangent and bitangent around normal with the tangent pointing
// along the projection of reflectDir onto the surface. When reflectDir is within
// acos(0.999) of ±normal there is no stable projection, so the +Z axis (or +X for a
// normal near ±Z) is projected instead.
func ReflectFrame(normal, reflectDir core.Vec3) (tangent, bitangent core.Vec3) {
	if math32.Abs(normal.Dot(reflectDir)) > reflectFrameParallelCos {
		reflectDir = core.NewVec3(0, 0, 1)
		if math32.Abs(normal.Z) >= reflectFrameParallelCos {
			reflectDir = core.NewVec3(1, 0, 0)
		}
	}
	bitangent = normal.Cross(reflectDir).Normalize()
	tangent = bitangent.Cross(normal)
	return tangent, bitangent
}

// Reflect mirrors incident about n. n must be normalized.
func Reflect(incident, n core.Vec3) core.Vec3 {
	return incident.Subtract(n.Multiply(2 * incident.Dot(n)))
}

// Refract bends incident through a surface with normal n and relative index eta.
// Total internal reflection returns the zero vector; callers check IsZero.
func Refract(incident, n core.Vec3, eta float32) core.Vec3 {
	cosI := n.Dot(incident)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return core.Vec3{}
	}
	return incident.Multiply(eta).Subtract(n.Multiply(eta*cosI + math32.Sqrt(k)))
}
