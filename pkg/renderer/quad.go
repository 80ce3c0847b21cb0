package renderer

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// Quad is a parallelogram defined by a corner and two edge vectors.
// UV (0,0) is at Corner, U runs along the first edge and V along the second.
type Quad struct {
	Corner  core.Vec3
	U       core.Vec3
	V       core.Vec3
	Normal  core.Vec3 // U × V, normalized
	UVScale core.Vec2 // Texture repeats across the quad
	D       float32   // Plane equation constant: normal · p = d
	W       core.Vec3 // Cached n / (n · (u × v)) for barycentric coordinates
}

// QuadHit describes a ray-quad intersection
type QuadHit struct {
	T         float32
	Point     core.Vec3
	Bary      core.Vec2 // Position along U and V in [0, 1] inside the quad
	UV        core.Vec2 // Bary scaled by UVScale
	FrontFace bool
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, uvScale core.Vec2) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()
	return &Quad{
		Corner:  corner,
		U:       u,
		V:       v,
		Normal:  normal,
		UVScale: uvScale,
		D:       normal.Dot(corner),
		W:       normal.Multiply(1 / normal.Dot(cross)),
	}
}

// IntersectPlane intersects the ray with the quad's infinite plane. Points outside
// the quad get extrapolated UVs, which derivative estimation relies on at the edges.
func (q *Quad) IntersectPlane(ray core.Ray) (QuadHit, bool) {
	denominator := ray.Direction.Dot(q.Normal)
	if math32.Abs(denominator) < 1e-8 {
		return QuadHit{}, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	point := ray.At(t)
	hitVector := point.Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))

	return QuadHit{
		T:         t,
		Point:     point,
		Bary:      core.NewVec2(alpha, beta),
		UV:        core.NewVec2(alpha*q.UVScale.X, beta*q.UVScale.Y),
		FrontFace: denominator < 0,
	}, true
}

// Hit tests if a ray intersects the quad within [tMin, tMax]
func (q *Quad) Hit(ray core.Ray, tMin, tMax float32) (QuadHit, bool) {
	hit, ok := q.IntersectPlane(ray)
	if !ok || hit.T < tMin || hit.T > tMax {
		return QuadHit{}, false
	}

	if hit.Bary.X < 0 || hit.Bary.X > 1 || hit.Bary.Y < 0 || hit.Bary.Y > 1 {
		return QuadHit{}, false
	}
	return hit, true
}

// Frame returns the tangent frame aligned with the UV axes, facing the viewer's side
func (q *Quad) Frame(frontFace bool) shading.Frame {
	n := q.Normal
	if !frontFace {
		n = n.Negate()
	}
	t := q.U.Normalize()
	return shading.Frame{T: t, B: n.Cross(t), N: n}
}
