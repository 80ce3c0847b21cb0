package shading

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// SineHash is a cheap deterministic hash of a 2D point into [0, 1).
// The exact formula matters: the hashed alpha test relies on its continuity,
// so it must not be swapped for a "better" hash.
func SineHash(p core.Vec2) float32 {
	return core.Frac(1e4 * math32.Sin(17*p.X+0.1*p.Y) * (0.1 + math32.Abs(math32.Sin(13*p.Y+p.X))))
}

// SineHash3D hashes the XY pair first, then hashes that result together with Z
func SineHash3D(p core.Vec3) float32 {
	return SineHash(core.NewVec2(SineHash(p.XY()), p.Z))
}
