package core

// Logger interface for progress and diagnostics logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Sampler provides uniform random numbers in [0, 1) to the sampling routines.
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float32
	Get2D() Vec2
	Get3D() Vec3
}
