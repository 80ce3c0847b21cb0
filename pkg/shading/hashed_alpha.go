package shading

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
)

const (
	// MinHashedAlpha is the lower clamp of every hashed alpha threshold.
	// A zero threshold would let fully transparent texels pass the test.
	MinHashedAlpha = 1e-6

	// anisoNoiseScale is 1/sqrt(2), the per-axis noise cell size relative to a pixel footprint
	anisoNoiseScale = 0.707

	// Guard range for scale*derivative. Below the minimum the quantized coordinates grow
	// past float32 integer precision and the hash stops varying across the surface.
	minHashFootprint = 1e-6
	maxHashFootprint = 1e20
)

// Derivatives holds the screen-space partial derivatives of a shaded quantity:
// DX is the change to the neighbouring pixel on the right, DY to the one below.
type Derivatives struct {
	DX core.Vec3
	DY core.Vec3
}

// CalculateHashedAlpha returns a stochastic alpha cutoff for coord in [MinHashedAlpha, 1].
//
// The threshold is a hash of coord quantized to noise cells sized from the pixel footprint,
// so it stays fixed on the surface under camera motion. Cells at the two power-of-two scales
// bracketing the footprint are blended and the blend is passed through its CDF, which keeps
// the result uniformly distributed for any blend weight.
//
// Degenerate footprints are guarded: in the anisotropic variant an axis with zero
// derivative (any planar surface aligned with an object axis) borrows the largest axis
// derivative, and every scale*derivative product is clamped to [1e-6, 1e20]. Zero
// derivatives and zero scale therefore still yield a valid threshold.
// Use CalculateHashedAlphaRaw for the unguarded arithmetic.
func CalculateHashedAlpha(coord core.Vec3, deriv Derivatives, scale float32, anisotropic bool) float32 {
	if anisotropic {
		return hashedAlphaAnisotropic(coord, fillFlatAxes(deriv.DX.Abs().Max(deriv.DY.Abs())), scale, guardFootprint)
	}
	return hashedAlphaIsotropic(coord, deriv, scale, guardFootprint)
}

// CalculateHashedAlphaRaw is CalculateHashedAlpha without the footprint guard.
// Degenerate inputs propagate Inf/NaN exactly as the shader arithmetic would.
func CalculateHashedAlphaRaw(coord core.Vec3, deriv Derivatives, scale float32, anisotropic bool) float32 {
	if anisotropic {
		return hashedAlphaAnisotropic(coord, deriv.DX.Abs().Max(deriv.DY.Abs()), scale, rawFootprint)
	}
	return hashedAlphaIsotropic(coord, deriv, scale, rawFootprint)
}

func guardFootprint(f float32) float32 {
	if math32.IsNaN(f) {
		return minHashFootprint
	}
	return max(minHashFootprint, min(maxHashFootprint, f))
}

func rawFootprint(f float32) float32 {
	return f
}

// fillFlatAxes replaces zero per-axis derivatives with the largest one
func fillFlatAxes(d core.Vec3) core.Vec3 {
	widest := max(d.X, d.Y, d.Z)
	fill := func(v float32) float32 {
		if v > 0 {
			return v
		}
		return widest
	}
	return core.NewVec3(fill(d.X), fill(d.Y), fill(d.Z))
}

func hashedAlphaIsotropic(coord core.Vec3, deriv Derivatives, scale float32, footprint func(float32) float32) float32 {
	maxDeriv := max(deriv.DX.Length(), deriv.DY.Length())
	pixScale := 1 / footprint(scale*maxDeriv)

	// Two nearest log-discretized noise scales
	logScale := math32.Log2(pixScale)
	scaleFloor := math32.Exp2(math32.Floor(logScale))
	scaleCeil := math32.Exp2(math32.Ceil(logScale))

	alphaFloor := SineHash3D(coord.Multiply(scaleFloor).Floor())
	alphaCeil := SineHash3D(coord.Multiply(scaleCeil).Floor())

	return blendHashedThreshold(alphaFloor, alphaCeil, core.Frac(logScale))
}

// hashedAlphaAnisotropic takes the per-axis footprint max(|ddx|, |ddy|) precomputed
func hashedAlphaAnisotropic(coord, anisoDeriv core.Vec3, scale float32, footprint func(float32) float32) float32 {
	logScales := core.NewVec3(
		math32.Log2(anisoNoiseScale/footprint(scale*anisoDeriv.X)),
		math32.Log2(anisoNoiseScale/footprint(scale*anisoDeriv.Y)),
		math32.Log2(anisoNoiseScale/footprint(scale*anisoDeriv.Z)),
	)

	scaleFloor := core.NewVec3(
		math32.Exp2(math32.Floor(logScales.X)),
		math32.Exp2(math32.Floor(logScales.Y)),
		math32.Exp2(math32.Floor(logScales.Z)),
	)
	scaleCeil := core.NewVec3(
		math32.Exp2(math32.Ceil(logScales.X)),
		math32.Exp2(math32.Ceil(logScales.Y)),
		math32.Exp2(math32.Ceil(logScales.Z)),
	)

	alphaFloor := SineHash3D(scaleFloor.MultiplyVec(coord).Floor())
	alphaCeil := SineHash3D(scaleCeil.MultiplyVec(coord).Floor())

	// Blend by how close the fractional position is to the all-zero vs all-one corner
	fractLoc := core.NewVec3(core.Frac(logScales.X), core.Frac(logScales.Y), core.Frac(logScales.Z))
	toFloor := fractLoc.Length()
	toCeil := core.Splat3(1).Subtract(fractLoc).Length()
	lerpFactor := toFloor / (toFloor + toCeil)

	return blendHashedThreshold(alphaFloor, alphaCeil, lerpFactor)
}

// blendHashedThreshold lerps two uniform hashes and maps the result back to a uniform
// distribution. The sum of two weighted uniforms has a trapezoidal density; the three
// cases are the pieces of its CDF.
func blendHashedThreshold(alphaFloor, alphaCeil, lerpFactor float32) float32 {
	x := (1-lerpFactor)*alphaFloor + lerpFactor*alphaCeil
	a := min(lerpFactor, 1-lerpFactor)

	var threshold float32
	switch {
	case x < a:
		threshold = x * x / (2 * a * (1 - a))
	case x < 1-a:
		threshold = (x - 0.5*a) / (1 - a)
	default:
		threshold = 1 - (1-x)*(1-x)/(2*a*(1-a))
	}

	return max(MinHashedAlpha, min(1, threshold))
}
