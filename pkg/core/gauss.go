package core

import "github.com/chewxy/math32"

// Unit-variance Gaussian densities in one to three dimensions.
// The *Squared variants take the squared distance from the mean.

const (
	invSqrt2Pi   = 0.3989422804014327  // 1 / sqrt(2π)
	inv2Pi       = 0.15915494309189535 // 1 / (2π)
	inv2PiPow1p5 = 0.06349363593424097 // 1 / (2π)^1.5
)

// EvalGaussSquared1D evaluates the 1D standard normal density at squared distance dist2
func EvalGaussSquared1D(dist2 float32) float32 {
	return invSqrt2Pi * math32.Exp(-0.5*dist2)
}

// EvalGaussSquared2D evaluates the 2D standard normal density at squared distance dist2
func EvalGaussSquared2D(dist2 float32) float32 {
	return inv2Pi * math32.Exp(-0.5*dist2)
}

// EvalGaussSquared3D evaluates the 3D standard normal density at squared distance dist2
func EvalGaussSquared3D(dist2 float32) float32 {
	return inv2PiPow1p5 * math32.Exp(-0.5*dist2)
}

// EvalGauss1D evaluates the 1D standard normal density at distance dist
func EvalGauss1D(dist float32) float32 {
	return EvalGaussSquared1D(dist * dist)
}

// EvalGauss2D evaluates the 2D standard normal density at distance dist
func EvalGauss2D(dist float32) float32 {
	return EvalGaussSquared2D(dist * dist)
}

// EvalGauss3D evaluates the 3D standard normal density at distance dist
func EvalGauss3D(dist float32) float32 {
	return EvalGaussSquared3D(dist * dist)
}
