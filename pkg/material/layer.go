package material

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// ErrUnknownLayerType is returned for layer types outside the known set
var ErrUnknownLayerType = errors.New("unknown layer type")

// LayerType selects the lobe a layer contributes
type LayerType int

const (
	LayerDiffuse    LayerType = iota // Lambertian, tinted by the base color
	LayerSpecular                    // Glossy reflection, tinted by the specular channel
	LayerDielectric                  // Fresnel-weighted glossy coat; transmits the rest
	LayerConductor                   // Glossy reflection, tinted by the base color
)

func (t LayerType) String() string {
	switch t {
	case LayerDiffuse:
		return "diffuse"
	case LayerSpecular:
		return "specular"
	case LayerDielectric:
		return "dielectric"
	case LayerConductor:
		return "conductor"
	}
	return fmt.Sprintf("LayerType(%d)", int(t))
}

// Layer is one lobe in a material's top-down layer stack
type Layer struct {
	Type      LayerType
	Albedo    core.Vec3
	Blend     float32 // Fraction of the energy reaching this layer that it takes, in [0, 1]
	Roughness float32 // Perceptual roughness of glossy lobes
	IOR       float32 // Index of refraction of dielectric layers; 0 means 1.5
}

func (l Layer) validate() error {
	if l.Type < LayerDiffuse || l.Type > LayerConductor {
		return fmt.Errorf("%w: %v", ErrUnknownLayerType, l.Type)
	}
	if !(l.Blend >= 0 && l.Blend <= 1) {
		return fmt.Errorf("blend %v outside [0, 1]", l.Blend)
	}
	if !(l.Roughness >= 0 && l.Roughness <= 1) {
		return fmt.Errorf("roughness %v outside [0, 1]", l.Roughness)
	}
	if l.IOR < 0 {
		return fmt.Errorf("negative index of refraction %v", l.IOR)
	}
	return nil
}

// LayerInputs are the sampled textures that tint the layers
type LayerInputs struct {
	BaseColor     core.Vec3
	Specular      core.Vec3
	SlopeVariance core.Vec2 // LEAN slope variance, widens glossy lobes
}

// EvaluateBRDF sums the layer lobes for light arriving from wi and leaving toward wo,
// both pointing away from the surface with normal n. Each layer takes its Blend share
// of the energy that reached it; a dielectric coat passes the Fresnel-transmitted part on.
func (m *Material) EvaluateBRDF(wi, wo, n core.Vec3, in LayerInputs) core.Vec3 {
	cosI := wi.Dot(n)
	cosO := wo.Dot(n)
	if cosI <= 0 || cosO <= 0 {
		return core.Vec3{}
	}

	remaining := float32(1)
	var sum core.Vec3
	for _, l := range m.Layers {
		weight := remaining * l.Blend
		switch l.Type {
		case LayerDiffuse:
			sum = sum.Add(l.Albedo.MultiplyVec(in.BaseColor).Multiply(weight / math32.Pi))
			remaining -= weight
		case LayerSpecular:
			lobe := glossyLobe(wi, wo, n, l.Roughness, in.SlopeVariance)
			sum = sum.Add(l.Albedo.MultiplyVec(in.Specular).Multiply(weight * lobe))
			remaining -= weight
		case LayerConductor:
			lobe := glossyLobe(wi, wo, n, l.Roughness, in.SlopeVariance)
			sum = sum.Add(l.Albedo.MultiplyVec(in.BaseColor).Multiply(weight * lobe))
			remaining -= weight
		case LayerDielectric:
			ior := l.IOR
			if ior == 0 {
				ior = 1.5
			}
			fresnel := Reflectance(cosO, 1/ior)
			lobe := glossyLobe(wi, wo, n, l.Roughness, in.SlopeVariance)
			sum = sum.Add(l.Albedo.Multiply(weight * fresnel * lobe))
			remaining -= weight * fresnel
		}
		if remaining <= 0 {
			break
		}
	}
	return sum
}

// glossyLobe is a normalized Blinn-Phong lobe. The exponent comes from the squared
// roughness widened by the mean LEAN slope variance.
func glossyLobe(wi, wo, n core.Vec3, roughness float32, slopeVariance core.Vec2) float32 {
	alpha2 := max(1e-4, roughness*roughness*roughness*roughness+0.5*(slopeVariance.X+slopeVariance.Y))
	exponent := 2/alpha2 - 2
	h := wi.Add(wo).Normalize()
	cosH := max(0, h.Dot(n))
	return (exponent + 8) / (8 * math32.Pi) * math32.Pow(cosH, exponent)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float32) float32 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}
