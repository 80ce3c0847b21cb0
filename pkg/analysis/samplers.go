package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/df07/go-shading-kit/pkg/core"
)

// SamplerKind names one of the warping functions in core
type SamplerKind int

const (
	SamplerSphere     SamplerKind = iota // UniformSampleSphere
	SamplerHemisphere                    // UniformSampleHemisphere
	SamplerCosine                        // CosineSampleHemisphere
	SamplerDisk                          // SampleDisk
	SamplerGauss                         // SampleGauss
)

// ErrUnknownSampler is returned when parsing an unrecognized sampler name
var ErrUnknownSampler = errors.New("unknown sampler")

var samplerNames = map[SamplerKind]string{
	SamplerSphere:     "sphere",
	SamplerHemisphere: "hemisphere",
	SamplerCosine:     "cosine",
	SamplerDisk:       "disk",
	SamplerGauss:      "gauss",
}

func (k SamplerKind) String() string {
	if name, ok := samplerNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SamplerKind(%d)", int(k))
}

// ParseSamplerKind parses the spelling produced by String
func ParseSamplerKind(s string) (SamplerKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range samplerNames {
		if name == s {
			return kind, nil
		}
	}
	return SamplerSphere, fmt.Errorf("%w: %q", ErrUnknownSampler, s)
}

// SamplerKinds lists every sampler in declaration order
func SamplerKinds() []SamplerKind {
	return []SamplerKind{SamplerSphere, SamplerHemisphere, SamplerCosine, SamplerDisk, SamplerGauss}
}

// Sample draws one sample from the sampler for the uniform numbers r1, r2.
// Disk samples are returned in XY with Z = 0.
func (k SamplerKind) Sample(r1, r2 float32) core.Vec3 {
	switch k {
	case SamplerHemisphere:
		return core.UniformSampleHemisphere(r1, r2)
	case SamplerCosine:
		return core.CosineSampleHemisphere(r1, r2)
	case SamplerDisk:
		d := core.SampleDisk(r1, r2, 0)
		return core.NewVec3(d.X, d.Y, 0)
	case SamplerGauss:
		return core.SampleGauss(r1, r2)
	default:
		return core.UniformSampleSphere(r1, r2)
	}
}

// Uniformize maps a sample to a scalar that is uniform in [0, 1] when the sampler
// has its intended distribution:
//   - sphere: (z+1)/2, since z is uniform on the sphere
//   - hemisphere: z
//   - cosine: z², the CDF of a cosine-weighted cos θ
//   - disk: the squared radius
//   - gauss: the standard normal CDF of x
func (k SamplerKind) Uniformize(s core.Vec3) float64 {
	switch k {
	case SamplerHemisphere:
		return float64(s.Z)
	case SamplerCosine:
		return float64(s.Z * s.Z)
	case SamplerDisk:
		return float64(s.X*s.X + s.Y*s.Y)
	case SamplerGauss:
		return distuv.UnitNormal.CDF(float64(s.X))
	default:
		return float64((s.Z + 1) / 2)
	}
}

// SamplerHistogram collects uniformized samples from kind
func SamplerHistogram(ctx context.Context, kind SamplerKind, cfg BatchConfig) (*Histogram, error) {
	if _, ok := samplerNames[kind]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSampler, kind)
	}
	return fillHistogram(ctx, cfg, func(random *rand.Rand) float64 {
		return kind.Uniformize(kind.Sample(random.Float32(), random.Float32()))
	})
}
