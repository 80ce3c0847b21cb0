package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// ErrInvalidMaterial is wrapped by every Validate failure
var ErrInvalidMaterial = errors.New("invalid material")

// ErrUnknownAlphaMode is returned for alpha modes outside the known set
var ErrUnknownAlphaMode = errors.New("unknown alpha mode")

// Channel is one material input: a texture when present, otherwise a constant
type Channel struct {
	Texture  TextureSampler
	Constant core.Vec4
}

// Present reports whether the channel is backed by a texture
func (c Channel) Present() bool {
	return c.Texture != nil
}

// AlphaMode states whether a material's alpha is used for cutouts
type AlphaMode int

const (
	AlphaModeOpaque AlphaMode = iota // Alpha ignored, never discarded
	AlphaModeMask                    // Alpha tested with the configured alpha test
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaModeOpaque:
		return "opaque"
	case AlphaModeMask:
		return "mask"
	}
	return fmt.Sprintf("AlphaMode(%d)", int(m))
}

// Flags are per-material boolean options
type Flags uint32

const (
	FlagDoubleSided Flags = 1 << iota // Back faces are shaded instead of culled
	FlagAlphaFromOpacity              // Alpha comes from the base color's red channel
)

// Has reports whether all bits of f are set
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// Material describes the inputs of a surface. It holds no per-pixel state and is
// safe to share between goroutines.
type Material struct {
	Name           string
	BaseColor      Channel
	Specular       Channel
	Emissive       Channel
	Normal         Channel
	Occlusion      Channel
	AlphaThreshold float32
	AlphaMode      AlphaMode
	NormalMode     shading.NormalMapMode
	Layers         []Layer
	Flags          Flags
}

// NewMaterial creates a masked material with a 0.5 alpha threshold and a single
// diffuse layer
func NewMaterial(name string, baseColor Channel) *Material {
	return &Material{
		Name:           name,
		BaseColor:      baseColor,
		AlphaThreshold: 0.5,
		AlphaMode:      AlphaModeMask,
		NormalMode:     shading.NormalMapRGB,
		Layers:         []Layer{{Type: LayerDiffuse, Albedo: core.Splat3(1), Blend: 1}},
	}
}

// ShadingAttribs are the per-pixel inputs to material evaluation
type ShadingAttribs struct {
	UV     core.Vec2
	DUVdx  core.Vec2 // Change of UV to the pixel on the right
	DUVdy  core.Vec2 // Change of UV to the pixel below
	Pos    core.Vec3 // Object-space position, the hashed alpha coordinate
	DPos   shading.Derivatives
	Frame  shading.Frame
	LODMip float32 // Level used by LODExplicit sampling
}

// LODMode selects how SampleTexture chooses a mip level
type LODMode int

const (
	LODImplicit LODMode = iota // From the UV derivatives
	LODExplicit                // ShadingAttribs.LODMip
	LODBias                    // From the UV derivatives plus a bias
)

// SampleOptions configures SampleTexture
type SampleOptions struct {
	Mode LODMode
	Bias float32
}

// SampleTexture evaluates a channel: the texture when present, the constant otherwise
func SampleTexture(ch Channel, attr ShadingAttribs, opts SampleOptions) core.Vec4 {
	if !ch.Present() {
		return ch.Constant
	}
	switch opts.Mode {
	case LODExplicit:
		return ch.Texture.SampleLevel(attr.UV, attr.LODMip)
	case LODBias:
		w, h := ch.Texture.Size()
		return ch.Texture.SampleLevel(attr.UV, ComputeLOD(attr.DUVdx, attr.DUVdy, w, h)+opts.Bias)
	default:
		return ch.Texture.SampleGrad(attr.UV, attr.DUVdx, attr.DUVdy)
	}
}

// EvalBaseColor returns the filtered base color including alpha
func (m *Material) EvalBaseColor(attr ShadingAttribs) core.Vec4 {
	return SampleTexture(m.BaseColor, attr, SampleOptions{})
}

// EvalAlpha returns the surface coverage at attr
func (m *Material) EvalAlpha(attr ShadingAttribs) float32 {
	c := m.EvalBaseColor(attr)
	if m.Flags.Has(FlagAlphaFromOpacity) {
		return c.X
	}
	return c.W
}

// AlphaTest reports whether the pixel at attr is discarded under cfg
func (m *Material) AlphaTest(attr ShadingAttribs, cfg shading.Config) bool {
	if m.AlphaMode != AlphaModeMask {
		return false
	}
	return cfg.Discard(shading.AlphaTestInput{
		Alpha:     m.EvalAlpha(attr),
		Threshold: m.AlphaThreshold,
		Coord:     attr.Pos,
		Deriv:     attr.DPos,
	})
}

// PerturbNormal applies the normal map to attr.Frame. The second result is the
// slope variance of LEAN maps, zero for the other encodings.
func (m *Material) PerturbNormal(attr ShadingAttribs) (shading.Frame, core.Vec2) {
	if !m.Normal.Present() {
		return attr.Frame, core.Vec2{}
	}

	texel := SampleTexture(m.Normal, attr, SampleOptions{})
	frame := shading.ApplyNormalMap(shading.DecodeNormal(m.NormalMode, texel), attr.Frame)
	if m.NormalMode == shading.NormalMapLEAN {
		return frame, shading.LeanVariance(texel)
	}
	return frame, core.Vec2{}
}

// EvalOcclusion returns the ambient occlusion factor, 1 without an occlusion map
func (m *Material) EvalOcclusion(attr ShadingAttribs) float32 {
	if !m.Occlusion.Present() {
		return 1
	}
	return SampleTexture(m.Occlusion, attr, SampleOptions{}).X
}

// EvalEmission returns the emitted radiance
func (m *Material) EvalEmission(attr ShadingAttribs) core.Vec3 {
	return SampleTexture(m.Emissive, attr, SampleOptions{}).RGB()
}

// Metallic recovers a metallic factor from the diffuse and specular layer albedos.
// Without layers the base color and specular constants are used.
func (m *Material) Metallic() float32 {
	if len(m.Layers) == 0 {
		return shading.GetMetallic(m.BaseColor.Constant.RGB(), m.Specular.Constant.RGB())
	}

	var diffuse, specular core.Vec3
	for _, l := range m.Layers {
		weighted := l.Albedo.Multiply(l.Blend)
		if l.Type == LayerDiffuse {
			diffuse = diffuse.Add(weighted)
		} else {
			specular = specular.Add(weighted)
		}
	}
	return shading.GetMetallic(diffuse, specular)
}

// Validate checks the material's enums and ranges
func (m *Material) Validate() error {
	if !(m.AlphaThreshold >= 0 && m.AlphaThreshold <= 1) {
		return fmt.Errorf("%w %q: alpha threshold %v outside [0, 1]", ErrInvalidMaterial, m.Name, m.AlphaThreshold)
	}
	if m.AlphaMode != AlphaModeOpaque && m.AlphaMode != AlphaModeMask {
		return fmt.Errorf("%w %q: %w: %v", ErrInvalidMaterial, m.Name, ErrUnknownAlphaMode, m.AlphaMode)
	}
	if !m.NormalMode.Valid() {
		return fmt.Errorf("%w %q: %w: %d", ErrInvalidMaterial, m.Name, shading.ErrUnknownNormalMapMode, int(m.NormalMode))
	}
	for i, l := range m.Layers {
		if err := l.validate(); err != nil {
			return fmt.Errorf("%w %q: layer %d: %w", ErrInvalidMaterial, m.Name, i, err)
		}
	}
	return nil
}
