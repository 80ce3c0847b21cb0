package material

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// recordingTexture returns a fixed color and records how it was sampled
type recordingTexture struct {
	color      core.Vec4
	gradCalls  int
	levelCalls int
	lastLOD    float32
}

func (r *recordingTexture) SampleLevel(_ core.Vec2, lod float32) core.Vec4 {
	r.levelCalls++
	r.lastLOD = lod
	return r.color
}

func (r *recordingTexture) SampleGrad(_, _, _ core.Vec2) core.Vec4 {
	r.gradCalls++
	return r.color
}

func (r *recordingTexture) Size() (int, int) { return 4, 4 }

func flatAttribs() ShadingAttribs {
	return ShadingAttribs{
		UV:    core.NewVec2(0.5, 0.5),
		DUVdx: core.NewVec2(0.5, 0),
		DUVdy: core.NewVec2(0, 0.25),
		Pos:   core.NewVec3(0.3, 0.7, 0),
		DPos:  shading.Derivatives{DX: core.NewVec3(0.01, 0, 0), DY: core.NewVec3(0, 0.01, 0)},
		Frame: shading.NewFrameFromNormal(core.NewVec3(0, 0, 1)),
	}
}

func TestSampleTexture(t *testing.T) {
	attr := flatAttribs()
	attr.LODMip = 2.5

	t.Run("absent channel returns constant", func(t *testing.T) {
		c := core.NewVec4(0.1, 0.2, 0.3, 0.4)
		if got := SampleTexture(Channel{Constant: c}, attr, SampleOptions{}); !got.Equals(c) {
			t.Errorf("expected %v, got %v", c, got)
		}
	})

	t.Run("implicit uses gradients", func(t *testing.T) {
		tex := &recordingTexture{color: white}
		SampleTexture(Channel{Texture: tex, Constant: black}, attr, SampleOptions{})
		if tex.gradCalls != 1 || tex.levelCalls != 0 {
			t.Errorf("expected one SampleGrad call, got grad=%d level=%d", tex.gradCalls, tex.levelCalls)
		}
	})

	t.Run("explicit uses the attribute level", func(t *testing.T) {
		tex := &recordingTexture{color: white}
		SampleTexture(Channel{Texture: tex}, attr, SampleOptions{Mode: LODExplicit})
		if tex.levelCalls != 1 || tex.lastLOD != 2.5 {
			t.Errorf("expected SampleLevel at 2.5, got calls=%d lod=%f", tex.levelCalls, tex.lastLOD)
		}
	})

	t.Run("bias offsets the gradient level", func(t *testing.T) {
		tex := &recordingTexture{color: white}
		SampleTexture(Channel{Texture: tex}, attr, SampleOptions{Mode: LODBias, Bias: -0.5})
		// dUVdx spans 2 texels of a 4x4 texture: level 1
		if tex.levelCalls != 1 || math32.Abs(tex.lastLOD-0.5) > 1e-6 {
			t.Errorf("expected SampleLevel at 0.5, got calls=%d lod=%f", tex.levelCalls, tex.lastLOD)
		}
	})
}

func TestMaterialEvalAlpha(t *testing.T) {
	m := NewMaterial("leaf", Channel{Texture: NewConstantTexture(core.NewVec4(0.8, 0.6, 0.2, 0.3))})
	attr := flatAttribs()

	if got := m.EvalAlpha(attr); got != 0.3 {
		t.Errorf("expected alpha from the w channel, got %f", got)
	}

	m.Flags |= FlagAlphaFromOpacity
	if got := m.EvalAlpha(attr); got != 0.8 {
		t.Errorf("expected alpha from the red channel, got %f", got)
	}
}

func TestMaterialAlphaTest(t *testing.T) {
	attr := flatAttribs()
	cfg := shading.Config{AlphaTest: shading.AlphaTestDefault, HashedAlphaScale: 1}

	tests := []struct {
		name     string
		mode     AlphaMode
		alpha    float32
		expected bool
	}{
		{"opaque ignores alpha", AlphaModeOpaque, 0, false},
		{"mask discards below threshold", AlphaModeMask, 0.2, true},
		{"mask keeps above threshold", AlphaModeMask, 0.7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial("test", Channel{Constant: core.NewVec4(1, 1, 1, tt.alpha)})
			m.AlphaMode = tt.mode
			if got := m.AlphaTest(attr, cfg); got != tt.expected {
				t.Errorf("expected discard=%v, got %v", tt.expected, got)
			}
		})
	}

	// Hashed tests use the attribute position and derivatives
	m := NewMaterial("hashed", Channel{Constant: core.NewVec4(1, 1, 1, 0)})
	if !m.AlphaTest(attr, shading.DefaultConfig()) {
		t.Error("expected transparent pixel to be discarded by the hashed test")
	}
}

func TestMaterialPerturbNormal(t *testing.T) {
	attr := flatAttribs()
	attr.Frame = shading.NewFrameFromNormal(core.NewVec3(0, 1, 0))

	t.Run("no normal map keeps the frame", func(t *testing.T) {
		m := NewMaterial("plain", Channel{Constant: white})
		frame, variance := m.PerturbNormal(attr)
		if diff := cmp.Diff(attr.Frame, frame, approx); diff != "" {
			t.Errorf("frame mismatch (-want +got):\n%s", diff)
		}
		if variance != (core.Vec2{}) {
			t.Errorf("expected zero variance, got %v", variance)
		}
	})

	t.Run("flat RGB texel keeps the frame", func(t *testing.T) {
		m := NewMaterial("flat", Channel{Constant: white})
		m.Normal = Channel{Texture: NewConstantTexture(core.NewVec4(0.5, 0.5, 1, 1))}
		frame, _ := m.PerturbNormal(attr)
		if diff := cmp.Diff(attr.Frame, frame, approx); diff != "" {
			t.Errorf("frame mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("tilted texel rotates toward the tangent", func(t *testing.T) {
		m := NewMaterial("tilted", Channel{Constant: white})
		m.Normal = Channel{Texture: NewConstantTexture(EncodeNormal(shading.NormalMapRGB, core.NewVec3(0.6, 0, 0.8)))}
		frame, _ := m.PerturbNormal(attr)
		want := attr.Frame.T.Multiply(0.6).Add(attr.Frame.N.Multiply(0.8))
		if diff := cmp.Diff(want, frame.N, approx); diff != "" {
			t.Errorf("normal mismatch (-want +got):\n%s", diff)
		}
		if !frame.IsOrthonormal(1e-5) {
			t.Errorf("frame %+v not orthonormal", frame)
		}
	})

	t.Run("LEAN reports slope variance", func(t *testing.T) {
		m := NewMaterial("lean", Channel{Constant: white})
		m.NormalMode = shading.NormalMapLEAN
		// Mean slope 0 with second moments 0.04: a filtered bumpy region
		m.Normal = Channel{Texture: NewConstantTexture(core.NewVec4(0, 0, 0.04, 0.09))}
		frame, variance := m.PerturbNormal(attr)
		if diff := cmp.Diff(attr.Frame.N, frame.N, approx); diff != "" {
			t.Errorf("zero mean slope should keep the normal (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(core.NewVec2(0.04, 0.09), variance, approx); diff != "" {
			t.Errorf("variance mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMaterialOcclusionAndEmission(t *testing.T) {
	attr := flatAttribs()
	m := NewMaterial("ao", Channel{Constant: white})

	if got := m.EvalOcclusion(attr); got != 1 {
		t.Errorf("expected no occlusion without a map, got %f", got)
	}
	m.Occlusion = Channel{Texture: NewConstantTexture(core.NewVec4(0.25, 0.25, 0.25, 1))}
	if got := m.EvalOcclusion(attr); got != 0.25 {
		t.Errorf("expected 0.25 occlusion, got %f", got)
	}

	if got := m.EvalEmission(attr); !got.IsZero() {
		t.Errorf("expected no emission by default, got %v", got)
	}
	m.Emissive = Channel{Constant: core.NewVec4(2, 1, 0, 1)}
	if got := m.EvalEmission(attr); !got.Equals(core.NewVec3(2, 1, 0)) {
		t.Errorf("expected constant emission, got %v", got)
	}
}

func TestMaterialMetallic(t *testing.T) {
	// Base color 0.8 at metallic 0.5: diffuse 0.4, specular lerp(0.04, 0.8, 0.5) = 0.42
	m := &Material{
		Name: "half-metal",
		Layers: []Layer{
			{Type: LayerDiffuse, Albedo: core.Splat3(0.4), Blend: 1},
			{Type: LayerSpecular, Albedo: core.Splat3(0.42), Blend: 1},
		},
	}
	if got := m.Metallic(); math32.Abs(got-0.5) > 1e-4 {
		t.Errorf("expected metallic 0.5, got %f", got)
	}

	// Without layers the channel constants are used
	pure := &Material{
		BaseColor: Channel{Constant: core.NewVec4(0, 0, 0, 1)},
		Specular:  Channel{Constant: core.NewVec4(0.8, 0.8, 0.8, 1)},
	}
	if got := pure.Metallic(); math32.Abs(got-1) > 1e-4 {
		t.Errorf("expected metallic 1, got %f", got)
	}

	dielectric := &Material{BaseColor: Channel{Constant: white}}
	if got := dielectric.Metallic(); got != 0 {
		t.Errorf("expected metallic 0 without specular, got %f", got)
	}
}

func TestMaterialValidate(t *testing.T) {
	valid := func() *Material { return NewMaterial("valid", Channel{Constant: white}) }

	tests := []struct {
		name     string
		modify   func(m *Material)
		expected error
	}{
		{"default material", func(*Material) {}, nil},
		{"threshold above one", func(m *Material) { m.AlphaThreshold = 1.5 }, ErrInvalidMaterial},
		{"negative threshold", func(m *Material) { m.AlphaThreshold = -0.1 }, ErrInvalidMaterial},
		{"unknown alpha mode", func(m *Material) { m.AlphaMode = AlphaMode(9) }, ErrUnknownAlphaMode},
		{"unknown normal mode", func(m *Material) { m.NormalMode = shading.NormalMapMode(9) }, shading.ErrUnknownNormalMapMode},
		{"unknown layer type", func(m *Material) { m.Layers[0].Type = LayerType(9) }, ErrUnknownLayerType},
		{"blend above one", func(m *Material) { m.Layers[0].Blend = 2 }, ErrInvalidMaterial},
		{"negative IOR", func(m *Material) { m.Layers[0].IOR = -1 }, ErrInvalidMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.modify(m)
			err := m.Validate()
			if tt.expected == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
			if !errors.Is(err, ErrInvalidMaterial) {
				t.Errorf("expected error to wrap ErrInvalidMaterial, got %v", err)
			}
		})
	}
}
