package shading

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-shading-kit/pkg/core"
)

func TestApplyNormalMap_FlatKeepsFrame(t *testing.T) {
	f := NewFrameFromNormal(core.NewVec3(0.2, 0.9, -0.3).Normalize())
	got := ApplyNormalMap(core.NewVec3(0, 0, 1), f)
	if diff := cmp.Diff(f, got, approx); diff != "" {
		t.Errorf("flat normal should not change the frame (-want +got):\n%s", diff)
	}
}

func TestApplyNormalMap_PreservesOrthonormality(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	sampler := core.NewRandomSampler(random)

	for _, n := range randomUnitVectors(11, 2000) {
		f := NewFrameFromNormal(n)
		u := sampler.Get2D()
		tangentNormal := core.CosineSampleHemisphere(u.X, u.Y)

		got := ApplyNormalMap(tangentNormal, f)
		if !got.IsOrthonormal(1e-4) {
			t.Fatalf("n=%v tangentNormal=%v: frame %+v not orthonormal", n, tangentNormal, got)
		}
		if diff := cmp.Diff(f.ToWorld(tangentNormal).Normalize(), got.N, approx); diff != "" {
			t.Fatalf("perturbed normal mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestApplyNormalMap_BitangentStaysClose(t *testing.T) {
	f := NewFrameFromNormal(core.NewVec3(0, 0, 1))
	// Tilt toward +T: the bitangent is already perpendicular and must not move
	got := ApplyNormalMap(core.NewVec3(0.5, 0, 1).Normalize(), f)
	if diff := cmp.Diff(f.B, got.B, approx); diff != "" {
		t.Errorf("bitangent should be unchanged (-want +got):\n%s", diff)
	}
	if got.T.Dot(f.T) < 0.8 {
		t.Errorf("tangent %v should stay near %v", got.T, f.T)
	}
}

func TestDecodeNormal(t *testing.T) {
	flat := core.NewVec3(0, 0, 1)
	tests := []struct {
		name  string
		mode  NormalMapMode
		texel core.Vec4
		want  core.Vec3
	}{
		{"RGB flat", NormalMapRGB, core.NewVec4(0.5, 0.5, 1, 1), flat},
		{"RGB tilted", NormalMapRGB, core.NewVec4(1, 0.5, 0.5, 1), core.NewVec3(1, 0, 0)},
		{"RG flat", NormalMapRG, core.NewVec4(0.5, 0.5, 0, 0), flat},
		{"RG reconstructs z", NormalMapRG, core.NewVec4(0.8, 0.5, 0, 0), core.NewVec3(0.6, 0, 0.8)},
		{"RG clamps overflow", NormalMapRG, core.NewVec4(1, 1, 0, 0), core.NewVec3(1, 1, 0)},
		{"LEAN flat", NormalMapLEAN, core.NewVec4(0, 0, 0, 0), flat},
		{"LEAN slope", NormalMapLEAN, core.NewVec4(1, 0, 1, 0), core.NewVec3(1, 0, 1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DecodeNormal(tt.mode, tt.texel), approx); diff != "" {
				t.Errorf("decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLeanRoundTrip(t *testing.T) {
	n := core.NewVec3(0.3, -0.2, 0.9).Normalize()
	texel := EncodeLean(n)

	if diff := cmp.Diff(n, LeanNormal(texel), approx); diff != "" {
		t.Errorf("LEAN normal mismatch (-want +got):\n%s", diff)
	}
	if v := LeanVariance(texel); v.X > 1e-6 || v.Y > 1e-6 {
		t.Errorf("single-normal texel should have no variance, got %v", v)
	}

	// Averaging two texels (what filtering does) produces variance
	other := EncodeLean(core.NewVec3(-0.3, 0.2, 0.9).Normalize())
	avg := texel.Lerp(other, 0.5)
	if v := LeanVariance(avg); v.X <= 0 || v.Y <= 0 {
		t.Errorf("filtered texel should carry variance, got %v", v)
	}
	if got := LeanNormal(avg); math32.Abs(got.Z-1) > 1e-5 {
		t.Errorf("average of mirrored slopes should be flat, got %v", got)
	}
}
