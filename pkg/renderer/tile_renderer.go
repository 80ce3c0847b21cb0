package renderer

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/shading"
)

const displayGamma = 2.2

// TileRenderer shades the pixels of individual tiles. It holds no mutable state and is
// shared by all workers.
type TileRenderer struct {
	scene  *Scene
	config Config
}

// NewTileRenderer creates a new tile renderer for the given scene
func NewTileRenderer(scene *Scene, config Config) *TileRenderer {
	return &TileRenderer{scene: scene, config: config}
}

// RenderTile renders the pixels within the tile's bounds into img.
// Tiles have non-overlapping bounds, so concurrent calls may share img.
func (tr *TileRenderer) RenderTile(tile *Tile, img *image.NRGBA) RenderStats {
	bounds := tile.Bounds
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}
	sampler := core.NewRandomSampler(tile.Random)

	n := max(1, tr.config.SamplesPerAxis)
	invCount := 1 / float32(n*n)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var colorAccum core.Vec3
			for sy := 0; sy < n; sy++ {
				for sx := 0; sx < n; sx++ {
					colorAccum = colorAccum.Add(tr.shadeSample(x, y, tr.subpixelOffset(sx, sy, n, sampler), &stats))
				}
			}
			img.SetNRGBA(x, y, vec3ToColor(colorAccum.Multiply(invCount)))
		}
	}
	return stats
}

// subpixelOffset returns the pixel center for one sample, otherwise a jittered
// position in stratum (sx, sy) of an n x n grid
func (tr *TileRenderer) subpixelOffset(sx, sy, n int, sampler core.Sampler) core.Vec2 {
	if n == 1 {
		return core.NewVec2(0.5, 0.5)
	}
	u := sampler.Get2D()
	return core.NewVec2((float32(sx)+u.X)/float32(n), (float32(sy)+u.Y)/float32(n))
}

// shadeSample traces one camera sample through pixel (x, y)
func (tr *TileRenderer) shadeSample(x, y int, offset core.Vec2, stats *RenderStats) core.Vec3 {
	stats.TotalSamples++
	px, py := float32(x)+offset.X, float32(y)+offset.Y

	ray := tr.scene.Camera.GetRay(px, py)
	hit, ok := tr.scene.Quad.Hit(ray, 1e-4, math32.MaxFloat32)
	if !ok {
		stats.Missed++
		return tr.scene.Background
	}

	m := tr.scene.Material
	if !hit.FrontFace && !m.Flags.Has(material.FlagDoubleSided) {
		stats.Culled++
		return tr.scene.Background
	}

	attr := tr.shadingAttribs(hit, x, y, px, py)
	if m.AlphaTest(attr, tr.config.Shading) {
		stats.Discarded++
		return tr.scene.Background
	}

	stats.Kept++
	return tr.shade(ray, attr)
}

func (tr *TileRenderer) shadingAttribs(hit QuadHit, x, y int, px, py float32) material.ShadingAttribs {
	dPos, dUVdx, dUVdy := tr.surfaceDerivatives(x, y, px, py)
	return material.ShadingAttribs{
		UV:    hit.UV,
		DUVdx: dUVdx,
		DUVdy: dUVdy,
		Pos:   hit.Point,
		DPos:  dPos,
		Frame: tr.scene.Quad.Frame(hit.FrontFace),
	}
}

// surfaceDerivatives estimates the screen-space derivatives of position and UV by
// intersecting the quad's plane one pixel to the right and one pixel down. Coarse
// derivatives are taken at the top-left pixel of each 2x2 block and shared by the
// block, matching pixel shader ddx/ddy. A neighbour ray that misses the plane leaves
// that derivative at zero.
func (tr *TileRenderer) surfaceDerivatives(x, y int, px, py float32) (shading.Derivatives, core.Vec2, core.Vec2) {
	if !tr.config.FineDerivatives {
		px -= float32(x & 1)
		py -= float32(y & 1)
	}

	var dPos shading.Derivatives
	var dUVdx, dUVdy core.Vec2

	origin, ok := tr.planeAt(px, py)
	if !ok {
		return dPos, dUVdx, dUVdy
	}
	if right, ok := tr.planeAt(px+1, py); ok {
		dPos.DX = right.Point.Subtract(origin.Point)
		dUVdx = right.UV.Subtract(origin.UV)
	}
	if below, ok := tr.planeAt(px, py+1); ok {
		dPos.DY = below.Point.Subtract(origin.Point)
		dUVdy = below.UV.Subtract(origin.UV)
	}
	return dPos, dUVdx, dUVdy
}

func (tr *TileRenderer) planeAt(px, py float32) (QuadHit, bool) {
	hit, ok := tr.scene.Quad.IntersectPlane(tr.scene.Camera.GetRay(px, py))
	return hit, ok && hit.T > 0
}

// shade evaluates the material under the scene's directional and ambient light
func (tr *TileRenderer) shade(ray core.Ray, attr material.ShadingAttribs) core.Vec3 {
	m := tr.scene.Material
	frame, slopeVariance := m.PerturbNormal(attr)
	base := m.EvalBaseColor(attr).RGB()
	specular := material.SampleTexture(m.Specular, attr, material.SampleOptions{}).RGB()

	wo := ray.Direction.Negate().Normalize()
	wi := tr.scene.LightDir.Normalize()
	brdf := m.EvaluateBRDF(wi, wo, frame.N, material.LayerInputs{
		BaseColor:     base,
		Specular:      specular,
		SlopeVariance: slopeVariance,
	})
	direct := brdf.MultiplyVec(tr.scene.LightColor).Multiply(max(0, wi.Dot(frame.N)))

	ambient := shading.ApplyAmbientOcclusion(tr.scene.Ambient.MultiplyVec(base), m.EvalOcclusion(attr))
	return direct.Add(ambient).Add(m.EvalEmission(attr))
}

// vec3ToColor converts a linear color to 8-bit with gamma correction and clamping
func vec3ToColor(c core.Vec3) color.NRGBA {
	c = c.GammaCorrect(displayGamma).Clamp(0, 1)
	return color.NRGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: 255,
	}
}
