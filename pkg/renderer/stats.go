package renderer

import (
	"image"

	"github.com/df07/go-shading-kit/pkg/core"
)

// RenderStats counts what happened to the samples of a render or a tile
type RenderStats struct {
	TotalPixels  int // Pixels rendered
	TotalSamples int // Camera samples taken
	Missed       int // Samples that hit nothing
	Culled       int // Samples that hit a back face of a single-sided material
	Discarded    int // Samples removed by the alpha test
	Kept         int // Samples shaded
}

// Merge adds the counts of other
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.Missed += other.Missed
	s.Culled += other.Culled
	s.Discarded += other.Discarded
	s.Kept += other.Kept
}

// Coverage is the fraction of alpha-tested samples that survived the test.
// For hashed alpha it converges to the mean surface alpha.
func (s RenderStats) Coverage() float64 {
	tested := s.Kept + s.Discarded
	if tested == 0 {
		return 0
	}
	return float64(s.Kept) / float64(tested)
}

// CalculateAverageLuminance returns the mean Rec.709 luminance of img
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := core.NewVec3(float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff)
			sum += float64(c.Luminance())
		}
	}
	return sum / float64(bounds.Dx()*bounds.Dy())
}
