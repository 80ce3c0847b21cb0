package material

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"

	"github.com/df07/go-shading-kit/pkg/core"
)

var (
	// ErrEmptyTexture is returned for textures with no texels
	ErrEmptyTexture = errors.New("empty texture")
	// ErrPixelCount is returned when the pixel slice does not match the dimensions
	ErrPixelCount = errors.New("pixel count does not match texture size")
)

// ImageTexture is a mipmapped RGBA texture with float texels
type ImageTexture struct {
	Width  int
	Height int
	State  SamplerState
	levels []mipLevel
}

type mipLevel struct {
	width  int
	height int
	pixels []core.Vec4 // Row-major, top row first: pixels[y*width + x]
}

// NewImageTexture creates a texture from row-major pixels and builds its mip chain
func NewImageTexture(width, height int, pixels []core.Vec4, state SamplerState) (*ImageTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyTexture, width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: got %d pixels for %dx%d", ErrPixelCount, len(pixels), width, height)
	}
	return newImageTexture(width, height, pixels, state), nil
}

// NewImageTextureFromImage converts img to non-premultiplied float texels
func NewImageTextureFromImage(img image.Image, state SamplerState) (*ImageTexture, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrEmptyTexture, bounds)
	}

	width, height := bounds.Dx(), bounds.Dy()
	nrgba := image.NewNRGBA64(image.Rect(0, 0, width, height))
	xdraw.Copy(nrgba, image.Point{}, img, bounds, xdraw.Src, nil)

	pixels := make([]core.Vec4, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := nrgba.NRGBA64At(x, y)
			pixels[y*width+x] = core.NewVec4(
				float32(c.R)/0xffff,
				float32(c.G)/0xffff,
				float32(c.B)/0xffff,
				float32(c.A)/0xffff,
			)
		}
	}
	return newImageTexture(width, height, pixels, state), nil
}

func newImageTexture(width, height int, pixels []core.Vec4, state SamplerState) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		State:  state,
		levels: buildMipChain(width, height, pixels),
	}
}

// buildMipChain box-filters each level down to 1x1. Odd edges reuse the last texel.
// Averaging in float keeps moment encodings such as LEAN maps linear.
func buildMipChain(width, height int, pixels []core.Vec4) []mipLevel {
	levels := []mipLevel{{width: width, height: height, pixels: pixels}}

	for {
		prev := levels[len(levels)-1]
		if prev.width == 1 && prev.height == 1 {
			return levels
		}

		next := mipLevel{width: max(1, prev.width/2), height: max(1, prev.height/2)}
		next.pixels = make([]core.Vec4, next.width*next.height)
		for y := 0; y < next.height; y++ {
			y0, y1 := min(2*y, prev.height-1), min(2*y+1, prev.height-1)
			for x := 0; x < next.width; x++ {
				x0, x1 := min(2*x, prev.width-1), min(2*x+1, prev.width-1)
				sum := prev.pixels[y0*prev.width+x0].
					Add(prev.pixels[y0*prev.width+x1]).
					Add(prev.pixels[y1*prev.width+x0]).
					Add(prev.pixels[y1*prev.width+x1])
				next.pixels[y*next.width+x] = sum.Multiply(0.25)
			}
		}
		levels = append(levels, next)
	}
}

// Levels returns the number of mip levels including the base level
func (t *ImageTexture) Levels() int {
	return len(t.levels)
}

// LevelSize returns the dimensions of mip level i
func (t *ImageTexture) LevelSize(i int) (width, height int) {
	return t.levels[i].width, t.levels[i].height
}

// Texel returns the stored texel of mip level i without filtering or addressing
func (t *ImageTexture) Texel(level, x, y int) core.Vec4 {
	l := t.levels[level]
	return l.pixels[y*l.width+x]
}

// Size returns the dimensions of the base level
func (t *ImageTexture) Size() (int, int) {
	return t.Width, t.Height
}

// SampleLevel samples at an explicit level of detail, clamped to the mip chain.
// V=0 is the bottom of the image.
func (t *ImageTexture) SampleLevel(uv core.Vec2, lod float32) core.Vec4 {
	if !(lod > 0) {
		lod = 0
	}
	lod = min(lod, float32(len(t.levels)-1))

	if t.State.Filter == FilterPoint {
		return t.levels[int(lod+0.5)].point(uv, t.State.Address)
	}

	base := int(lod)
	c0 := t.levels[base].bilinear(uv, t.State.Address)
	frac := lod - float32(base)
	if frac == 0 || base+1 >= len(t.levels) {
		return c0
	}
	return c0.Lerp(t.levels[base+1].bilinear(uv, t.State.Address), frac)
}

// SampleGrad picks the level from the uv derivatives plus the sampler's bias
func (t *ImageTexture) SampleGrad(uv, dUVdx, dUVdy core.Vec2) core.Vec4 {
	return t.SampleLevel(uv, ComputeLOD(dUVdx, dUVdy, t.Width, t.Height)+t.State.LODBias)
}

func (l *mipLevel) texel(x, y int, address AddressMode) core.Vec4 {
	return l.pixels[address.resolve(y, l.height)*l.width+address.resolve(x, l.width)]
}

func (l *mipLevel) point(uv core.Vec2, address AddressMode) core.Vec4 {
	x := int(math32.Floor(uv.X * float32(l.width)))
	y := int(math32.Floor((1 - uv.Y) * float32(l.height)))
	return l.texel(x, y, address)
}

func (l *mipLevel) bilinear(uv core.Vec2, address AddressMode) core.Vec4 {
	// Texel centers sit at half-integer coordinates
	fx := uv.X*float32(l.width) - 0.5
	fy := (1-uv.Y)*float32(l.height) - 0.5
	x0, y0 := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	top := l.texel(ix, iy, address).Lerp(l.texel(ix+1, iy, address), tx)
	bottom := l.texel(ix, iy+1, address).Lerp(l.texel(ix+1, iy+1, address), tx)
	return top.Lerp(bottom, ty)
}
