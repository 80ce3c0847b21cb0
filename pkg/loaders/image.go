package loaders

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-shading-kit/pkg/material"
)

// ErrUnsupportedFormat is returned when saving to an extension with no encoder
var ErrUnsupportedFormat = errors.New("unsupported image format")

// LoadImage decodes a PNG, JPEG, BMP, TIFF or WebP file. The format is detected
// from the file header, not the extension.
func LoadImage(filename string) (image.Image, string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image %s: %w", filename, err)
	}
	return img, format, nil
}

// TextureOptions controls how an image file becomes a texture
type TextureOptions struct {
	State   material.SamplerState
	MaxSize int // Longest edge after loading; 0 keeps the original size
}

// LoadTexture loads an image file as a mipmapped texture
func LoadTexture(filename string, opts TextureOptions) (*material.ImageTexture, error) {
	img, _, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}

	if opts.MaxSize > 0 {
		img = fitWithin(img, opts.MaxSize)
	}

	texture, err := material.NewImageTextureFromImage(img, opts.State)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture from %s: %w", filename, err)
	}
	return texture, nil
}

// fitWithin downscales img so its longest edge is at most maxSize, keeping the aspect ratio
func fitWithin(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if longest <= maxSize {
		return img
	}

	w = max(1, w*maxSize/longest)
	h = max(1, h*maxSize/longest)
	dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// SaveImage encodes img by the file extension: .png, .jpg/.jpeg, .bmp or .tif/.tiff
func SaveImage(filename string, img image.Image) error {
	encode, err := encoderFor(filename)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close image file: %w", err)
	}
	return nil
}

type encodeFunc func(f *os.File, img image.Image) error

func encoderFor(filename string) (encodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".jpg", ".jpeg":
		return func(f *os.File, img image.Image) error {
			return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
		}, nil
	case ".bmp":
		return func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, nil
	case ".tif", ".tiff":
		return func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
