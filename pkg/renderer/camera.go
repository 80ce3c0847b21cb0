package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-shading-kit/pkg/core"
)

// CameraConfig describes a pinhole camera
type CameraConfig struct {
	Center core.Vec3 // Eye position
	LookAt core.Vec3 // Point the camera looks at
	Up     core.Vec3 // World up, need not be perpendicular to the view direction
	VFov   float32   // Vertical field of view in degrees
	Width  int       // Image width in pixels
	Height int       // Image height in pixels
}

// Camera generates primary rays in pixel coordinates: x right, y down
type Camera struct {
	origin     core.Vec3
	upperLeft  core.Vec3
	horizontal core.Vec3
	vertical   core.Vec3
	width      int
	height     int
}

// NewCamera creates a pinhole camera. The view basis comes from the look-at matrix.
func NewCamera(config CameraConfig) *Camera {
	width, height := max(1, config.Width), max(1, config.Height)
	view := mgl32.LookAtV(config.Center.Mgl(), config.LookAt.Mgl(), config.Up.Mgl())

	// Rows of the view rotation are the camera's right, up and backward axes
	right := core.NewVec3(view.At(0, 0), view.At(0, 1), view.At(0, 2))
	up := core.NewVec3(view.At(1, 0), view.At(1, 1), view.At(1, 2))
	backward := core.NewVec3(view.At(2, 0), view.At(2, 1), view.At(2, 2))

	viewportHeight := 2 * math32.Tan(mgl32.DegToRad(config.VFov)/2)
	viewportWidth := viewportHeight * float32(width) / float32(height)

	horizontal := right.Multiply(viewportWidth)
	vertical := up.Multiply(-viewportHeight)
	upperLeft := config.Center.
		Subtract(backward).
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5))

	return &Camera{
		origin:     config.Center,
		upperLeft:  upperLeft,
		horizontal: horizontal,
		vertical:   vertical,
		width:      width,
		height:     height,
	}
}

// Size returns the image dimensions
func (c *Camera) Size() (width, height int) {
	return c.width, c.height
}

// GetRay returns the ray through continuous pixel position (px, py).
// Pixel (i, j) covers [i, i+1) x [j, j+1); its center is (i+0.5, j+0.5).
func (c *Camera) GetRay(px, py float32) core.Ray {
	s := px / float32(c.width)
	t := py / float32(c.height)
	direction := c.upperLeft.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)
	return core.NewRay(c.origin, direction)
}
