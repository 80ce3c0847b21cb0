package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/material"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// ErrInvalidScene is returned for scenes missing a camera, quad or material
var ErrInvalidScene = errors.New("invalid scene")

// Scene is a single textured quad lit by one directional light and an ambient term
type Scene struct {
	Camera     *Camera
	Quad       *Quad
	Material   *material.Material
	LightDir   core.Vec3 // Direction toward the light
	LightColor core.Vec3
	Ambient    core.Vec3
	Background core.Vec3
}

// DefaultScene returns a ground quad receding from the camera toward the horizon,
// so every pixel sees a different texture footprint
func DefaultScene(width, height int, mat *material.Material) *Scene {
	return &Scene{
		Camera: NewCamera(CameraConfig{
			Center: core.NewVec3(0, 1, 2),
			LookAt: core.NewVec3(0, 0, -4),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   50,
			Width:  width,
			Height: height,
		}),
		Quad: NewQuad(
			core.NewVec3(-4, 0, 4),
			core.NewVec3(8, 0, 0),
			core.NewVec3(0, 0, -24),
			core.NewVec2(4, 12),
		),
		Material:   mat,
		LightDir:   core.NewVec3(0.4, 1, 0.3),
		LightColor: core.NewVec3(2.5, 2.4, 2.2),
		Ambient:    core.NewVec3(0.25, 0.28, 0.35),
		Background: core.NewVec3(0.55, 0.7, 0.9),
	}
}

func (s *Scene) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("%w: nil scene", ErrInvalidScene)
	case s.Camera == nil:
		return fmt.Errorf("%w: no camera", ErrInvalidScene)
	case s.Quad == nil:
		return fmt.Errorf("%w: no quad", ErrInvalidScene)
	case s.Material == nil:
		return fmt.Errorf("%w: no material", ErrInvalidScene)
	}
	return s.Material.Validate()
}

// Config contains rendering configuration
type Config struct {
	TileSize        int  // Size of each square tile in pixels
	NumWorkers      int  // Number of parallel workers (0 = use CPU count)
	SamplesPerAxis  int  // Stratified samples per pixel along each axis
	FineDerivatives bool // Per-pixel derivatives instead of per 2x2 block
	Shading         shading.Config
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:       32,
		NumWorkers:     0,
		SamplesPerAxis: 1,
		Shading:        shading.DefaultConfig(),
	}
}

// Validate checks the configuration ranges and the shading switches
func (c Config) Validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("worker count must not be negative, got %d", c.NumWorkers)
	}
	if c.SamplesPerAxis <= 0 {
		return fmt.Errorf("samples per axis must be positive, got %d", c.SamplesPerAxis)
	}
	if err := c.Shading.Validate(); err != nil {
		return fmt.Errorf("while validating shading config: %w", err)
	}
	return nil
}

// Renderer renders a scene with a pool of tile workers
type Renderer struct {
	scene  *Scene
	config Config
	logger core.Logger
}

// NewRenderer validates the scene and configuration
func NewRenderer(scene *Scene, config Config, logger core.Logger) (*Renderer, error) {
	if err := scene.validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{scene: scene, config: config, logger: logger}, nil
}

// Render renders the whole image. On cancellation it returns ctx's error along with
// the statistics of the tiles that finished.
func (r *Renderer) Render(ctx context.Context) (*image.NRGBA, RenderStats, error) {
	width, height := r.scene.Camera.Size()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	tiles := NewTileGrid(width, height, r.config.TileSize)

	pool := NewWorkerPool(ctx, NewTileRenderer(r.scene, r.config), len(tiles), r.config.NumWorkers)
	r.logger.Printf("Rendering %dx%d in %d tiles with %d workers (alpha test %v)\n",
		width, height, len(tiles), pool.GetNumWorkers(), r.config.Shading.AlphaTest)

	pool.Start()
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Image: img})
	}

	var stats RenderStats
	var renderErr error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			renderErr = errors.New("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	if renderErr != nil {
		return nil, stats, fmt.Errorf("while rendering tiles: %w", renderErr)
	}

	r.logger.Printf("Rendered %d samples: %d kept, %d discarded, coverage %.3f\n",
		stats.TotalSamples, stats.Kept, stats.Discarded, stats.Coverage())
	return img, stats, nil
}
