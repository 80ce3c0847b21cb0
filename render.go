package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/df07/go-shading-kit/pkg/loaders"
	"github.com/df07/go-shading-kit/pkg/renderer"
	"github.com/df07/go-shading-kit/pkg/scene"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// renderOptions holds the render command's flags
type renderOptions struct {
	scene         string
	textureDir    string
	alphaMode     string
	alphaScale    float32
	normalMode    string
	texture       string
	normalTexture string
	bumps         int
	cells         int
	width         int
	height        int
	workers       int
	tileSize      int
	samples       int
	fine          bool
	doubleSided   bool
	out           string
}

func defaultRenderOptions() renderOptions {
	config := renderer.DefaultConfig()
	sceneOpts := scene.DefaultOptions()
	return renderOptions{
		scene:      "cutout",
		textureDir: sceneOpts.TextureDir,
		alphaMode:  config.Shading.AlphaTest.String(),
		alphaScale: config.Shading.HashedAlphaScale,
		normalMode: config.Shading.NormalMap.String(),
		bumps:      sceneOpts.Bumps,
		cells:      sceneOpts.Cells,
		width:      sceneOpts.Width,
		height:     sceneOpts.Height,
		tileSize:   config.TileSize,
		samples:    config.SamplesPerAxis,
	}
}

var renderFlags = defaultRenderOptions()

var cmdRender = &cobra.Command{
	Use:   "render",
	Short: "Render a scene preset under the configured alpha test",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return runRender(ctx, renderFlags, time.Now())
	},
}

func init() {
	f := cmdRender.Flags()
	f.StringVar(&renderFlags.scene, "scene", renderFlags.scene, "Scene: cutout, wall, checker, uv-debug or texture:<name>")
	f.StringVar(&renderFlags.textureDir, "texture-dir", renderFlags.textureDir, "Directory searched for texture:<name> scenes")
	f.StringVar(&renderFlags.alphaMode, "alpha-mode", renderFlags.alphaMode, "Alpha test: disabled, default, hashed or hashed-aniso")
	f.Float32Var(&renderFlags.alphaScale, "alpha-scale", renderFlags.alphaScale, "Hashed alpha noise cell size multiplier")
	f.StringVar(&renderFlags.normalMode, "normal-mode", renderFlags.normalMode, "Normal map encoding: rgb, rg or lean")
	f.StringVar(&renderFlags.texture, "texture", "", "Base color image with alpha (default: procedural cutout)")
	f.StringVar(&renderFlags.normalTexture, "normal-texture", "", "Normal map image in the --normal-mode encoding (default: procedural bumps)")
	f.IntVar(&renderFlags.bumps, "bumps", renderFlags.bumps, "Bumps per side of the procedural normal map, 0 disables it")
	f.IntVar(&renderFlags.cells, "cells", renderFlags.cells, "Discs per side of the procedural cutout texture")
	f.IntVar(&renderFlags.width, "width", renderFlags.width, "Image width in pixels")
	f.IntVar(&renderFlags.height, "height", renderFlags.height, "Image height in pixels")
	f.IntVar(&renderFlags.workers, "workers", 0, "Parallel workers (0 = CPU count)")
	f.IntVar(&renderFlags.tileSize, "tile-size", renderFlags.tileSize, "Tile edge in pixels")
	f.IntVar(&renderFlags.samples, "samples", renderFlags.samples, "Stratified samples per pixel along each axis")
	f.BoolVar(&renderFlags.fine, "fine", false, "Per-pixel derivatives instead of per 2x2 block")
	f.BoolVar(&renderFlags.doubleSided, "double-sided", false, "Shade back faces")
	f.StringVar(&renderFlags.out, "out", "", "Output image (default: output/<scene>/render_<timestamp>.png)")
}

// newRenderScene builds the scene and renderer configuration described by opts
func newRenderScene(opts renderOptions) (*renderer.Scene, renderer.Config, error) {
	config := renderer.DefaultConfig()

	alphaMode, err := shading.ParseAlphaTestMode(opts.alphaMode)
	if err != nil {
		return nil, config, err
	}
	normalMode, err := shading.ParseNormalMapMode(opts.normalMode)
	if err != nil {
		return nil, config, err
	}

	config.Shading.AlphaTest = alphaMode
	config.Shading.HashedAlphaScale = opts.alphaScale
	config.Shading.NormalMap = normalMode
	config.NumWorkers = opts.workers
	config.TileSize = opts.tileSize
	config.SamplesPerAxis = opts.samples
	config.FineDerivatives = opts.fine

	sceneOpts := scene.DefaultOptions()
	sceneOpts.Width = opts.width
	sceneOpts.Height = opts.height
	sceneOpts.Texture = opts.texture
	sceneOpts.NormalTexture = opts.normalTexture
	sceneOpts.NormalMode = normalMode
	sceneOpts.Bumps = opts.bumps
	sceneOpts.Cells = opts.cells
	sceneOpts.DoubleSided = opts.doubleSided
	sceneOpts.TextureDir = opts.textureDir

	s, err := scene.New(opts.scene, sceneOpts)
	if err != nil {
		return nil, config, fmt.Errorf("while creating scene %q: %w", opts.scene, err)
	}
	return s, config, nil
}

// outputPath returns out, or a timestamped file under output/<scene>, creating
// the parent directory
func outputPath(out, sceneID string, now time.Time) (string, error) {
	if out == "" {
		out = filepath.Join("output", strings.ReplaceAll(sceneID, ":", "-"), fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("while creating output directory: %w", err)
	}
	return out, nil
}

func runRender(ctx context.Context, opts renderOptions, now time.Time) error {
	scene, config, err := newRenderScene(opts)
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(scene, config, glogLogger{})
	if err != nil {
		return fmt.Errorf("while creating renderer: %w", err)
	}

	startTime := time.Now()
	img, stats, err := r.Render(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Samples: %d kept, %d discarded, %d culled, %d missed (coverage %.3f)\n",
		stats.Kept, stats.Discarded, stats.Culled, stats.Missed, stats.Coverage())
	fmt.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(img))

	filename, err := outputPath(opts.out, opts.scene, now)
	if err != nil {
		return err
	}
	if err := loaders.SaveImage(filename, img); err != nil {
		return fmt.Errorf("while saving render: %w", err)
	}
	fmt.Printf("Render saved as %s\n", filename)
	return nil
}
