package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-shading-kit/pkg/analysis"
	"github.com/df07/go-shading-kit/pkg/core"
	"github.com/df07/go-shading-kit/pkg/renderer"
	"github.com/df07/go-shading-kit/pkg/scene"
	"github.com/df07/go-shading-kit/pkg/shading"
)

// Server handles web requests for renders and uniformity checks
type Server struct {
	port       int
	textureDir string
	logger     core.Logger
}

// NewServer creates a new web server. texture:<name> scenes are looked up in textureDir.
func NewServer(port int, textureDir string, logger core.Logger) *Server {
	return &Server{port: port, textureDir: textureDir, logger: logger}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string  `json:"scene"`      // Scene id (e.g., "cutout")
	Width      int     `json:"width"`      // Image width
	Height     int     `json:"height"`     // Image height
	AlphaMode  string  `json:"alphaMode"`  // Alpha test name
	AlphaScale float64 `json:"alphaScale"` // Hashed alpha noise cell size multiplier
	NormalMode string  `json:"normalMode"` // Normal map encoding
	Samples    int     `json:"samples"`    // Stratified samples per pixel along each axis
	Fine       bool    `json:"fine"`       // Per-pixel derivatives
}

// RenderResponse carries a finished render
type RenderResponse struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	Missed           int     `json:"missed"`
	Culled           int     `json:"culled"`
	Discarded        int     `json:"discarded"`
	Kept             int     `json:"kept"`
	Coverage         float64 `json:"coverage"`
	AverageLuminance float64 `json:"averageLuminance"`
}

// UniformityResponse reports a hashed alpha or sampler uniformity test
type UniformityResponse struct {
	Label            string  `json:"label"`
	Counts           []int   `json:"counts"`
	Outliers         int     `json:"outliers"`
	Statistic        float64 `json:"statistic"`
	DegreesOfFreedom int     `json:"degreesOfFreedom"`
	PValue           float64 `json:"pValue"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/render-config", s.handleRenderConfig)
	mux.HandleFunc("GET /api/uniformity", s.handleUniformity)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and texture scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.textureDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleRender renders one image and returns it with its statistics
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, config, err := s.createRender(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rend, err := renderer.NewRenderer(sceneObj, config, s.logger)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Use request context to detect client disconnection
	startTime := time.Now()
	img, stats, err := rend.Render(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Printf("Render of %s abandoned: %v", req.Scene, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	imageData, err := s.imageToBase64PNG(img)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, RenderResponse{
		ImageData: imageData,
		Stats: Stats{
			TotalPixels:      stats.TotalPixels,
			TotalSamples:     stats.TotalSamples,
			Missed:           stats.Missed,
			Culled:           stats.Culled,
			Discarded:        stats.Discarded,
			Kept:             stats.Kept,
			Coverage:         stats.Coverage(),
			AverageLuminance: renderer.CalculateAverageLuminance(img),
		},
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	defaults := renderer.DefaultConfig()
	req := &RenderRequest{
		Scene:      "cutout",
		AlphaMode:  defaults.Shading.AlphaTest.String(),
		NormalMode: defaults.Shading.NormalMap.String(),
	}

	if v := values.Get("scene"); v != "" {
		req.Scene = v
	}
	if v := values.Get("alphaMode"); v != "" {
		req.AlphaMode = v
	}
	if v := values.Get("normalMode"); v != "" {
		req.NormalMode = v
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 225, 16, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 1, 1, 8); err != nil {
		return nil, err
	}
	if req.AlphaScale, err = parseFloatParam(values, "alphaScale", 1, 0.01, 100); err != nil {
		return nil, err
	}
	if v := values.Get("fine"); v != "" {
		if req.Fine, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid fine: %s", v)
		}
	}

	// Performance warning
	if req.Width*req.Height*req.Samples*req.Samples > 1920*1080*4 {
		s.logger.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// createRender builds the scene and configuration for req
func (s *Server) createRender(req *RenderRequest) (*renderer.Scene, renderer.Config, error) {
	config := renderer.DefaultConfig()

	alphaMode, err := shading.ParseAlphaTestMode(req.AlphaMode)
	if err != nil {
		return nil, config, err
	}
	normalMode, err := shading.ParseNormalMapMode(req.NormalMode)
	if err != nil {
		return nil, config, err
	}
	config.Shading.AlphaTest = alphaMode
	config.Shading.HashedAlphaScale = float32(req.AlphaScale)
	config.Shading.NormalMap = normalMode
	config.SamplesPerAxis = req.Samples
	config.FineDerivatives = req.Fine

	opts := scene.DefaultOptions()
	opts.Width = req.Width
	opts.Height = req.Height
	opts.NormalMode = normalMode
	opts.TextureDir = s.textureDir

	sceneObj, err := scene.New(req.Scene, opts)
	if err != nil {
		return nil, config, err
	}
	return sceneObj, config, nil
}

// handleUniformity runs a chi-square test of hashed alpha thresholds, or of a
// sampler when the sampler parameter is set
func (s *Server) handleUniformity(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	batch := analysis.DefaultBatchConfig()

	var err error
	if batch.Samples, err = parseIntParam(values, "samples", 1<<18, 1000, 1<<24); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if batch.Bins, err = parseIntParam(values, "bins", batch.Bins, 2, 1000); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var h *analysis.Histogram
	var label string
	if name := values.Get("sampler"); name != "" {
		kind, err := analysis.ParseSamplerKind(name)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		label = "sampler " + kind.String()
		h, err = analysis.SamplerHistogram(r.Context(), kind, batch)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else {
		cfg := analysis.DefaultHashedAlphaConfig()
		cfg.BatchConfig = batch
		cfg.Anisotropic = values.Get("anisotropic") == "true"
		label = "hashed alpha"
		h, err = analysis.HashedAlphaHistogram(r.Context(), cfg)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	result := analysis.ChiSquareUniform(h)
	s.writeJSON(w, http.StatusOK, UniformityResponse{
		Label:            label,
		Counts:           h.Counts,
		Outliers:         h.Outliers,
		Statistic:        result.Statistic,
		DegreesOfFreedom: result.DegreesOfFreedom,
		PValue:           result.PValue,
	})
}

// handleRenderConfig returns the render defaults with validation limits
func (s *Server) handleRenderConfig(w http.ResponseWriter, r *http.Request) {
	defaults := renderer.DefaultConfig()
	response := map[string]interface{}{
		"defaults": map[string]interface{}{
			"scene":      "cutout",
			"width":      400,
			"height":     225,
			"alphaMode":  defaults.Shading.AlphaTest.String(),
			"alphaScale": defaults.Shading.HashedAlphaScale,
			"normalMode": defaults.Shading.NormalMap.String(),
			"samples":    defaults.SamplesPerAxis,
		},
		"alphaModes":  []string{"disabled", "default", "hashed", "hashed-aniso"},
		"normalModes": []string{"rgb", "rg", "lean"},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": 16, "max": 2000},
			"height":     map[string]int{"min": 16, "max": 2000},
			"samples":    map[string]int{"min": 1, "max": 8},
			"alphaScale": map[string]float64{"min": 0.01, "max": 100},
		},
	}
	s.writeJSON(w, http.StatusOK, response)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("Error while writing response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
