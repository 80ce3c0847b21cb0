package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/df07/go-shading-kit/pkg/scene"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func newTestServer(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(NewServer(0, t.TempDir(), testLogger{t}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("GET %s: expected JSON content type, got %q", path, ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decoding response: %v", path, err)
	}
	return resp.StatusCode
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	if status := getJSON(t, ts, "/api/health", &body); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestHandleScenes(t *testing.T) {
	ts := newTestServer(t)

	var body scene.ScenesResponse
	if status := getJSON(t, ts, "/api/scenes", &body); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(body.Groups) == 0 || len(body.Groups[0].Scenes) == 0 {
		t.Fatalf("expected built-in scenes, got %+v", body)
	}

	found := false
	for _, s := range body.Groups[0].Scenes {
		if s.ID == "cutout" {
			found = true
		}
	}
	if !found {
		t.Errorf("cutout scene missing from %+v", body.Groups[0].Scenes)
	}
}

func TestHandleRender(t *testing.T) {
	ts := newTestServer(t)

	query := url.Values{
		"scene":     {"cutout"},
		"width":     {"48"},
		"height":    {"32"},
		"alphaMode": {"hashed-aniso"},
	}
	var body RenderResponse
	if status := getJSON(t, ts, "/api/render?"+query.Encode(), &body); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if body.Stats.TotalPixels != 48*32 {
		t.Errorf("expected %d pixels, got %d", 48*32, body.Stats.TotalPixels)
	}
	if body.Stats.Kept == 0 {
		t.Error("expected some samples to survive the alpha test")
	}

	raw, err := base64.StdEncoding.DecodeString(body.ImageData)
	if err != nil {
		t.Fatalf("image data is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("image data is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 32 {
		t.Errorf("expected 48x32 image, got %v", b)
	}
}

func TestHandleRender_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"Width not a number", "width=wide"},
		{"Width too small", "width=4"},
		{"Samples too large", "samples=100"},
		{"Alpha scale out of range", "alphaScale=0"},
		{"Fine not a bool", "fine=maybe"},
		{"Unknown alpha mode", "alphaMode=dither"},
		{"Unknown normal mode", "normalMode=bc5"},
		{"Unknown scene", "scene=teapot"},
		{"Missing texture", "scene=texture:oak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			if status := getJSON(t, ts, "/api/render?"+tt.query, &body); status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestHandleUniformity(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
		label string
	}{
		{"Hashed alpha", "samples=20000&bins=10", "hashed alpha"},
		{"Anisotropic hashed alpha", "samples=20000&bins=10&anisotropic=true", "hashed alpha"},
		{"Cosine sampler", "samples=20000&bins=10&sampler=cosine", "sampler cosine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body UniformityResponse
			if status := getJSON(t, ts, "/api/uniformity?"+tt.query, &body); status != http.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}
			if body.Label != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, body.Label)
			}
			if len(body.Counts) != 10 || body.DegreesOfFreedom != 9 {
				t.Errorf("expected 10 bins with 9 degrees of freedom, got %d and %d", len(body.Counts), body.DegreesOfFreedom)
			}
			if body.Outliers != 0 {
				t.Errorf("expected no outliers, got %d", body.Outliers)
			}
			if body.PValue < 1e-4 {
				t.Errorf("p-value %g: distribution is not uniform", body.PValue)
			}
		})
	}

	var body map[string]string
	if status := getJSON(t, ts, "/api/uniformity?sampler=halton", &body); status != http.StatusBadRequest {
		t.Errorf("unknown sampler: expected 400, got %d", status)
	}
}

func TestHandleRenderConfig(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Defaults   map[string]interface{} `json:"defaults"`
		AlphaModes []string               `json:"alphaModes"`
	}
	if status := getJSON(t, ts, "/api/render-config", &body); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body.Defaults["alphaMode"] != "hashed" {
		t.Errorf("expected default alpha mode hashed, got %v", body.Defaults["alphaMode"])
	}
	if len(body.AlphaModes) != 4 {
		t.Errorf("expected 4 alpha modes, got %v", body.AlphaModes)
	}
}

func TestParseIntParam(t *testing.T) {
	values := url.Values{"n": {"12"}, "bad": {"x"}}

	if got, err := parseIntParam(values, "n", 1, 0, 20); err != nil || got != 12 {
		t.Errorf("expected 12, got %d (%v)", got, err)
	}
	if got, err := parseIntParam(values, "missing", 7, 0, 20); err != nil || got != 7 {
		t.Errorf("expected default 7, got %d (%v)", got, err)
	}
	if _, err := parseIntParam(values, "n", 1, 0, 10); err == nil {
		t.Error("expected range error")
	}
	if _, err := parseIntParam(values, "bad", 1, 0, 10); err == nil {
		t.Error("expected parse error")
	}
}
