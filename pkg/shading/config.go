package shading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// NormalMapMode selects how normal map texels are decoded
type NormalMapMode int

const (
	// NormalMapRGB stores the tangent-space normal as rgb*2-1
	NormalMapRGB NormalMapMode = iota
	// NormalMapRG stores xy as rg*2-1 and reconstructs z
	NormalMapRG
	// NormalMapLEAN stores signed slopes in rg and second moments in ba
	NormalMapLEAN
)

// ErrUnknownNormalMapMode is returned when parsing an unrecognized mode name
var ErrUnknownNormalMapMode = errors.New("unknown normal map mode")

var normalMapModeNames = map[NormalMapMode]string{
	NormalMapRGB:  "rgb",
	NormalMapRG:   "rg",
	NormalMapLEAN: "lean",
}

// String returns the flag spelling of the mode
func (m NormalMapMode) String() string {
	if name, ok := normalMapModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("NormalMapMode(%d)", int(m))
}

// Valid reports whether m is one of the known modes
func (m NormalMapMode) Valid() bool {
	_, ok := normalMapModeNames[m]
	return ok
}

// ParseNormalMapMode parses the spelling produced by String
func ParseNormalMapMode(s string) (NormalMapMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range normalMapModeNames {
		if name == s {
			return mode, nil
		}
	}
	return NormalMapRGB, fmt.Errorf("%w: %q", ErrUnknownNormalMapMode, s)
}

// Config holds the shading variant switches that a shader would take as defines
type Config struct {
	AlphaTest        AlphaTestMode
	HashedAlphaScale float32 // Noise cell size multiplier; larger values give coarser noise
	NormalMap        NormalMapMode
}

// DefaultConfig returns the variant used when no switches are set:
// isotropic hashed alpha at unit scale and RGB normal maps.
func DefaultConfig() Config {
	return Config{
		AlphaTest:        AlphaTestHashedIsotropic,
		HashedAlphaScale: 1.0,
		NormalMap:        NormalMapRGB,
	}
}

// Validate checks that every switch holds a known value
func (c Config) Validate() error {
	if _, ok := alphaTestModeNames[c.AlphaTest]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAlphaTestMode, int(c.AlphaTest))
	}
	if !c.NormalMap.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownNormalMapMode, int(c.NormalMap))
	}
	if !(c.HashedAlphaScale > 0) || math32.IsInf(c.HashedAlphaScale, 1) {
		return fmt.Errorf("hashed alpha scale must be positive and finite, got %v", c.HashedAlphaScale)
	}
	return nil
}
