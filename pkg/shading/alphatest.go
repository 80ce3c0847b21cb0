package shading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-shading-kit/pkg/core"
)

// AlphaTestMode selects how a surface's alpha is turned into a keep/discard decision
type AlphaTestMode int

const (
	// AlphaTestDisabled never discards
	AlphaTestDisabled AlphaTestMode = iota
	// AlphaTestDefault discards when alpha is below the material's fixed threshold
	AlphaTestDefault
	// AlphaTestHashedIsotropic compares alpha against a hashed threshold from the larger screen derivative
	AlphaTestHashedIsotropic
	// AlphaTestHashedAnisotropic compares alpha against a hashed threshold computed per axis
	AlphaTestHashedAnisotropic
)

// ErrUnknownAlphaTestMode is returned when parsing an unrecognized mode name
var ErrUnknownAlphaTestMode = errors.New("unknown alpha test mode")

var alphaTestModeNames = map[AlphaTestMode]string{
	AlphaTestDisabled:          "disabled",
	AlphaTestDefault:           "default",
	AlphaTestHashedIsotropic:   "hashed",
	AlphaTestHashedAnisotropic: "hashed-aniso",
}

// String returns the flag spelling of the mode
func (m AlphaTestMode) String() string {
	if name, ok := alphaTestModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("AlphaTestMode(%d)", int(m))
}

// ParseAlphaTestMode parses the spelling produced by String
func ParseAlphaTestMode(s string) (AlphaTestMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range alphaTestModeNames {
		if name == s {
			return mode, nil
		}
	}
	return AlphaTestDisabled, fmt.Errorf("%w: %q", ErrUnknownAlphaTestMode, s)
}

// AlphaTestInput carries everything an alpha test strategy may look at
type AlphaTestInput struct {
	Alpha     float32     // Surface coverage after texturing
	Threshold float32     // Material cutoff for the default test
	Coord     core.Vec3   // Object-space position, the hash input
	Deriv     Derivatives // Screen-space derivatives of Coord
}

// alphaTestFunc reports whether the fragment should be discarded
type alphaTestFunc func(in AlphaTestInput, hashScale float32) bool

var alphaTests = map[AlphaTestMode]alphaTestFunc{
	AlphaTestDisabled: func(AlphaTestInput, float32) bool {
		return false
	},
	AlphaTestDefault: func(in AlphaTestInput, _ float32) bool {
		return in.Alpha < in.Threshold
	},
	AlphaTestHashedIsotropic: func(in AlphaTestInput, hashScale float32) bool {
		return evalHashedAlphaTest(in, CalculateHashedAlpha(in.Coord, in.Deriv, hashScale, false))
	},
	AlphaTestHashedAnisotropic: func(in AlphaTestInput, hashScale float32) bool {
		return evalHashedAlphaTest(in, CalculateHashedAlpha(in.Coord, in.Deriv, hashScale, true))
	},
}

// evalHashedAlphaTest falls back to the material threshold if the hashed one is unusable
func evalHashedAlphaTest(in AlphaTestInput, hashed float32) bool {
	compareTo := hashed
	if !(hashed > 0) {
		compareTo = in.Threshold
	}
	return in.Alpha < compareTo
}

// Discard runs the configured alpha test and reports whether the fragment is discarded.
// Unknown modes keep the fragment.
func (c Config) Discard(in AlphaTestInput) bool {
	test, ok := alphaTests[c.AlphaTest]
	if !ok {
		return false
	}
	return test(in, c.HashedAlphaScale)
}
