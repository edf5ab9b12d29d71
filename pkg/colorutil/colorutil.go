// Package colorutil provides shared color utilities for thumb-studio.
package colorutil

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Common colors used throughout the application.
var (
	Black       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.RGBA{}

	// Placeholder fills an image-mode canvas that has no background image.
	Placeholder = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 255}

	// Selection is the outline drawn around the selected layer in the preview.
	Selection = color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 255}
)

// Parse parses a #rgb or #rrggbb hex string.
// Anything else yields opaque black and ok=false.
func Parse(hex string) (c color.RGBA, ok bool) {
	hex = strings.TrimSpace(hex)
	if !validHex(hex) {
		return Black, false
	}
	cf, err := colorful.Hex(hex)
	if err != nil {
		return Black, false
	}
	r, g, b := cf.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}

// MustParse is Parse without the ok flag.
func MustParse(hex string) color.RGBA {
	c, _ := Parse(hex)
	return c
}

// WithAlpha returns the hex color with the given opacity (0..1).
// Invalid hex strings resolve to black, matching Parse.
func WithAlpha(hex string, alpha float64) color.NRGBA {
	c := MustParse(hex)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(Clamp(alpha, 0, 1)*255 + 0.5)}
}

// Luma returns the Rec. 601 luma of c in 0..255.
func Luma(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257
}

// Clamp limits x to [min, max].
func Clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func validHex(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9', ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
