// Package imaging holds the pixel-level helpers used when importing assets:
// format filters for the file pickers and green-screen keying for isolated
// product shots.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"
)

// SupportedFormats returns the list of importable image extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Green-screen thresholds. A pixel is keyed out when its green channel is
// above keyMinGreen and dominates red and blue by keyDominance.
const (
	keyMinGreen  = 100
	keyDominance  = 1.4
)

// IsKeyGreen reports whether c counts as green-screen background.
func IsKeyGreen(c color.NRGBA) bool {
	g := float64(c.G)
	return c.G > keyMinGreen && g > float64(c.R)*keyDominance && g > float64(c.B)*keyDominance
}

// ChromaKeyGreen returns a copy of img with green-screen pixels made fully
// transparent. Everything else is left as is.
func ChromaKeyGreen(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	for y := 0; y < out.Rect.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+out.Rect.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			c := color.NRGBA{R: row[x], G: row[x+1], B: row[x+2], A: row[x+3]}
			if IsKeyGreen(c) {
				row[x+3] = 0
			}
		}
	}
	return out
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
