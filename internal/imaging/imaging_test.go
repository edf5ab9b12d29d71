package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("/tmp/shot.PNG"))
	assert.True(t, IsSupportedFormat("bg.webp"))
	assert.False(t, IsSupportedFormat("notes.txt"))
	assert.False(t, IsSupportedFormat("noext"))
}

func TestChromaKeyGreen(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 11))
	src.Set(10, 10, color.RGBA{0, 255, 0, 255})
	src.Set(11, 10, color.RGBA{200, 180, 40, 255})
	src.Set(12, 10, color.RGBA{20, 90, 10, 255})

	out := ChromaKeyGreen(src)

	assert.Equal(t, image.Rect(0, 0, 3, 1), out.Bounds())
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A, "pure green keyed out")
	assert.Equal(t, uint8(255), out.NRGBAAt(1, 0).A, "yellowish kept")
	assert.Equal(t, uint8(255), out.NRGBAAt(2, 0).A, "dark green below threshold kept")
	assert.Equal(t, uint8(255), src.RGBAAt(10, 10).A, "source untouched")
}
