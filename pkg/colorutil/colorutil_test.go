package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	c, ok := Parse("#ff8000")
	assert.True(t, ok)
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, c)

	c, ok = Parse("#fff")
	assert.True(t, ok)
	assert.Equal(t, White, c)
}

func TestParseFallsBackToBlack(t *testing.T) {
	for _, in := range []string{"", "red", "#12", "#gggggg", "ffffff", "#ffffff00"} {
		c, ok := Parse(in)
		assert.False(t, ok, in)
		assert.Equal(t, Black, c, in)
	}
}

func TestWithAlpha(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, A: 204}, WithAlpha("#ff0000", 0.8))
	assert.Equal(t, color.NRGBA{A: 255}, WithAlpha("nope", 2))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255}, WithAlpha("#ffffff", -1))
}

func TestLuma(t *testing.T) {
	assert.InDelta(t, 0, Luma(Black), 0.01)
	assert.InDelta(t, 255, Luma(White), 0.01)
}
