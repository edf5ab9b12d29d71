package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thumb-studio/internal/assets"
	"thumb-studio/internal/fonts"
	"thumb-studio/internal/layer"
	"thumb-studio/pkg/colorutil"
)

func newTestRenderer(t *testing.T) (*Renderer, *fonts.Registry) {
	t.Helper()
	reg := fonts.NewRegistry(nil)
	reg.MarkReady()
	return New(assets.NewLoader(), reg, nil), reg
}

func solidPNG(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return assets.DataURI("image/png", buf.Bytes())
}

func emptyDoc() layer.Document {
	return layer.Document{Background: layer.Background{Mode: layer.BackgroundImage}}
}

func whiteDoc() layer.Document {
	return layer.Document{Background: layer.Background{
		Mode:     layer.BackgroundGradient,
		Gradient: layer.Gradient{Start: "#ffffff", End: "#ffffff", Direction: layer.ToBottom},
	}}
}

func renderFull(t *testing.T, r *Renderer, doc layer.Document) (*image.RGBA, Report) {
	t.Helper()
	s := NewGGSurface(layer.CanvasWidth, layer.CanvasHeight)
	rep := r.Render(context.Background(), doc, s)
	img, ok := s.Image().(*image.RGBA)
	require.True(t, ok)
	return img, rep
}

func TestEmptyDocumentRendersPlaceholder(t *testing.T) {
	r, _ := newTestRenderer(t)
	img, rep := renderFull(t, r, emptyDoc())

	assert.True(t, rep.OK())
	assert.False(t, rep.AllFailed())
	assert.Equal(t, layer.CanvasWidth, img.Bounds().Dx())
	for _, p := range []image.Point{{0, 0}, {1919, 1079}, {960, 540}} {
		assert.Equal(t, colorutil.Placeholder, img.RGBAAt(p.X, p.Y), "pixel %v", p)
	}
}

func TestGradientToBottom(t *testing.T) {
	r, _ := newTestRenderer(t)
	doc := layer.Document{Background: layer.Background{
		Mode:     layer.BackgroundGradient,
		Gradient: layer.Gradient{Start: "#000000", End: "#ffffff", Direction: layer.ToBottom},
	}}
	img, _ := renderFull(t, r, doc)

	for _, x := range []int{0, 960, 1919} {
		top := img.RGBAAt(x, 0)
		bottom := img.RGBAAt(x, layer.CanvasHeight-1)
		assert.Less(t, top.R, uint8(10))
		assert.Greater(t, bottom.R, uint8(245))
	}
	mid := img.RGBAAt(960, 540)
	assert.InDelta(t, 128, int(mid.R), 10)
}

func TestGradientDirections(t *testing.T) {
	g := GradientFor(layer.Gradient{Start: "#000", End: "#fff", Direction: layer.ToRight})
	assert.Equal(t, 0.0, g.From.X)
	assert.Equal(t, 1920.0, g.To.X)
	assert.Equal(t, 0.0, g.To.Y)

	g = GradientFor(layer.Gradient{Direction: layer.ToTopRight})
	assert.Equal(t, 1080.0, g.From.Y)
	assert.Equal(t, 1920.0, g.To.X)
	assert.Equal(t, 0.0, g.To.Y)

	g = GradientFor(layer.Gradient{Direction: "diagonal-ish"})
	assert.Equal(t, 0.0, g.To.X)
	assert.Equal(t, 1080.0, g.To.Y)
	assert.Equal(t, colorutil.Black, g.Start)
}

func TestCoverRect(t *testing.T) {
	r := CoverRect(image.Rect(0, 0, 960, 1080))
	assert.Equal(t, 1920.0, r.Width)
	assert.Equal(t, 2160.0, r.Height)
	assert.Equal(t, 0.0, r.X)
	assert.Equal(t, -540.0, r.Y)

	r = CoverRect(image.Rect(0, 0, 3840, 1080))
	assert.Equal(t, 1080.0, r.Height)
	assert.Equal(t, -960.0, r.X)
}

func TestHiddenLayerDoesNotChangeOutput(t *testing.T) {
	r, _ := newTestRenderer(t)
	base := whiteDoc()
	base = layer.AddLayer(base, layer.NewTextLayer("t1", "hello"))
	want, _ := renderFull(t, r, base)

	hidden := layer.NewTextLayer("t2", "covering text")
	hidden.Visible = false
	withHidden := layer.AddLayer(base, hidden)
	got, rep := renderFull(t, r, withHidden)

	assert.Equal(t, 1, rep.Hidden)
	assert.Equal(t, 1, rep.Drawn)
	assert.True(t, bytes.Equal(want.Pix, got.Pix))
}

func TestImageLayerDrawnCenteredAndScaled(t *testing.T) {
	r, _ := newTestRenderer(t)
	img := layer.NewImageLayer("img", solidPNG(t, 10, 10, color.RGBA{255, 0, 0, 255}))
	img.Scale = 2
	doc := layer.AddLayer(whiteDoc(), img)

	out, rep := renderFull(t, r, doc)
	require.Equal(t, 1, rep.Drawn)

	assertRed := func(c color.RGBA) {
		assert.Greater(t, c.R, uint8(250))
		assert.Less(t, c.G, uint8(5))
	}
	assertRed(out.RGBAAt(960, 540))
	assertRed(out.RGBAAt(951, 531))
	assert.Greater(t, out.RGBAAt(975, 540).G, uint8(250))
}

func TestImageShadowFallsBelowRight(t *testing.T) {
	r, _ := newTestRenderer(t)
	img := layer.NewImageLayer("img", solidPNG(t, 20, 20, color.RGBA{255, 0, 0, 255}))
	img.Shadow = true
	doc := layer.AddLayer(whiteDoc(), img)

	out, _ := renderFull(t, r, doc)
	// Inside the offset shadow, outside the image.
	assert.Less(t, out.RGBAAt(975, 555).G, uint8(230))
	// Well up-left of the image the shadow has faded out.
	assert.GreaterOrEqual(t, out.RGBAAt(925, 505).G, uint8(250))
	assert.Greater(t, out.RGBAAt(1300, 900).G, uint8(250))
}

func TestImageEffectGlowWins(t *testing.T) {
	l := layer.NewImageLayer("img", "x")
	_, ok := ImageEffect(l)
	assert.False(t, ok)

	l.Shadow = true
	sh, ok := ImageEffect(l)
	require.True(t, ok)
	assert.Equal(t, 10.0, sh.OffsetX)
	assert.Equal(t, 30.0, sh.Blur)
	assert.Equal(t, uint8(204), sh.Color.A)

	l.Glow = true
	l.GlowColor = "#00ff00"
	sh, ok = ImageEffect(l)
	require.True(t, ok)
	assert.Equal(t, 10.0, sh.OffsetX)
	assert.Equal(t, 10.0, sh.OffsetY)
	assert.Equal(t, 40.0, sh.Blur)
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, sh.Color)

	l.Shadow = false
	sh, ok = ImageEffect(l)
	require.True(t, ok)
	assert.Equal(t, 0.0, sh.OffsetX)
	assert.Equal(t, 0.0, sh.OffsetY)
	assert.Equal(t, 40.0, sh.Blur)
}

func TestImageShadowSpread(t *testing.T) {
	r, _ := newTestRenderer(t)
	img := layer.NewImageLayer("img", solidPNG(t, 200, 200, color.RGBA{0, 0, 0, 255}))
	img.Shadow = true
	doc := layer.AddLayer(whiteDoc(), img)

	out, _ := renderFull(t, r, doc)
	// The image ends at x=1060 and its shadow box at x=1070. A blur of 30
	// is a sigma of 15, so the shadow stays visible about two sigma past
	// the edge and is gone by the padded margin.
	last := 0
	for x := 1060; x < 1200; x++ {
		if out.RGBAAt(x, 540).G < 250 {
			last = x
		}
	}
	assert.GreaterOrEqual(t, last, 1090)
	assert.LessOrEqual(t, last, 1115)
	assert.Less(t, out.RGBAAt(1080, 540).G, uint8(230))
}

func TestBlurRadiusMatchesSigma(t *testing.T) {
	assert.InDelta(t, 15.0, blurSigma(imageShadowBlur), 1e-9)
	assert.InDelta(t, 15.0, math.Sqrt(2*blurRadius(15)), 1e-9)
	assert.Zero(t, blurSigma(0))
}

func TestTextStrokeSitsOutsideFill(t *testing.T) {
	r, _ := newTestRenderer(t)
	txt := layer.NewTextLayer("t", "I")
	txt.FontSize = 400
	txt.SkewX = 0
	txt.Color = "#ff0000"
	txt.StrokeColor = "#0000ff"
	txt.StrokeWidth = 8
	txt.Shadow = false
	doc := layer.AddLayer(whiteDoc(), txt)

	out, rep := renderFull(t, r, doc)
	require.Equal(t, 1, rep.Drawn)

	firstStroke, firstFill := -1, -1
	for x := 0; x < layer.CanvasWidth; x++ {
		c := out.RGBAAt(x, 540)
		if firstStroke < 0 && c.B > 200 && c.R < 60 && c.G < 60 {
			firstStroke = x
		}
		if firstFill < 0 && c.R > 200 && c.B < 60 && c.G < 60 {
			firstFill = x
		}
	}
	require.GreaterOrEqual(t, firstStroke, 0, "no stroke pixels")
	require.GreaterOrEqual(t, firstFill, 0, "no fill pixels")
	assert.Less(t, firstStroke, firstFill)
	assert.InDelta(t, 8, firstFill-firstStroke, 3)
}

func TestFailedAssetSkipsOnlyThatLayer(t *testing.T) {
	r, _ := newTestRenderer(t)
	doc := whiteDoc()
	doc = layer.AddLayer(doc, layer.NewImageLayer("broken", "/nowhere/missing.png"))
	doc = layer.AddLayer(doc, layer.NewTextLayer("title", "still here"))

	_, rep := renderFull(t, r, doc)

	assert.Equal(t, 1, rep.Drawn)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "broken", rep.Failures[0].LayerID)
	assert.Equal(t, ReasonAsset, rep.Failures[0].Reason)
	assert.Equal(t, 0, rep.Failures[0].Index)
	assert.False(t, rep.AllFailed())
}

func TestBrokenBackgroundKeepsPlaceholder(t *testing.T) {
	r, _ := newTestRenderer(t)
	doc := emptyDoc()
	doc.Background.ImageRef = "/nowhere/bg.jpg"

	img, rep := renderFull(t, r, doc)
	assert.Error(t, rep.Background)
	assert.Equal(t, colorutil.Placeholder, img.RGBAAt(10, 10))
}

func TestCoverBackground(t *testing.T) {
	r, _ := newTestRenderer(t)
	doc := emptyDoc()
	doc.Background.ImageRef = solidPNG(t, 16, 9, color.RGBA{0, 0, 255, 255})

	img, rep := renderFull(t, r, doc)
	assert.NoError(t, rep.Background)
	for _, p := range []image.Point{{960, 540}, {5, 5}, {1914, 1074}} {
		c := img.RGBAAt(p.X, p.Y)
		assert.Greater(t, c.B, uint8(250), "pixel %v", p)
		assert.Less(t, c.R, uint8(5), "pixel %v", p)
	}
}

func TestFontFallbackReported(t *testing.T) {
	reg := fonts.NewRegistry(nil)
	r := New(assets.NewLoader(), reg, nil)
	r.SetFontTimeout(10 * time.Millisecond)

	doc := layer.AddLayer(whiteDoc(), layer.NewTextLayer("t", "hi"))
	_, rep := renderFull(t, r, doc)

	assert.Equal(t, 1, rep.Drawn)
	require.Len(t, rep.Fallbacks, 1)
	assert.Equal(t, ReasonFont, rep.Fallbacks[0].Reason)
	assert.False(t, rep.OK())
}

func TestRenderToSmallerSurface(t *testing.T) {
	r, _ := newTestRenderer(t)
	doc := layer.Document{Background: layer.Background{
		Mode:     layer.BackgroundGradient,
		Gradient: layer.Gradient{Start: "#000000", End: "#ffffff", Direction: layer.ToRight},
	}}
	s := NewGGSurface(192, 108)
	r.Render(context.Background(), doc, s)

	img := s.Image().(*image.RGBA)
	assert.Less(t, img.RGBAAt(0, 50).R, uint8(10))
	assert.Greater(t, img.RGBAAt(191, 50).R, uint8(245))
}

func TestContentSize(t *testing.T) {
	r, _ := newTestRenderer(t)
	src := solidPNG(t, 30, 20, color.White)
	img := layer.NewImageLayer("i", src)

	_, ok := r.ContentSize(img)
	assert.False(t, ok, "unknown until loaded")

	r.Prefetch(context.Background(), layer.AddLayer(emptyDoc(), img))
	size, ok := r.ContentSize(img)
	require.True(t, ok)
	assert.Equal(t, 30.0, size.Width)
	assert.Equal(t, 20.0, size.Height)

	size, ok = r.ContentSize(layer.NewTextLayer("t", "wide text"))
	require.True(t, ok)
	assert.Greater(t, size.Width, size.Height)
}

func TestAssetURIs(t *testing.T) {
	doc := emptyDoc()
	doc.Background.ImageRef = "bg.png"
	doc = layer.AddLayer(doc, layer.NewImageLayer("a", "a.png"))
	doc = layer.AddLayer(doc, layer.NewImageLayer("b", "bg.png"))
	hidden := layer.NewImageLayer("c", "c.png")
	hidden.Visible = false
	doc = layer.AddLayer(doc, hidden)

	assert.Equal(t, []string{"bg.png", "a.png"}, AssetURIs(doc))

	doc.Background.Mode = layer.BackgroundGradient
	assert.Equal(t, []string{"a.png", "bg.png"}, AssetURIs(doc))
}

func TestLayoutTextCentered(t *testing.T) {
	reg := fonts.NewRegistry(nil)
	block, err := LayoutText(reg.Fallback(), "HELLO", 100)
	require.NoError(t, err)

	b := block.Path.Bounds()
	assert.InDelta(t, 0, b.X+b.Width/2, 10)
	assert.InDelta(t, 0, b.Y+b.Height/2, 15)
	assert.Greater(t, block.Size.Width, 200.0)

	empty, err := LayoutText(reg.Fallback(), "", 100)
	require.NoError(t, err)
	assert.True(t, empty.Path.Empty())
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "VIRAL TITLE", DisplayText("viral title"))
	assert.Equal(t, "A B", DisplayText("a\nb"))
}
