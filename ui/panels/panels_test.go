package panels

import (
	"image"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thumb-studio/internal/app"
	"thumb-studio/internal/layer"
	"thumb-studio/pkg/geometry"
)

func TestLayerLabel(t *testing.T) {
	text := layer.NewTextLayer("t", "  BIG NEWS ")
	assert.Equal(t, "T  BIG NEWS", layerLabel(text))

	img := layer.NewImageLayer("i", "data:x")
	img.IsProduct = true
	img.Visible = false
	img.Locked = true
	assert.Equal(t, "Product (hidden, locked)", layerLabel(img))

	long := layer.NewTextLayer("t", "THIS HEADLINE IS FAR TOO LONG FOR THE LIST")
	assert.Len(t, []rune(layerLabel(long)), len("T  ")+24)
}

func TestThumbnailKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 400))
	th := Thumbnail(src, thumbWidth, thumbHeight)
	assert.Equal(t, 27, th.Bounds().Dx())
	assert.Equal(t, 27, th.Bounds().Dy())

	wide := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	th = Thumbnail(wide, thumbWidth, thumbHeight)
	assert.Equal(t, 48, th.Bounds().Dx())
	assert.Equal(t, 27, th.Bounds().Dy())
}

func TestLayersPanelListsFrontMostFirst(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := app.NewState(nil)
	first := s.Document().Layers[0].Common().ID
	added := s.AddText()

	lp := NewLayersPanel(s, nil)
	require.Len(t, lp.layers, 2)
	assert.Equal(t, added, lp.layers[0].Common().ID)
	assert.Equal(t, first, lp.layers[1].Common().ID)

	lp.duplicateBtn.OnTapped()
	assert.Len(t, lp.layers, 3)

	lp.deleteBtn.OnTapped()
	assert.Len(t, lp.layers, 2)
	assert.Empty(t, s.Selection())
}

func TestLayersPanelLockToggle(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := app.NewState(nil)
	id := s.AddText()
	lp := NewLayersPanel(s, nil)

	lp.lockBtn.OnTapped()
	l, ok := s.Document().Find(id)
	require.True(t, ok)
	assert.True(t, l.Common().Locked)
	assert.Equal(t, "Unlock", lp.lockBtn.Text)
}

type memCache map[string]image.Image

func (c memCache) Cached(uri string) (image.Image, bool) {
	img, ok := c[uri]
	return img, ok
}

func TestLayersPanelThumbnailsFollowCache(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	cache := memCache{}
	s := app.NewState(nil)
	img := layer.NewImageLayer(s.NewID(), "file:///photo.png")
	s.AddLayer(img)
	lp := NewLayersPanel(s, cache)

	assert.Nil(t, lp.thumbnail(img))
	assert.True(t, lp.waiting)

	cache["file:///photo.png"] = image.NewRGBA(image.Rect(0, 0, 160, 90))
	lp.RefreshThumbnails()
	assert.False(t, lp.waiting)
	th := lp.thumbnail(img)
	require.NotNil(t, th)
	assert.Equal(t, 48, th.Bounds().Dx())
	assert.Len(t, lp.thumbs, 1)

	s.RemoveLayer(img.ID)
	assert.Empty(t, lp.thumbs)
}

func TestPropertiesPanelFollowsSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := app.NewState(nil)
	pp := NewPropertiesPanel(s)
	assert.True(t, pp.common.Hidden)

	id := s.AddText()
	assert.False(t, pp.textForm.Hidden)
	assert.True(t, pp.imageForm.Hidden)

	textEntry := pp.textFields[0].item.Widget.(*widget.Entry)
	assert.Equal(t, "NEW TEXT", textEntry.Text)

	s.UpdateLayer(id, layer.Patch{Text: layer.Ptr("UPDATED")})
	assert.Equal(t, "UPDATED", textEntry.Text)

	xEntry := pp.commonFields[0].item.Widget.(*widget.Entry)
	s.UpdateLayer(id, layer.MoveTo(layerPos(100, 200)))
	assert.Equal(t, "100", xEntry.Text)
}

func TestPropertiesPanelEditsApply(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := app.NewState(nil)
	id := s.AddText()
	pp := NewPropertiesPanel(s)

	sizeEntry := pp.textFields[3].item.Widget.(*widget.Entry)
	sizeEntry.OnChanged("180")
	sizeEntry.OnChanged("-5")
	colorEntry := pp.textFields[2].item.Widget.(*widget.Entry)
	colorEntry.OnChanged("#ff00")
	colorEntry.OnChanged("#ff0000")

	l, ok := s.Document().Find(id)
	require.True(t, ok)
	tl := l.(layer.TextLayer)
	assert.Equal(t, 180.0, tl.FontSize)
	assert.Equal(t, "#ff0000", tl.Color)
}

func TestBackgroundPanelPreset(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := app.NewState(nil)
	bp := NewBackgroundPanel(s)
	assert.Equal(t, modeImage, bp.mode.Selected)

	bp.ApplyPreset(layer.GradientPresets[0])
	bg := s.Document().Background
	assert.Equal(t, layer.BackgroundGradient, bg.Mode)
	assert.Equal(t, layer.GradientPresets[0].Start, bg.Gradient.Start)
	assert.Equal(t, layer.ToBottom, bg.Gradient.Direction)
	assert.Equal(t, modeGradient, bp.mode.Selected)
	assert.Equal(t, bg.Gradient.End, bp.end.Text)
}

func layerPos(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}
