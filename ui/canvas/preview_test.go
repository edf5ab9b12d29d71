package canvas

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thumb-studio/internal/app"
	"thumb-studio/internal/assets"
	"thumb-studio/internal/fonts"
	"thumb-studio/internal/layer"
	"thumb-studio/internal/render"
)

// newTestPreview returns a preview sized so the canvas is drawn at half
// scale with its origin at (20, 20).
func newTestPreview(t *testing.T) (*Preview, *app.State) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	registry := fonts.NewRegistry(nil)
	registry.MarkReady()
	r := render.New(assets.NewLoader(), registry, nil)

	s := app.NewState(nil)
	p := NewPreview(s, r, nil, 40, nil)
	p.Resize(fyne.NewSize(1000, 580))
	return p, s
}

func press(p *Preview, x, y float32) {
	p.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func TestPreviewPointerDragsTitle(t *testing.T) {
	p, s := newTestPreview(t)
	title := s.Document().Layers[0].Common().ID

	press(p, 500, 290)
	require.Equal(t, title, s.Selection())

	p.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(550, 320)}})
	p.DragEnd()

	l, ok := s.Document().Find(title)
	require.True(t, ok)
	assert.InDelta(t, 1060, l.Common().Position.X, 1e-6)
	assert.InDelta(t, 600, l.Common().Position.Y, 1e-6)
	assert.False(t, p.Controller().Dragging())
}

func TestPreviewBackgroundPressClearsSelection(t *testing.T) {
	p, s := newTestPreview(t)
	s.Select(s.Document().Layers[0].Common().ID)

	press(p, 30, 30)
	assert.Empty(t, s.Selection())
}

func TestPreviewSecondaryButtonIgnored(t *testing.T) {
	p, s := newTestPreview(t)
	p.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(500, 290)},
		Button:     desktop.MouseButtonSecondary,
	})
	assert.Empty(t, s.Selection())
}

func TestPreviewDrawFitsCanvas(t *testing.T) {
	p, _ := newTestPreview(t)

	img := p.draw(1000, 580).(*image.RGBA)
	assert.Equal(t, backdrop, img.RGBAAt(5, 5))
	// No frame yet: the canvas area shows the placeholder.
	c := img.RGBAAt(30, 30)
	assert.Equal(t, uint8(0x11), c.R)
}

func TestPreviewRenderOnce(t *testing.T) {
	p, _ := newTestPreview(t)
	p.renderOnce(t.Context())

	rep := p.LastReport()
	assert.Equal(t, 1, rep.Drawn)
	p.mu.Lock()
	frame := p.frame
	p.mu.Unlock()
	require.NotNil(t, frame)
	assert.Equal(t, layer.CanvasWidth, frame.Bounds().Dx())
}
