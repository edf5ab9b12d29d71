package transform

import (
	"math"
	"testing"

	"thumb-studio/internal/layer"
	"thumb-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	s := Fit(960, 540, 40)
	assert.InDelta(t, math.Min(920.0/1920, 500.0/1080), s, 1e-12)
	assert.InDelta(t, 0.463, s, 0.0005)

	// The scaled canvas fits inside the viewport.
	assert.LessOrEqual(t, 1920*s, 960.0)
	assert.LessOrEqual(t, 1080*s, 540.0)

	assert.Equal(t, 0.0, Fit(10, 10, 40))
}

func TestViewportIsCentered(t *testing.T) {
	v := NewViewport(960, 540)
	r := v.CanvasRect()
	assert.InDelta(t, 960-(r.X+r.Width), r.X, 1e-9)
	assert.InDelta(t, 540-(r.Y+r.Height), r.Y, 1e-9)
	assert.GreaterOrEqual(t, r.X, 0.0)
	assert.GreaterOrEqual(t, r.Y, 0.0)
}

func TestDeviceCanvasRoundTrip(t *testing.T) {
	v := NewViewport(1280, 800)
	p := geometry.NewPoint2D(333, 444)
	back := v.CanvasToDevice(v.DeviceToCanvas(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	c := v.DeviceToCanvas(v.Origin())
	assert.InDelta(t, 0, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)

	m := v.Matrix().Apply(geometry.NewPoint2D(1920, 1080))
	r := v.CanvasRect()
	assert.InDelta(t, r.X+r.Width, m.X, 1e-9)
	assert.InDelta(t, r.Y+r.Height, m.Y, 1e-9)
}

func TestDeviceDelta(t *testing.T) {
	d := DeviceDelta(geometry.NewPoint2D(50, 30), 0.5)
	assert.Equal(t, geometry.NewPoint2D(100, 60), d)
	assert.Equal(t, geometry.Point2D{}, DeviceDelta(geometry.NewPoint2D(5, 5), 0))
}

func TestImageLayerMatrixOrder(t *testing.T) {
	img := layer.NewImageLayer("i", "")
	img.Position = geometry.NewPoint2D(100, 50)
	img.Scale = 2
	img.Rotation = 90

	// Local (10, 0): rotate 90° -> (0, 10), scale -> (0, 20), translate -> (100, 70).
	p := LayerMatrix(img).Apply(geometry.NewPoint2D(10, 0))
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 70, p.Y, 1e-9)
}

func TestTextLayerMatrixOrder(t *testing.T) {
	txt := layer.NewTextLayer("t", "x")
	txt.Position = geometry.NewPoint2D(0, 0)
	txt.SkewX = 45
	txt.Rotation = 90

	// Rotation happens before shear in point space: (10,0) -> (0,10) -> (10,10).
	p := LayerMatrix(txt).Apply(geometry.NewPoint2D(10, 0))
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 10, p.Y, 1e-9)

	// Reversing the order gives a different point, (0,10) here.
	rev := geometry.Rotation(Radians(90)).Compose(geometry.Shear(1, 0)).Apply(geometry.NewPoint2D(10, 0))
	assert.NotEqual(t, math.Round(p.X), math.Round(rev.X))
}

func TestInvert(t *testing.T) {
	img := layer.NewImageLayer("i", "")
	img.Scale = 0.75
	img.Rotation = -30
	m := LayerMatrix(img)
	inv, ok := Invert(m)
	require.True(t, ok)

	p := geometry.NewPoint2D(12, -7)
	back := inv.Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	img.Scale = 0
	_, ok = Invert(LayerMatrix(img))
	assert.False(t, ok)
}

type fixedSizes map[string]geometry.Size

func (f fixedSizes) ContentSize(l layer.Layer) (geometry.Size, bool) {
	s, ok := f[l.Common().ID]
	return s, ok
}

func TestHitTest(t *testing.T) {
	back := layer.NewImageLayer("back", "")
	front := layer.NewImageLayer("front", "")
	front.Position = geometry.NewPoint2D(1000, 540)
	hidden := layer.NewImageLayer("hidden", "")
	hidden.Visible = false

	doc := layer.Document{Layers: []layer.Layer{back, front, hidden}}
	sizes := fixedSizes{
		"back":   geometry.NewSize(400, 400),
		"front":  geometry.NewSize(100, 100),
		"hidden": geometry.NewSize(1920, 1080),
	}

	l, ok := HitTest(doc, geometry.NewPoint2D(1000, 540), sizes)
	require.True(t, ok)
	assert.Equal(t, "front", l.Common().ID)

	l, ok = HitTest(doc, geometry.NewPoint2D(800, 400), sizes)
	require.True(t, ok)
	assert.Equal(t, "back", l.Common().ID)

	_, ok = HitTest(doc, geometry.NewPoint2D(5, 5), sizes)
	assert.False(t, ok, "hidden layers are not hit-testable")
}

func TestHitTestRespectsRotation(t *testing.T) {
	bar := layer.NewImageLayer("bar", "")
	bar.Rotation = 90
	doc := layer.Document{Layers: []layer.Layer{bar}}
	sizes := fixedSizes{"bar": geometry.NewSize(200, 20)}

	_, ok := HitTest(doc, geometry.NewPoint2D(960+80, 540), sizes)
	assert.False(t, ok)
	_, ok = HitTest(doc, geometry.NewPoint2D(960, 540+80), sizes)
	assert.True(t, ok)
}

func TestOutline(t *testing.T) {
	img := layer.NewImageLayer("i", "")
	img.Scale = 2
	o := Outline(img, geometry.NewSize(10, 20))
	assert.Equal(t, geometry.NewPoint2D(950, 520), o[0])
	assert.Equal(t, geometry.NewPoint2D(970, 560), o[2])
}
