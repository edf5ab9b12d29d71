// Package transform maps the fixed logical canvas onto a device viewport and
// derives the per-layer affine transforms used for drawing and hit testing.
package transform

import (
	"math"

	"thumb-studio/internal/layer"
	"thumb-studio/pkg/geometry"
)

// DefaultPadding is the margin kept free around the canvas in the viewport.
const DefaultPadding = 40.0

// Fit returns the uniform scale that fits the logical canvas inside a viewport
// of the given size after subtracting padding. It never returns a negative value.
func Fit(width, height, padding float64) float64 {
	scale := math.Min((width-padding)/layer.CanvasWidth, (height-padding)/layer.CanvasHeight)
	if scale < 0 || math.IsNaN(scale) {
		return 0
	}
	return scale
}

// Viewport is the device-pixel area the canvas is displayed in. The canvas is
// always centered and uniformly scaled, never cropped.
type Viewport struct {
	Width   float64
	Height  float64
	Padding float64
}

// NewViewport creates a Viewport with the default padding.
func NewViewport(width, height float64) Viewport {
	return Viewport{Width: width, Height: height, Padding: DefaultPadding}
}

// Scale returns the current canvas-to-device scale factor.
func (v Viewport) Scale() float64 {
	return Fit(v.Width, v.Height, v.Padding)
}

// Origin returns the device position of the canvas top-left corner.
func (v Viewport) Origin() geometry.Point2D {
	s := v.Scale()
	return geometry.Point2D{
		X: (v.Width - layer.CanvasWidth*s) / 2,
		Y: (v.Height - layer.CanvasHeight*s) / 2,
	}
}

// CanvasRect returns the device rectangle covered by the canvas.
func (v Viewport) CanvasRect() geometry.Rect {
	s := v.Scale()
	o := v.Origin()
	return geometry.NewRect(o.X, o.Y, layer.CanvasWidth*s, layer.CanvasHeight*s)
}

// DeviceToCanvas converts a device point to logical canvas coordinates.
func (v Viewport) DeviceToCanvas(p geometry.Point2D) geometry.Point2D {
	s := v.Scale()
	if s == 0 {
		return geometry.Point2D{}
	}
	return p.Sub(v.Origin()).Scale(1 / s)
}

// CanvasToDevice converts a logical canvas point to device coordinates.
func (v Viewport) CanvasToDevice(p geometry.Point2D) geometry.Point2D {
	return p.Scale(v.Scale()).Add(v.Origin())
}

// Matrix returns the canvas-to-device transform.
func (v Viewport) Matrix() geometry.AffineTransform {
	s := v.Scale()
	o := v.Origin()
	return geometry.Translation(o.X, o.Y).Compose(geometry.Scale(s, s))
}

// DeviceDelta converts a device-pixel displacement into logical units using
// the given (live) scale factor.
func DeviceDelta(d geometry.Point2D, scale float64) geometry.Point2D {
	if scale == 0 {
		return geometry.Point2D{}
	}
	return d.Scale(1 / scale)
}
