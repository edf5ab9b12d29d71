package transform

import (
	"math"

	"thumb-studio/internal/layer"
	"thumb-studio/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// LayerMatrix returns the local-to-canvas transform of l.
//
// Image layers: translate to center, scale uniformly, rotate.
// Text layers: translate to center, shear along X by tan(skew), rotate.
// Content is drawn centered on the local origin.
func LayerMatrix(l layer.Layer) geometry.AffineTransform {
	b := l.Common()
	m := geometry.Translation(b.Position.X, b.Position.Y)
	switch v := l.(type) {
	case layer.ImageLayer:
		m = m.Compose(geometry.Scale(v.Scale, v.Scale))
	case layer.TextLayer:
		m = m.Compose(geometry.Shear(math.Tan(Radians(v.SkewX)), 0))
	}
	return m.Compose(geometry.Rotation(Radians(b.Rotation)))
}

// Invert returns the inverse of t. ok is false for a singular transform,
// e.g. an image layer with zero scale.
func Invert(t geometry.AffineTransform) (inv geometry.AffineTransform, ok bool) {
	m := mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
	if math.Abs(mat.Det(m)) < 1e-12 {
		return geometry.AffineTransform{}, false
	}
	var out mat.Dense
	if err := out.Inverse(m); err != nil {
		return geometry.AffineTransform{}, false
	}
	return geometry.AffineTransform{
		A: out.At(0, 0), B: out.At(0, 1), TX: out.At(0, 2),
		C: out.At(1, 0), D: out.At(1, 1), TY: out.At(1, 2),
	}, true
}

// ToLocal maps a canvas point into l's local content space.
func ToLocal(l layer.Layer, p geometry.Point2D) (geometry.Point2D, bool) {
	inv, ok := Invert(LayerMatrix(l))
	if !ok {
		return geometry.Point2D{}, false
	}
	return inv.Apply(p), true
}

// Outline returns the canvas-space corners of l's content box.
func Outline(l layer.Layer, content geometry.Size) [4]geometry.Point2D {
	m := LayerMatrix(l)
	corners := geometry.CenteredRect(content).Corners()
	for i, c := range corners {
		corners[i] = m.Apply(c)
	}
	return corners
}
