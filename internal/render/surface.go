// Package render draws a canvas document into a raster.
//
// Render is the only compositing routine in the program. The live preview
// and the PNG export both call it, each with its own Surface, so the two can
// never disagree about background, transforms, effects or paint order.
package render

import (
	"image"
	"image/color"

	"thumb-studio/pkg/geometry"
)

// Surface is a 2D drawing target with a canvas-style transform stack.
// Transform calls compose onto the current matrix: the last call applies
// first to drawn content. Save/Restore cover both the matrix and the shadow.
type Surface interface {
	Width() int
	Height() int

	Save()
	Restore()

	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(radians float64)
	Shear(sx, sy float64)

	// SetShadow applies to every following primitive until cleared or
	// restored. Offsets and blur are in device pixels.
	SetShadow(s Shadow)
	ClearShadow()

	FillRect(r geometry.Rect, p Paint)
	// DrawImage draws img stretched to r in user space.
	DrawImage(img image.Image, r geometry.Rect)
	FillPath(p *Path, c color.Color)
	StrokePath(p *Path, s Stroke)

	Image() image.Image
}

// Shadow is a blurred copy of each primitive drawn under it.
type Shadow struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Visible reports whether the shadow would leave any pixels.
func (s Shadow) Visible() bool {
	return s.Color.A > 0
}

// Paint is a solid color or, when Gradient is set, a linear gradient.
type Paint struct {
	Color    color.Color
	Gradient *LinearGradient
}

// Solid returns a single-color paint.
func Solid(c color.Color) Paint {
	return Paint{Color: c}
}

// LinearGradient runs from Start at From to End at To, in user space.
type LinearGradient struct {
	From, To   geometry.Point2D
	Start, End color.Color
}

// LineJoin selects how stroke segments meet.
type LineJoin int

const (
	JoinRound LineJoin = iota
	JoinBevel
)

// Stroke describes an outline. Width is in user space.
type Stroke struct {
	Color color.Color
	Width float64
	Join  LineJoin
}
