package geometry

// Rect is an axis-aligned rectangle given by its top-left corner and extent.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// CenteredRect is the box of a layer's content in its local space, where
// the layer's position is the origin.
func CenteredRect(s Size) Rect {
	return Rect{X: -s.Width / 2, Y: -s.Height / 2, Width: s.Width, Height: s.Height}
}

// Contains is inclusive on every edge.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Corners returns top-left, top-right, bottom-right, bottom-left.
func (r Rect) Corners() [4]Point2D {
	right, bottom := r.X+r.Width, r.Y+r.Height
	return [4]Point2D{{r.X, r.Y}, {right, r.Y}, {right, bottom}, {r.X, bottom}}
}
