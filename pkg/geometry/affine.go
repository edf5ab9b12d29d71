package geometry

import "math"

// AffineTransform maps (x, y) to (A·x + B·y + TX, C·x + D·y + TY).
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Rotation turns clockwise on screen for positive radians (y is down).
func Rotation(radians float64) AffineTransform {
	sin, cos := math.Sincos(radians)
	return AffineTransform{A: cos, B: -sin, C: sin, D: cos}
}

func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Shear maps (x, y) to (x + sx·y, sy·x + y). Text skew uses Shear(tan θ, 0).
func Shear(sx, sy float64) AffineTransform {
	return AffineTransform{A: 1, B: sx, C: sy, D: 1}
}

func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns t·u: the result applies u first, then t.
func (t AffineTransform) Compose(u AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*u.A + t.B*u.C,
		B:  t.A*u.B + t.B*u.D,
		TX: t.A*u.TX + t.B*u.TY + t.TX,
		C:  t.C*u.A + t.D*u.C,
		D:  t.C*u.B + t.D*u.D,
		TY: t.C*u.TX + t.D*u.TY + t.TY,
	}
}

// Det is the area scale factor of the linear part.
func (t AffineTransform) Det() float64 {
	return t.A*t.D - t.B*t.C
}
