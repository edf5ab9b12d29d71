package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"thumb-studio/pkg/geometry"
)

type xformKind uint8

const (
	xTranslate xformKind = iota
	xScale
	xRotate
	xShear
)

// xform is one recorded transform call. gg keeps its matrix private, so the
// surface records the calls to replay them onto shadow scratch contexts and
// to derive the stroke scale.
type xform struct {
	kind xformKind
	a, b float64
}

func (x xform) apply(dc *gg.Context) {
	switch x.kind {
	case xTranslate:
		dc.Translate(x.a, x.b)
	case xScale:
		dc.Scale(x.a, x.b)
	case xRotate:
		dc.Rotate(x.a)
	case xShear:
		dc.Shear(x.a, x.b)
	}
}

func (x xform) matrix() geometry.AffineTransform {
	switch x.kind {
	case xTranslate:
		return geometry.Translation(x.a, x.b)
	case xScale:
		return geometry.Scale(x.a, x.b)
	case xRotate:
		return geometry.Rotation(x.a)
	case xShear:
		return geometry.Shear(x.a, x.b)
	}
	return geometry.Identity()
}

type surfaceState struct {
	ops    []xform
	shadow *Shadow
}

// GGSurface is a Surface backed by a fogleman/gg context.
type GGSurface struct {
	dc    *gg.Context
	cur   surfaceState
	saved []surfaceState
}

// NewGGSurface creates a transparent surface of the given pixel size.
func NewGGSurface(width, height int) *GGSurface {
	return &GGSurface{dc: gg.NewContext(width, height)}
}

// NewGGSurfaceForRGBA draws into an existing image.
func NewGGSurfaceForRGBA(im *image.RGBA) *GGSurface {
	return &GGSurface{dc: gg.NewContextForRGBA(im)}
}

func (s *GGSurface) Width() int { return s.dc.Width() }
func (s *GGSurface) Height() int { return s.dc.Height() }

// Context exposes the underlying gg context, e.g. for EncodePNG.
func (s *GGSurface) Context() *gg.Context { return s.dc }

func (s *GGSurface) Image() image.Image { return s.dc.Image() }

func (s *GGSurface) Save() {
	s.dc.Push()
	ops := make([]xform, len(s.cur.ops))
	copy(ops, s.cur.ops)
	s.saved = append(s.saved, surfaceState{ops: ops, shadow: s.cur.shadow})
}

func (s *GGSurface) Restore() {
	if len(s.saved) == 0 {
		return
	}
	s.dc.Pop()
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

func (s *GGSurface) push(x xform) {
	s.cur.ops = append(s.cur.ops, x)
	x.apply(s.dc)
}

func (s *GGSurface) Translate(x, y float64) { s.push(xform{xTranslate, x, y}) }
func (s *GGSurface) Scale(sx, sy float64) { s.push(xform{xScale, sx, sy}) }
func (s *GGSurface) Rotate(radians float64) { s.push(xform{xRotate, radians, 0}) }
func (s *GGSurface) Shear(sx, sy float64) { s.push(xform{xShear, sx, sy}) }

func (s *GGSurface) SetShadow(sh Shadow) {
	if !sh.Visible() {
		s.cur.shadow = nil
		return
	}
	s.cur.shadow = &sh
}

func (s *GGSurface) ClearShadow() { s.cur.shadow = nil }

// Matrix returns the current user-to-device transform.
func (s *GGSurface) Matrix() geometry.AffineTransform {
	m := geometry.Identity()
	for _, x := range s.cur.ops {
		m = m.Compose(x.matrix())
	}
	return m
}

func (s *GGSurface) FillRect(r geometry.Rect, p Paint) {
	// gg evaluates gradients in device space.
	m := s.Matrix()
	s.draw(func(dc *gg.Context) {
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		if p.Gradient != nil {
			from, to := m.Apply(p.Gradient.From), m.Apply(p.Gradient.To)
			g := gg.NewLinearGradient(from.X, from.Y, to.X, to.Y)
			g.AddColorStop(0, p.Gradient.Start)
			g.AddColorStop(1, p.Gradient.End)
			dc.SetFillStyle(g)
		} else {
			dc.SetColor(paintColor(p.Color))
		}
		dc.Fill()
	})
}

func (s *GGSurface) DrawImage(img image.Image, r geometry.Rect) {
	b := img.Bounds()
	if b.Empty() || r.Width == 0 || r.Height == 0 {
		return
	}
	s.draw(func(dc *gg.Context) {
		dc.Push()
		dc.Translate(r.X, r.Y)
		dc.Scale(r.Width/float64(b.Dx()), r.Height/float64(b.Dy()))
		dc.DrawImage(img, -b.Min.X, -b.Min.Y)
		dc.Pop()
	})
}

func (s *GGSurface) FillPath(p *Path, c color.Color) {
	if p.Empty() {
		return
	}
	s.draw(func(dc *gg.Context) {
		trace(dc, p)
		dc.SetColor(paintColor(c))
		dc.Fill()
	})
}

func (s *GGSurface) StrokePath(p *Path, st Stroke) {
	if p.Empty() || st.Width <= 0 {
		return
	}
	// gg strokes in device space, so scale the width by the current
	// transform's area factor to keep it in user units.
	m := s.Matrix()
	width := st.Width * math.Sqrt(math.Abs(m.Det()))
	s.draw(func(dc *gg.Context) {
		trace(dc, p)
		dc.SetColor(paintColor(st.Color))
		dc.SetLineWidth(width)
		switch st.Join {
		case JoinBevel:
			dc.SetLineJoin(gg.LineJoinBevel)
		default:
			dc.SetLineJoin(gg.LineJoinRound)
		}
		dc.SetLineCap(gg.LineCapRound)
		dc.Stroke()
	})
}

// draw runs fn against the main context, preceded by its shadow pass when a
// shadow is set.
func (s *GGSurface) draw(fn func(dc *gg.Context)) {
	if sh := s.cur.shadow; sh != nil {
		s.drawShadow(*sh, fn)
	}
	fn(s.dc)
}

func (s *GGSurface) drawShadow(sh Shadow, fn func(dc *gg.Context)) {
	// Content slightly outside the surface can still throw a shadow onto it.
	margin := int(math.Ceil(3*blurSigma(sh.Blur) + math.Max(math.Abs(sh.OffsetX), math.Abs(sh.OffsetY))))
	scratch := gg.NewContext(s.dc.Width()+2*margin, s.dc.Height()+2*margin)
	scratch.Translate(float64(margin), float64(margin))
	for _, x := range s.cur.ops {
		x.apply(scratch)
	}
	fn(scratch)

	src, ok := scratch.Image().(*image.RGBA)
	if !ok {
		return
	}
	shadow, at := castShadow(src, sh)
	if shadow == nil {
		return
	}

	s.dc.Push()
	s.dc.Identity()
	s.dc.Translate(float64(at.X-margin)+sh.OffsetX, float64(at.Y-margin)+sh.OffsetY)
	s.dc.DrawImage(shadow, 0, 0)
	s.dc.Pop()
}

func trace(dc *gg.Context, p *Path) {
	dc.NewSubPath()
	for _, seg := range p.segs {
		a, b, c := seg.pts[0], seg.pts[1], seg.pts[2]
		switch seg.kind {
		case segMove:
			dc.MoveTo(a.X, a.Y)
		case segLine:
			dc.LineTo(a.X, a.Y)
		case segQuad:
			dc.QuadraticTo(a.X, a.Y, b.X, b.Y)
		case segCubic:
			dc.CubicTo(a.X, a.Y, b.X, b.Y, c.X, c.Y)
		case segClose:
			dc.ClosePath()
		}
	}
}

func paintColor(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}
