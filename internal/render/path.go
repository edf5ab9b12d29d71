package render

import (
	"math"

	"thumb-studio/pkg/geometry"
)

type segKind uint8

const (
	segMove segKind = iota
	segLine
	segQuad
	segCubic
	segClose
)

type segment struct {
	kind segKind
	pts  [3]geometry.Point2D
}

// Path is a sequence of subpaths in user space.
type Path struct {
	segs []segment
}

func (p *Path) MoveTo(x, y float64) {
	p.segs = append(p.segs, segment{kind: segMove, pts: [3]geometry.Point2D{{X: x, Y: y}}})
}

func (p *Path) LineTo(x, y float64) {
	p.segs = append(p.segs, segment{kind: segLine, pts: [3]geometry.Point2D{{X: x, Y: y}}})
}

func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.segs = append(p.segs, segment{kind: segQuad, pts: [3]geometry.Point2D{{X: cx, Y: cy}, {X: x, Y: y}}})
}

func (p *Path) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.segs = append(p.segs, segment{kind: segCubic, pts: [3]geometry.Point2D{{X: c1x, Y: c1y}, {X: c2x, Y: c2y}, {X: x, Y: y}}})
}

func (p *Path) Close() {
	p.segs = append(p.segs, segment{kind: segClose})
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	return p == nil || len(p.segs) == 0
}

// Translate shifts every point of the path in place.
func (p *Path) Translate(dx, dy float64) {
	d := geometry.Point2D{X: dx, Y: dy}
	for i := range p.segs {
		for j := range p.segs[i].pts {
			p.segs[i].pts[j] = p.segs[i].pts[j].Add(d)
		}
	}
}

// Bounds returns the bounding box of all points, control points included.
func (p *Path) Bounds() geometry.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range p.segs {
		n := s.kind.points()
		for _, pt := range s.pts[:n] {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return geometry.Rect{}
	}
	return geometry.NewRect(minX, minY, maxX-minX, maxY-minY)
}

func (k segKind) points() int {
	switch k {
	case segMove, segLine:
		return 1
	case segQuad:
		return 2
	case segCubic:
		return 3
	}
	return 0
}
