package render

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"thumb-studio/pkg/geometry"
)

// TextBlock is a line of text laid out as glyph outlines centered on the
// origin: horizontally by advance width, vertically by the middle of the em
// box.
type TextBlock struct {
	Path *Path
	Size geometry.Size
}

// DisplayText is the string a text layer actually renders.
func DisplayText(s string) string {
	s = strings.ToUpper(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// LayoutText converts s into outlines at the given pixel size. Runes the font
// has no glyph for use its .notdef glyph.
func LayoutText(f *sfnt.Font, s string, size float64) (TextBlock, error) {
	if size <= 0 || s == "" {
		return TextBlock{Path: &Path{}}, nil
	}
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(size * 64)

	metrics, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return TextBlock{}, err
	}
	ascent, descent := fromFixed(metrics.Ascent), fromFixed(metrics.Descent)

	path := &Path{}
	var pen float64
	var prev sfnt.GlyphIndex
	for i, r := range s {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return TextBlock{}, err
		}
		if i > 0 {
			if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen += fromFixed(k)
			}
		}
		segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			return TextBlock{}, err
		}
		appendGlyph(path, segs, pen)

		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return TextBlock{}, err
		}
		pen += fromFixed(adv)
		prev = idx
	}

	// Baseline sits so the em box middle lands on y=0.
	path.Translate(-pen/2, (ascent-descent)/2)
	return TextBlock{Path: path, Size: geometry.NewSize(pen, ascent+descent)}, nil
}

func appendGlyph(p *Path, segs sfnt.Segments, dx float64) {
	open := false
	for _, seg := range segs {
		a := seg.Args
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			p.MoveTo(fromFixed(a[0].X)+dx, fromFixed(a[0].Y))
			open = true
		case sfnt.SegmentOpLineTo:
			p.LineTo(fromFixed(a[0].X)+dx, fromFixed(a[0].Y))
		case sfnt.SegmentOpQuadTo:
			p.QuadTo(fromFixed(a[0].X)+dx, fromFixed(a[0].Y), fromFixed(a[1].X)+dx, fromFixed(a[1].Y))
		case sfnt.SegmentOpCubeTo:
			p.CubeTo(fromFixed(a[0].X)+dx, fromFixed(a[0].Y), fromFixed(a[1].X)+dx, fromFixed(a[1].Y), fromFixed(a[2].X)+dx, fromFixed(a[2].Y))
		}
	}
	if open {
		p.Close()
	}
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
