package layer

import (
	"thumb-studio/pkg/geometry"
)

// Brand font tokens stored in TextLayer.Font.
const (
	FontBebasNeue       = "font-bebas"
	FontAnton           = "font-anton"
	FontMontserrat      = "font-montserrat"
	FontRobotoCondensed = "font-roboto"
)

// FontTokens lists the brand font tokens in display order.
func FontTokens() []string {
	return []string{FontBebasNeue, FontAnton, FontMontserrat, FontRobotoCondensed}
}

// GradientPreset is a named two-color background.
type GradientPreset struct {
	Name  string
	Start string
	End   string
}

// GradientPresets are the stock background gradients.
var GradientPresets = []GradientPreset{
	{Name: "Midnight", Start: "#0f172a", End: "#312e81"},
	{Name: "Hot YouTube", Start: "#ef4444", End: "#7f1d1d"},
	{Name: "Oceanic", Start: "#0ea5e9", End: "#1e3a8a"},
	{Name: "Neon Violet", Start: "#a855f7", End: "#4c1d95"},
	{Name: "Emerald", Start: "#10b981", End: "#064e3b"},
	{Name: "Sunset", Start: "#f97316", End: "#be123c"},
	{Name: "Charcoal", Start: "#27272a", End: "#09090b"},
	{Name: "Gold", Start: "#eab308", End: "#854d0e"},
}

// Gradient returns the preset as a gradient in the given direction.
func (p GradientPreset) Gradient(dir Direction) Gradient {
	return Gradient{Start: p.Start, End: p.End, Direction: dir}
}

// Alignment is a snap position for quick placement.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignMiddle
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	case AlignMiddle:
		return "Middle"
	default:
		return "Unknown"
	}
}

// Aligned returns p snapped to the alignment: Left/Center/Right set x to a
// quarter, half or three quarters of the canvas width; Middle centers y.
func Aligned(p geometry.Point2D, a Alignment) geometry.Point2D {
	switch a {
	case AlignLeft:
		p.X = CanvasWidth * 0.25
	case AlignCenter:
		p.X = CanvasWidth * 0.5
	case AlignRight:
		p.X = CanvasWidth * 0.75
	case AlignMiddle:
		p.Y = CanvasHeight * 0.5
	}
	return p
}
