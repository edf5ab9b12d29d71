// Package layer defines the canvas document and its ordered layer stack.
//
// A document holds a background and a slice of layers whose order is the
// z-order: index 0 is painted first and sits furthest back. Layer values are
// plain structs, so copying a Document slice never aliases layer state.
package layer

import (
	"thumb-studio/pkg/geometry"
)

// Logical canvas dimensions. Every coordinate stored in a layer is expressed in
// this space, never in device pixels.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// DuplicateOffset is added to both axes of a duplicated layer's position.
const DuplicateOffset = 40.0

// Kind distinguishes the layer variants.
type Kind int

const (
	KindImage Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Layer is implemented by ImageLayer and TextLayer only.
type Layer interface {
	Kind() Kind
	Common() Base
	withCommon(Base) Layer
}

// Base holds the fields shared by every layer variant.
type Base struct {
	ID       string           `json:"id"`
	Position geometry.Point2D `json:"position"` // center, logical px
	Rotation float64          `json:"rotation"` // degrees
	Visible  bool             `json:"visible"`
	Locked   bool             `json:"locked"`
}

// ImageLayer is a raster placed on the canvas.
type ImageLayer struct {
	Base
	Source      string  `json:"source"`
	Scale       float64 `json:"scale"`
	Shadow      bool    `json:"shadow"`
	Glow        bool    `json:"glow"`
	GlowColor   string  `json:"glowColor"`
	StrokeWidth float64 `json:"strokeWidth"` // reserved
	StrokeColor string  `json:"strokeColor"` // reserved

	// IsProduct marks the primary subject inserted by the product pipeline.
	IsProduct bool `json:"isProduct"`
	// OriginalSource is the unprocessed upload, kept for re-isolation.
	OriginalSource string `json:"originalSource,omitempty"`
}

// Kind implements Layer.
func (l ImageLayer) Kind() Kind { return KindImage }

// Common implements Layer.
func (l ImageLayer) Common() Base { return l.Base }

func (l ImageLayer) withCommon(b Base) Layer {
	l.Base = b
	return l
}

// TextLayer is a single line of upper-cased text.
type TextLayer struct {
	Base
	Text          string  `json:"text"`
	Font          string  `json:"font"`
	Color         string  `json:"color"`
	FontSize      float64 `json:"fontSize"`
	LetterSpacing float64 `json:"letterSpacing"` // not rendered
	SkewX         float64 `json:"skewX"`         // degrees
	StrokeWidth   float64 `json:"strokeWidth"`
	StrokeColor   string  `json:"strokeColor"`
	Shadow        bool    `json:"shadow"`
	ShadowColor   string  `json:"shadowColor"`
	ShadowOpacity float64 `json:"shadowOpacity"`
	ShadowBlur    float64 `json:"shadowBlur"`
	ShadowOffsetX float64 `json:"shadowOffsetX"`
	ShadowOffsetY float64 `json:"shadowOffsetY"`
}

// Kind implements Layer.
func (l TextLayer) Kind() Kind { return KindText }

// Common implements Layer.
func (l TextLayer) Common() Base { return l.Base }

func (l TextLayer) withCommon(b Base) Layer {
	l.Base = b
	return l
}

// NewImageLayer returns a visible, unlocked image layer centered on the canvas.
func NewImageLayer(id, source string) ImageLayer {
	return ImageLayer{
		Base:        newBase(id),
		Source:      source,
		Scale:       1,
		GlowColor:   "#ffffff",
		StrokeColor: "#ffffff",
	}
}

// NewTextLayer returns a visible, unlocked text layer centered on the canvas
// with the default headline styling.
func NewTextLayer(id, text string) TextLayer {
	return TextLayer{
		Base:          newBase(id),
		Text:          text,
		Font:          FontBebasNeue,
		Color:         "#ffffff",
		FontSize:      150,
		StrokeWidth:   8,
		StrokeColor:   "#000000",
		Shadow:        true,
		ShadowColor:   "#000000",
		ShadowOpacity: 0.8,
		ShadowOffsetX: 4,
		ShadowOffsetY: 4,
	}
}

func newBase(id string) Base {
	return Base{
		ID:       id,
		Position: geometry.Point2D{X: CanvasWidth / 2, Y: CanvasHeight / 2},
		Visible:  true,
	}
}
