package layer

import (
	"encoding/json"
	"fmt"
)

// BackgroundMode selects how the canvas background is painted.
type BackgroundMode string

const (
	BackgroundImage    BackgroundMode = "image"
	BackgroundGradient BackgroundMode = "gradient"
)

// Direction is the axis of a linear background gradient.
type Direction string

const (
	ToRight       Direction = "to right"
	ToBottom      Direction = "to bottom"
	ToBottomRight Direction = "to bottom right"
	ToTopRight    Direction = "to top right"
)

// Directions lists the supported gradient directions in display order.
func Directions() []Direction {
	return []Direction{ToRight, ToBottom, ToBottomRight, ToTopRight}
}

// Gradient is a two-stop linear gradient.
type Gradient struct {
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Direction Direction `json:"direction"`
}

// Background describes the bottom-most paint of the canvas.
type Background struct {
	Mode     BackgroundMode `json:"mode"`
	ImageRef string         `json:"imageRef,omitempty"`
	Gradient Gradient       `json:"gradient"`
}

// Document is the canvas document: a background plus the ordered layer stack.
type Document struct {
	Background Background `json:"background"`
	Layers     []Layer    `json:"-"`
}

// NewDocument returns the starting document of a fresh session: image mode
// with no background and a single title layer.
func NewDocument(titleID string) Document {
	title := NewTextLayer(titleID, "YOUR TITLE")
	title.FontSize = 250
	title.SkewX = -5
	title.ShadowOpacity = 1
	return Document{
		Background: Background{
			Mode:     BackgroundImage,
			Gradient: Gradient{Start: "#1a1a1a", End: "#000000", Direction: ToBottom},
		},
		Layers: []Layer{title},
	}
}

// Clone returns a copy whose layer slice does not alias d's.
func (d Document) Clone() Document {
	out := d
	out.Layers = make([]Layer, len(d.Layers))
	copy(out.Layers, d.Layers)
	return out
}

// Len returns the number of layers.
func (d Document) Len() int {
	return len(d.Layers)
}

type layerEnvelope struct {
	Type  string      `json:"type"`
	Image *ImageLayer `json:"image,omitempty"`
	Text  *TextLayer  `json:"text,omitempty"`
}

type documentJSON struct {
	Background Background      `json:"background"`
	Layers     []layerEnvelope `json:"layers"`
}

// MarshalJSON writes each layer wrapped with a "type" discriminator.
func (d Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{Background: d.Background, Layers: make([]layerEnvelope, 0, len(d.Layers))}
	for _, l := range d.Layers {
		switch v := l.(type) {
		case ImageLayer:
			out.Layers = append(out.Layers, layerEnvelope{Type: KindImage.String(), Image: &v})
		case TextLayer:
			out.Layers = append(out.Layers, layerEnvelope{Type: KindText.String(), Text: &v})
		default:
			return nil, fmt.Errorf("unsupported layer type %T", l)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	var in documentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	layers := make([]Layer, 0, len(in.Layers))
	for i, env := range in.Layers {
		switch {
		case env.Type == KindImage.String() && env.Image != nil:
			layers = append(layers, *env.Image)
		case env.Type == KindText.String() && env.Text != nil:
			layers = append(layers, *env.Text)
		default:
			return fmt.Errorf("layer %d: unknown type %q", i, env.Type)
		}
	}
	d.Background = in.Background
	d.Layers = layers
	return nil
}
