package layer

import (
	"thumb-studio/pkg/geometry"
)

// ReorderDirection is the direction of a single-step reorder.
type ReorderDirection int

const (
	// Forward moves a layer one step toward the front (higher index).
	Forward ReorderDirection = iota
	// Backward moves a layer one step toward the back (lower index).
	Backward
)

// Patch is a partial layer update. Nil fields are left untouched, and fields
// that do not exist on the target variant are ignored.
type Patch struct {
	Position *geometry.Point2D
	Rotation *float64
	Visible  *bool
	Locked   *bool

	// Shared by both variants.
	StrokeWidth *float64
	StrokeColor *string
	Shadow      *bool

	// Image only.
	Source         *string
	Scale          *float64
	Glow           *bool
	GlowColor      *string
	IsProduct      *bool
	OriginalSource *string

	// Text only.
	Text          *string
	Font          *string
	Color         *string
	FontSize      *float64
	LetterSpacing *float64
	SkewX         *float64
	ShadowColor   *string
	ShadowOpacity *float64
	ShadowBlur    *float64
	ShadowOffsetX *float64
	ShadowOffsetY *float64
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// MoveTo is a patch that only sets the position.
func MoveTo(p geometry.Point2D) Patch {
	return Patch{Position: &p}
}

// Apply returns l with the patch applied.
func (p Patch) Apply(l Layer) Layer {
	b := l.Common()
	set(&b.Position, p.Position)
	set(&b.Rotation, p.Rotation)
	set(&b.Visible, p.Visible)
	set(&b.Locked, p.Locked)
	l = l.withCommon(b)

	switch v := l.(type) {
	case ImageLayer:
		set(&v.Source, p.Source)
		set(&v.Scale, p.Scale)
		set(&v.Shadow, p.Shadow)
		set(&v.Glow, p.Glow)
		set(&v.GlowColor, p.GlowColor)
		set(&v.StrokeWidth, p.StrokeWidth)
		set(&v.StrokeColor, p.StrokeColor)
		set(&v.IsProduct, p.IsProduct)
		set(&v.OriginalSource, p.OriginalSource)
		return v
	case TextLayer:
		set(&v.Text, p.Text)
		set(&v.Font, p.Font)
		set(&v.Color, p.Color)
		set(&v.FontSize, p.FontSize)
		set(&v.LetterSpacing, p.LetterSpacing)
		set(&v.SkewX, p.SkewX)
		set(&v.StrokeWidth, p.StrokeWidth)
		set(&v.StrokeColor, p.StrokeColor)
		set(&v.Shadow, p.Shadow)
		set(&v.ShadowColor, p.ShadowColor)
		set(&v.ShadowOpacity, p.ShadowOpacity)
		set(&v.ShadowBlur, p.ShadowBlur)
		set(&v.ShadowOffsetX, p.ShadowOffsetX)
		set(&v.ShadowOffsetY, p.ShadowOffsetY)
		return v
	}
	return l
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// IndexOf returns the stack index of the layer with the given id, or -1.
func (d Document) IndexOf(id string) int {
	for i, l := range d.Layers {
		if l.Common().ID == id {
			return i
		}
	}
	return -1
}

// Find returns the layer with the given id.
func (d Document) Find(id string) (Layer, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.Layers[i], true
	}
	return nil, false
}

// AddLayer appends l as the frontmost layer.
func AddLayer(d Document, l Layer) Document {
	out := d.Clone()
	out.Layers = append(out.Layers, l)
	return out
}

// UpdateLayer applies patch to the layer with the given id.
// An unknown id leaves the document unchanged.
func UpdateLayer(d Document, id string, patch Patch) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	out := d.Clone()
	out.Layers[i] = patch.Apply(out.Layers[i])
	return out
}

// RemoveLayer deletes the layer with the given id.
// An unknown id leaves the document unchanged.
func RemoveLayer(d Document, id string) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	out := d
	out.Layers = make([]Layer, 0, len(d.Layers)-1)
	out.Layers = append(out.Layers, d.Layers[:i]...)
	out.Layers = append(out.Layers, d.Layers[i+1:]...)
	return out
}

// Reorder swaps the layer with its neighbour in the given direction.
// Moving the frontmost layer forward, the backmost backward, or an unknown
// id is a no-op.
func Reorder(d Document, id string, dir ReorderDirection) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	j := i + 1
	if dir == Backward {
		j = i - 1
	}
	if j < 0 || j >= len(d.Layers) {
		return d
	}
	out := d.Clone()
	out.Layers[i], out.Layers[j] = out.Layers[j], out.Layers[i]
	return out
}

// Duplicate appends a copy of the layer with the given id under newID,
// offset by DuplicateOffset on both axes. ok is false for an unknown id.
func Duplicate(d Document, id, newID string) (out Document, copyID string, ok bool) {
	src, found := d.Find(id)
	if !found {
		return d, "", false
	}
	b := src.Common()
	b.ID = newID
	b.Position = b.Position.Add(geometry.Point2D{X: DuplicateOffset, Y: DuplicateOffset})
	return AddLayer(d, src.withCommon(b)), newID, true
}

// ToggleVisible flips the visibility flag of a layer.
func ToggleVisible(d Document, id string) Document {
	l, ok := d.Find(id)
	if !ok {
		return d
	}
	return UpdateLayer(d, id, Patch{Visible: Ptr(!l.Common().Visible)})
}

// ToggleLocked flips the lock flag of a layer.
func ToggleLocked(d Document, id string) Document {
	l, ok := d.Find(id)
	if !ok {
		return d
	}
	return UpdateLayer(d, id, Patch{Locked: Ptr(!l.Common().Locked)})
}

// WithBackgroundImage switches to image mode with the given reference.
func WithBackgroundImage(d Document, ref string) Document {
	out := d.Clone()
	out.Background.Mode = BackgroundImage
	out.Background.ImageRef = ref
	return out
}

// WithGradient switches to gradient mode with g.
func WithGradient(d Document, g Gradient) Document {
	out := d.Clone()
	out.Background.Mode = BackgroundGradient
	out.Background.Gradient = g
	return out
}

// WithBackgroundMode changes only the background mode.
func WithBackgroundMode(d Document, mode BackgroundMode) Document {
	out := d.Clone()
	out.Background.Mode = mode
	return out
}
