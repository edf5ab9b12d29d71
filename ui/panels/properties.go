package panels

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"thumb-studio/internal/app"
	"thumb-studio/internal/layer"
	"thumb-studio/pkg/colorutil"
	"thumb-studio/pkg/geometry"
)

// fontNames maps font tokens to their display names.
var fontNames = map[string]string{
	layer.FontBebasNeue:       "Bebas Neue",
	layer.FontAnton:           "Anton",
	layer.FontMontserrat:      "Montserrat",
	layer.FontRobotoCondensed: "Roboto Condensed",
}

// field is one bound editor row.
type field struct {
	item    *widget.FormItem
	refresh func(layer.Layer)
}

// PropertiesPanel edits the selected layer.
//
// The forms are built once per variant; selection and document changes only
// push values into the widgets. Widgets that already hold the document value
// are left alone so typing is not interrupted.
type PropertiesPanel struct {
	state     *app.State
	container fyne.CanvasObject

	empty     *widget.Label
	imageForm *widget.Form
	textForm  *widget.Form
	common    *fyne.Container

	commonFields []field
	imageFields  []field
	textFields   []field
}

// NewPropertiesPanel creates a new properties panel.
func NewPropertiesPanel(state *app.State) *PropertiesPanel {
	pp := &PropertiesPanel{state: state}

	pp.commonFields = []field{
		pp.number("X", func(l layer.Layer) float64 { return l.Common().Position.X }, func(v float64) layer.Patch {
			p := pp.position()
			p.X = v
			return layer.MoveTo(p)
		}),
		pp.number("Y", func(l layer.Layer) float64 { return l.Common().Position.Y }, func(v float64) layer.Patch {
			p := pp.position()
			p.Y = v
			return layer.MoveTo(p)
		}),
		pp.number("Rotation", func(l layer.Layer) float64 { return l.Common().Rotation }, func(v float64) layer.Patch {
			return layer.Patch{Rotation: &v}
		}),
	}

	pp.imageFields = []field{
		pp.number("Scale", func(l layer.Layer) float64 { return l.(layer.ImageLayer).Scale }, func(v float64) layer.Patch {
			if v <= 0 {
				return layer.Patch{}
			}
			return layer.Patch{Scale: &v}
		}),
		pp.check("Shadow", func(l layer.Layer) bool { return l.(layer.ImageLayer).Shadow }, func(v bool) layer.Patch {
			return layer.Patch{Shadow: &v}
		}),
		pp.check("Glow", func(l layer.Layer) bool { return l.(layer.ImageLayer).Glow }, func(v bool) layer.Patch {
			return layer.Patch{Glow: &v}
		}),
		pp.color("Glow color", func(l layer.Layer) string { return l.(layer.ImageLayer).GlowColor }, func(v string) layer.Patch {
			return layer.Patch{GlowColor: &v}
		}),
	}

	pp.textFields = []field{
		pp.text("Text", func(l layer.Layer) string { return l.(layer.TextLayer).Text }, func(v string) layer.Patch {
			return layer.Patch{Text: &v}
		}),
		pp.font(),
		pp.color("Color", func(l layer.Layer) string { return l.(layer.TextLayer).Color }, func(v string) layer.Patch {
			return layer.Patch{Color: &v}
		}),
		pp.number("Size", func(l layer.Layer) float64 { return l.(layer.TextLayer).FontSize }, func(v float64) layer.Patch {
			if v <= 0 {
				return layer.Patch{}
			}
			return layer.Patch{FontSize: &v}
		}),
		pp.number("Skew", func(l layer.Layer) float64 { return l.(layer.TextLayer).SkewX }, func(v float64) layer.Patch {
			return layer.Patch{SkewX: &v}
		}),
		pp.number("Stroke", func(l layer.Layer) float64 { return l.(layer.TextLayer).StrokeWidth }, func(v float64) layer.Patch {
			if v < 0 {
				return layer.Patch{}
			}
			return layer.Patch{StrokeWidth: &v}
		}),
		pp.color("Stroke color", func(l layer.Layer) string { return l.(layer.TextLayer).StrokeColor }, func(v string) layer.Patch {
			return layer.Patch{StrokeColor: &v}
		}),
		pp.check("Shadow", func(l layer.Layer) bool { return l.(layer.TextLayer).Shadow }, func(v bool) layer.Patch {
			return layer.Patch{Shadow: &v}
		}),
		pp.color("Shadow color", func(l layer.Layer) string { return l.(layer.TextLayer).ShadowColor }, func(v string) layer.Patch {
			return layer.Patch{ShadowColor: &v}
		}),
		pp.number("Shadow opacity", func(l layer.Layer) float64 { return l.(layer.TextLayer).ShadowOpacity }, func(v float64) layer.Patch {
			v = colorutil.Clamp(v, 0, 1)
			return layer.Patch{ShadowOpacity: &v}
		}),
		pp.number("Shadow blur", func(l layer.Layer) float64 { return l.(layer.TextLayer).ShadowBlur }, func(v float64) layer.Patch {
			if v < 0 {
				return layer.Patch{}
			}
			return layer.Patch{ShadowBlur: &v}
		}),
		pp.number("Shadow X", func(l layer.Layer) float64 { return l.(layer.TextLayer).ShadowOffsetX }, func(v float64) layer.Patch {
			return layer.Patch{ShadowOffsetX: &v}
		}),
		pp.number("Shadow Y", func(l layer.Layer) float64 { return l.(layer.TextLayer).ShadowOffsetY }, func(v float64) layer.Patch {
			return layer.Patch{ShadowOffsetY: &v}
		}),
	}

	pp.empty = widget.NewLabel("Select a layer to edit its properties.")
	pp.imageForm = widget.NewForm(items(pp.imageFields)...)
	pp.textForm = widget.NewForm(items(pp.textFields)...)

	align := container.NewGridWithColumns(4)
	for _, a := range []layer.Alignment{layer.AlignLeft, layer.AlignCenter, layer.AlignRight, layer.AlignMiddle} {
		a := a
		align.Add(widget.NewButton(a.String(), func() {
			if id := pp.state.Selection(); id != "" {
				pp.state.Align(id, a)
			}
		}))
	}
	pp.common = container.NewVBox(widget.NewForm(items(pp.commonFields)...), align)

	pp.container = container.NewVScroll(container.NewVBox(pp.empty, pp.common, pp.textForm, pp.imageForm))

	state.On(app.EventDocumentChanged, func(interface{}) { pp.Refresh() })
	state.On(app.EventSelectionChanged, func(interface{}) { pp.Refresh() })
	pp.Refresh()
	return pp
}

// Container returns the panel container.
func (pp *PropertiesPanel) Container() fyne.CanvasObject {
	return pp.container
}

// Refresh shows the form for the selected layer and loads its values.
func (pp *PropertiesPanel) Refresh() {
	l, ok := pp.state.SelectedLayer()
	if !ok {
		pp.empty.Show()
		pp.common.Hide()
		pp.textForm.Hide()
		pp.imageForm.Hide()
		return
	}
	pp.empty.Hide()
	pp.common.Show()
	refreshAll(pp.commonFields, l)

	switch l.Kind() {
	case layer.KindText:
		pp.imageForm.Hide()
		refreshAll(pp.textFields, l)
		pp.textForm.Show()
	case layer.KindImage:
		pp.textForm.Hide()
		refreshAll(pp.imageFields, l)
		pp.imageForm.Show()
	}
}

func (pp *PropertiesPanel) position() geometry.Point2D {
	if l, ok := pp.state.SelectedLayer(); ok {
		return l.Common().Position
	}
	return geometry.Point2D{}
}

func (pp *PropertiesPanel) apply(patch layer.Patch) {
	if id := pp.state.Selection(); id != "" {
		pp.state.UpdateLayer(id, patch)
	}
}

func (pp *PropertiesPanel) number(label string, get func(layer.Layer) float64, set func(float64) layer.Patch) field {
	e := widget.NewEntry()
	e.OnChanged = func(s string) {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			pp.apply(set(v))
		}
	}
	return field{
		item: widget.NewFormItem(label, e),
		refresh: func(l layer.Layer) {
			want := get(l)
			if v, err := strconv.ParseFloat(e.Text, 64); err == nil && v == want {
				return
			}
			e.SetText(formatNumber(want))
		},
	}
}

func (pp *PropertiesPanel) text(label string, get func(layer.Layer) string, set func(string) layer.Patch) field {
	e := widget.NewEntry()
	e.OnChanged = func(s string) { pp.apply(set(s)) }
	return field{
		item: widget.NewFormItem(label, e),
		refresh: func(l layer.Layer) {
			if v := get(l); e.Text != v {
				e.SetText(v)
			}
		},
	}
}

// color is a hex entry; values that do not parse are not applied.
func (pp *PropertiesPanel) color(label string, get func(layer.Layer) string, set func(string) layer.Patch) field {
	e := widget.NewEntry()
	e.SetPlaceHolder("#rrggbb")
	e.OnChanged = func(s string) {
		if _, ok := colorutil.Parse(s); ok {
			pp.apply(set(s))
		}
	}
	return field{
		item: widget.NewFormItem(label, e),
		refresh: func(l layer.Layer) {
			if v := get(l); e.Text != v {
				e.SetText(v)
			}
		},
	}
}

func (pp *PropertiesPanel) check(label string, get func(layer.Layer) bool, set func(bool) layer.Patch) field {
	c := widget.NewCheck("", func(v bool) { pp.apply(set(v)) })
	return field{
		item: widget.NewFormItem(label, c),
		refresh: func(l layer.Layer) {
			if v := get(l); c.Checked != v {
				c.SetChecked(v)
			}
		},
	}
}

func (pp *PropertiesPanel) font() field {
	tokens := layer.FontTokens()
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = fontNames[t]
	}
	s := widget.NewSelect(names, func(name string) {
		for _, t := range tokens {
			if fontNames[t] == name {
				pp.apply(layer.Patch{Font: &t})
				return
			}
		}
	})
	return field{
		item: widget.NewFormItem("Font", s),
		refresh: func(l layer.Layer) {
			name, ok := fontNames[l.(layer.TextLayer).Font]
			if !ok {
				name = fontNames[layer.FontBebasNeue]
			}
			if s.Selected != name {
				s.SetSelected(name)
			}
		},
	}
}

func items(fields []field) []*widget.FormItem {
	out := make([]*widget.FormItem, len(fields))
	for i, f := range fields {
		out[i] = f.item
	}
	return out
}

func refreshAll(fields []field, l layer.Layer) {
	for _, f := range fields {
		f.refresh(l)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
