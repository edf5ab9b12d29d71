package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"thumb-studio/internal/app"
	"thumb-studio/internal/layer"
	"thumb-studio/pkg/colorutil"
)

const (
	modeImage    = "Image"
	modeGradient = "Gradient"
)

// BackgroundPanel switches the background mode and edits the gradient.
type BackgroundPanel struct {
	state     *app.State
	container fyne.CanvasObject

	mode      *widget.RadioGroup
	direction *widget.Select
	start     *widget.Entry
	end       *widget.Entry
	imageInfo *widget.Label

	// OnChooseImage is called by the "Choose Image..." button.
	OnChooseImage func()
}

// NewBackgroundPanel creates a new background panel.
func NewBackgroundPanel(state *app.State) *BackgroundPanel {
	bp := &BackgroundPanel{state: state}

	bp.mode = widget.NewRadioGroup([]string{modeImage, modeGradient}, func(s string) {
		switch s {
		case modeImage:
			bp.state.SetBackgroundMode(layer.BackgroundImage)
		case modeGradient:
			bp.state.SetBackgroundMode(layer.BackgroundGradient)
		}
	})
	bp.mode.Horizontal = true
	bp.mode.Required = true

	bp.imageInfo = widget.NewLabel("")
	chooseBtn := widget.NewButton("Choose Image...", func() {
		if bp.OnChooseImage != nil {
			bp.OnChooseImage()
		}
	})

	dirs := layer.Directions()
	dirNames := make([]string, len(dirs))
	for i, d := range dirs {
		dirNames[i] = string(d)
	}
	bp.direction = widget.NewSelect(dirNames, func(s string) {
		g := bp.state.Document().Background.Gradient
		g.Direction = layer.Direction(s)
		bp.state.SetGradient(g)
	})

	bp.start = bp.stopEntry(func(g *layer.Gradient, v string) { g.Start = v })
	bp.end = bp.stopEntry(func(g *layer.Gradient, v string) { g.End = v })

	presets := container.NewGridWithColumns(2)
	for _, p := range layer.GradientPresets {
		p := p
		presets.Add(widget.NewButton(p.Name, func() { bp.ApplyPreset(p) }))
	}

	bp.container = container.NewVBox(
		widget.NewCard("Mode", "", bp.mode),
		widget.NewCard("Image", "", container.NewVBox(bp.imageInfo, chooseBtn)),
		widget.NewCard("Gradient", "", container.NewVBox(
			widget.NewForm(
				widget.NewFormItem("Direction", bp.direction),
				widget.NewFormItem("Start", bp.start),
				widget.NewFormItem("End", bp.end),
			),
			widget.NewLabel("Presets:"),
			presets,
		)),
	)

	state.On(app.EventDocumentChanged, func(interface{}) { bp.Refresh() })
	bp.Refresh()
	return bp
}

// Container returns the panel container.
func (bp *BackgroundPanel) Container() fyne.CanvasObject {
	return bp.container
}

// ApplyPreset switches to gradient mode with the preset's colors, keeping the
// current direction.
func (bp *BackgroundPanel) ApplyPreset(p layer.GradientPreset) {
	dir := bp.state.Document().Background.Gradient.Direction
	if dir == "" {
		dir = layer.ToBottom
	}
	bp.state.SetGradient(p.Gradient(dir))
	bp.state.SetBackgroundMode(layer.BackgroundGradient)
}

// Refresh loads the background values into the widgets.
func (bp *BackgroundPanel) Refresh() {
	bg := bp.state.Document().Background
	mode := modeImage
	if bg.Mode == layer.BackgroundGradient {
		mode = modeGradient
	}
	if bp.mode.Selected != mode {
		bp.mode.SetSelected(mode)
	}
	if bp.direction.Selected != string(bg.Gradient.Direction) {
		bp.direction.SetSelected(string(bg.Gradient.Direction))
	}
	if bp.start.Text != bg.Gradient.Start {
		bp.start.SetText(bg.Gradient.Start)
	}
	if bp.end.Text != bg.Gradient.End {
		bp.end.SetText(bg.Gradient.End)
	}
	if bg.ImageRef == "" {
		bp.imageInfo.SetText("No background image")
	} else {
		bp.imageInfo.SetText(truncate(bg.ImageRef, 40))
	}
}

func (bp *BackgroundPanel) stopEntry(set func(*layer.Gradient, string)) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder("#rrggbb")
	e.OnChanged = func(s string) {
		if _, ok := colorutil.Parse(s); !ok {
			return
		}
		g := bp.state.Document().Background.Gradient
		set(&g, s)
		bp.state.SetGradient(g)
	}
	return e
}
