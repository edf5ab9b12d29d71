package panels

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/anthonynsimon/bild/transform"

	"thumb-studio/internal/app"
	"thumb-studio/internal/layer"
)

const (
	thumbWidth  = 48
	thumbHeight = 27
)

// ImageCache returns already decoded images without blocking.
type ImageCache interface {
	Cached(uri string) (image.Image, bool)
}

// LayersPanel lists the layer stack front-most first and offers the per-layer
// commands: visibility, lock, reorder, duplicate and delete.
type LayersPanel struct {
	state     *app.State
	cache     ImageCache
	container fyne.CanvasObject

	list   *widget.List
	layers []layer.Layer // front-most first

	visibleBtn   *widget.Button
	lockBtn      *widget.Button
	forwardBtn   *widget.Button
	backwardBtn  *widget.Button
	duplicateBtn *widget.Button
	deleteBtn    *widget.Button

	mu      sync.Mutex
	thumbs  map[string]image.Image
	waiting bool // a row is showing an undecoded source
}

// NewLayersPanel creates a new layers panel.
func NewLayersPanel(state *app.State, cache ImageCache) *LayersPanel {
	lp := &LayersPanel{
		state:  state,
		cache:  cache,
		thumbs: make(map[string]image.Image),
	}

	lp.list = widget.NewList(
		func() int { return len(lp.layers) },
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(thumbWidth, thumbHeight))
			return container.NewHBox(thumb, widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(lp.layers) {
				return
			}
			l := lp.layers[id]
			row := obj.(*fyne.Container)
			thumb := row.Objects[0].(*fynecanvas.Image)
			thumb.Image = lp.thumbnail(l)
			thumb.Refresh()
			row.Objects[1].(*widget.Label).SetText(layerLabel(l))
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		if id >= 0 && id < len(lp.layers) {
			lp.state.Select(lp.layers[id].Common().ID)
		}
	}

	lp.visibleBtn = widget.NewButtonWithIcon("", theme.VisibilityIcon(), func() {
		lp.withSelection(lp.state.ToggleVisible)
	})
	lp.lockBtn = widget.NewButton("Lock", func() {
		lp.withSelection(lp.state.ToggleLocked)
	})
	lp.forwardBtn = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {
		lp.withSelection(func(id string) { lp.state.Reorder(id, layer.Forward) })
	})
	lp.backwardBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {
		lp.withSelection(func(id string) { lp.state.Reorder(id, layer.Backward) })
	})
	lp.duplicateBtn = widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		lp.withSelection(func(id string) { lp.state.Duplicate(id) })
	})
	lp.deleteBtn = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		lp.withSelection(lp.state.RemoveLayer)
	})

	actions := container.NewHBox(
		lp.visibleBtn, lp.lockBtn, lp.forwardBtn, lp.backwardBtn, lp.duplicateBtn, lp.deleteBtn,
	)
	lp.container = container.NewBorder(nil, actions, nil, nil, lp.list)

	state.On(app.EventDocumentChanged, func(interface{}) { lp.Sync() })
	state.On(app.EventSelectionChanged, func(interface{}) { lp.syncSelection() })
	lp.Sync()
	return lp
}

// Container returns the panel container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.container
}

// Sync reloads the rows from the current document.
func (lp *LayersPanel) Sync() {
	doc := lp.state.Document()
	lp.layers = lp.layers[:0]
	sources := make(map[string]bool)
	for i := len(doc.Layers) - 1; i >= 0; i-- {
		lp.layers = append(lp.layers, doc.Layers[i])
		if il, ok := doc.Layers[i].(layer.ImageLayer); ok {
			sources[il.Source] = true
		}
	}

	lp.mu.Lock()
	for src := range lp.thumbs {
		if !sources[src] {
			delete(lp.thumbs, src)
		}
	}
	lp.waiting = false
	lp.mu.Unlock()

	lp.list.Refresh()
	lp.syncSelection()
}

// RefreshThumbnails redraws the rows if any of them is still waiting for its
// image to decode.
func (lp *LayersPanel) RefreshThumbnails() {
	lp.mu.Lock()
	waiting := lp.waiting
	lp.waiting = false
	lp.mu.Unlock()
	if waiting {
		lp.list.Refresh()
	}
}

func (lp *LayersPanel) syncSelection() {
	sel := lp.state.Selection()
	row := -1
	for i, l := range lp.layers {
		if l.Common().ID == sel {
			row = i
			break
		}
	}
	if row < 0 {
		lp.list.UnselectAll()
	} else {
		lp.list.Select(row)
	}
	lp.updateActions()
}

func (lp *LayersPanel) updateActions() {
	buttons := []*widget.Button{lp.visibleBtn, lp.lockBtn, lp.forwardBtn, lp.backwardBtn, lp.duplicateBtn, lp.deleteBtn}
	l, ok := lp.state.SelectedLayer()
	for _, b := range buttons {
		if ok {
			b.Enable()
		} else {
			b.Disable()
		}
	}
	if !ok {
		return
	}
	if l.Common().Visible {
		lp.visibleBtn.SetIcon(theme.VisibilityIcon())
	} else {
		lp.visibleBtn.SetIcon(theme.VisibilityOffIcon())
	}
	if l.Common().Locked {
		lp.lockBtn.SetText("Unlock")
	} else {
		lp.lockBtn.SetText("Lock")
	}
}

func (lp *LayersPanel) withSelection(fn func(id string)) {
	if id := lp.state.Selection(); id != "" {
		fn(id)
	}
}

// thumbnail returns a small preview of an image layer's source, or nil when
// the source is not decoded yet.
func (lp *LayersPanel) thumbnail(l layer.Layer) image.Image {
	il, ok := l.(layer.ImageLayer)
	if !ok || lp.cache == nil {
		return nil
	}
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if t, ok := lp.thumbs[il.Source]; ok {
		return t
	}
	img, ok := lp.cache.Cached(il.Source)
	if !ok {
		lp.waiting = true
		return nil
	}
	t := Thumbnail(img, thumbWidth, thumbHeight)
	lp.thumbs[il.Source] = t
	return t
}

// Thumbnail scales img to fit within w×h, keeping its aspect ratio.
func Thumbnail(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	scale := float64(w) / float64(b.Dx())
	if s := float64(h) / float64(b.Dy()); s < scale {
		scale = s
	}
	tw := max(1, int(float64(b.Dx())*scale+0.5))
	th := max(1, int(float64(b.Dy())*scale+0.5))
	return transform.Resize(img, tw, th, transform.Linear)
}

// layerLabel is the list text for a layer.
func layerLabel(l layer.Layer) string {
	var name string
	switch v := l.(type) {
	case layer.TextLayer:
		name = fmt.Sprintf("T  %s", truncate(strings.TrimSpace(v.Text), 24))
	case layer.ImageLayer:
		name = "Image"
		if v.IsProduct {
			name = "Product"
		}
	}
	var flags []string
	if !l.Common().Visible {
		flags = append(flags, "hidden")
	}
	if l.Common().Locked {
		flags = append(flags, "locked")
	}
	if len(flags) > 0 {
		name += " (" + strings.Join(flags, ", ") + ")"
	}
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
