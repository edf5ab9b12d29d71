// Package canvas provides the live thumbnail preview with pointer editing.
package canvas

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"thumb-studio/internal/app"
	"thumb-studio/internal/interaction"
	"thumb-studio/internal/layer"
	"thumb-studio/internal/metrics"
	"thumb-studio/internal/render"
	"thumb-studio/internal/transform"
	"thumb-studio/pkg/colorutil"
	"thumb-studio/pkg/geometry"
)

// backdrop fills the viewport around the canvas.
var backdrop = color.RGBA{R: 0x1f, G: 0x1f, B: 0x23, A: 0xff}

// Preview shows the document scaled to fit its widget and turns pointer
// input into layer edits.
//
// The document is rendered at full canvas resolution with the same Renderer
// the exporter uses, then scaled into the viewport. Rendering happens on a
// background goroutine; bursts of changes coalesce into one render.
type Preview struct {
	widget.BaseWidget

	state      *app.State
	renderer   *render.Renderer
	controller *interaction.Controller
	metrics    *metrics.Metrics
	logger     *slog.Logger
	padding    float64

	raster  *fynecanvas.Raster
	pending chan struct{}

	mu         sync.Mutex
	frame      *image.RGBA
	lastReport render.Report

	onReport func(render.Report)
}

var (
	_ desktop.Mouseable = (*Preview)(nil)
	_ fyne.Draggable    = (*Preview)(nil)
)

// NewPreview creates the preview for state. Call Start to begin rendering.
func NewPreview(state *app.State, r *render.Renderer, m *metrics.Metrics, padding float64, logger *slog.Logger) *Preview {
	if logger == nil {
		logger = slog.Default()
	}
	if padding <= 0 {
		padding = transform.DefaultPadding
	}
	p := &Preview{
		state:    state,
		renderer: r,
		metrics:  m,
		logger:   logger,
		padding:  padding,
		pending:  make(chan struct{}, 1),
	}
	p.controller = interaction.NewController(state, p.viewport, r, logger)
	p.raster = fynecanvas.NewRaster(p.draw)
	p.raster.ScaleMode = fynecanvas.ImageScaleSmooth

	state.On(app.EventDocumentChanged, func(interface{}) { p.Invalidate() })
	state.On(app.EventSelectionChanged, func(interface{}) { p.raster.Refresh() })

	p.ExtendBaseWidget(p)
	return p
}

// Controller returns the pointer/key controller, for window-level key
// handling.
func (p *Preview) Controller() *interaction.Controller {
	return p.controller
}

// OnReport sets a callback invoked after each preview render.
func (p *Preview) OnReport(fn func(render.Report)) {
	p.onReport = fn
}

// Start runs the render loop until ctx is done and queues a first render.
func (p *Preview) Start(ctx context.Context) {
	go p.loop(ctx)
	p.Invalidate()
}

// Invalidate schedules a re-render of the current document.
func (p *Preview) Invalidate() {
	select {
	case p.pending <- struct{}{}:
	default:
	}
}

func (p *Preview) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.pending:
		}
		p.renderOnce(ctx)
	}
}

func (p *Preview) renderOnce(ctx context.Context) {
	doc := p.state.Snapshot()
	p.renderer.Prefetch(ctx, doc)

	surface := render.NewGGSurface(layer.CanvasWidth, layer.CanvasHeight)
	rep := p.renderer.Render(ctx, doc, surface)
	p.metrics.ObserveRender(metrics.TargetPreview, rep)

	frame, _ := surface.Image().(*image.RGBA)
	p.mu.Lock()
	p.frame = frame
	p.lastReport = rep
	p.mu.Unlock()

	p.raster.Refresh()
	if p.onReport != nil {
		p.onReport(rep)
	}
}

// LastReport returns the report of the most recent preview render.
func (p *Preview) LastReport() render.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReport
}

// viewport is the widget-space viewport, re-read on every pointer event.
func (p *Preview) viewport() transform.Viewport {
	s := p.Size()
	return transform.Viewport{Width: float64(s.Width), Height: float64(s.Height), Padding: p.padding}
}

// draw paints the last frame into a w×h pixel buffer with the selection
// outline on top.
func (p *Preview) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(backdrop), image.Point{}, xdraw.Src)
	if w == 0 || h == 0 {
		return out
	}

	// Raster pixels may be denser than widget units.
	density := 1.0
	if s := p.Size(); s.Width > 0 {
		density = float64(w) / float64(s.Width)
	}
	vp := transform.Viewport{Width: float64(w), Height: float64(h), Padding: p.padding * density}
	r := vp.CanvasRect()
	dst := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))

	p.mu.Lock()
	frame := p.frame
	p.mu.Unlock()
	if frame != nil {
		xdraw.ApproxBiLinear.Scale(out, dst, frame, frame.Bounds(), xdraw.Src, nil)
	} else {
		xdraw.Draw(out, dst, image.NewUniform(colorutil.Placeholder), image.Point{}, xdraw.Src)
	}

	p.drawSelection(out, vp)
	return out
}

func (p *Preview) drawSelection(out *image.RGBA, vp transform.Viewport) {
	sel, ok := p.state.SelectedLayer()
	if !ok || !sel.Common().Visible {
		return
	}
	size, ok := p.renderer.ContentSize(sel)
	if !ok {
		return
	}
	corners := transform.Outline(sel, size)

	dc := gg.NewContextForRGBA(out)
	dc.SetColor(colorutil.Selection)
	dc.SetLineWidth(2)
	dc.SetDash(6, 4)
	for i, c := range corners {
		d := vp.CanvasToDevice(c)
		if i == 0 {
			dc.MoveTo(d.X, d.Y)
		} else {
			dc.LineTo(d.X, d.Y)
		}
	}
	dc.ClosePath()
	dc.Stroke()
}

func (p *Preview) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	p.controller.PointerDown(toPoint(ev.Position))
}

func (p *Preview) MouseUp(ev *desktop.MouseEvent) {
	p.controller.PointerUp(toPoint(ev.Position))
}

func (p *Preview) Dragged(ev *fyne.DragEvent) {
	p.controller.PointerMove(toPoint(ev.Position))
}

func (p *Preview) DragEnd() {
	p.controller.PointerUp(geometry.Point2D{})
}

func (p *Preview) MinSize() fyne.Size {
	return fyne.NewSize(480, 270)
}

// CreateRenderer implements fyne.Widget.
func (p *Preview) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.raster)
}

func toPoint(pos fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}
}
