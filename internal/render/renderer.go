package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"thumb-studio/internal/assets"
	"thumb-studio/internal/fonts"
	"thumb-studio/internal/layer"
	"thumb-studio/internal/transform"
	"thumb-studio/pkg/colorutil"
	"thumb-studio/pkg/geometry"
)

// Image layer effect parameters.
const (
	imageShadowOffset  = 10
	imageShadowBlur    = 30
	imageShadowOpacity = 0.8
	glowBlur           = 40
)

// ImageLoader resolves asset URIs to decoded images.
type ImageLoader interface {
	Load(ctx context.Context, uri string) (image.Image, error)
	Cached(uri string) (image.Image, bool)
	Prefetch(ctx context.Context, uris []string)
}

var _ ImageLoader = (*assets.Loader)(nil)

// Renderer composites documents. The zero value is not usable; use New.
type Renderer struct {
	assets      ImageLoader
	fonts       *fonts.Registry
	logger      *slog.Logger
	fontTimeout time.Duration
}

// New creates a Renderer. A nil logger uses slog.Default.
func New(loader ImageLoader, registry *fonts.Registry, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		assets:      loader,
		fonts:       registry,
		logger:      logger,
		fontTimeout: fonts.DefaultReadyTimeout,
	}
}

// SetFontTimeout bounds how long Render waits for custom fonts.
func (r *Renderer) SetFontTimeout(d time.Duration) {
	r.fontTimeout = d
}

// Render draws doc onto s. The document is drawn in logical canvas units; a
// surface of another size gets a uniform stretch to fit.
func (r *Renderer) Render(ctx context.Context, doc layer.Document, s Surface) Report {
	start := time.Now()
	var rep Report

	s.Save()
	defer s.Restore()
	if s.Width() != layer.CanvasWidth || s.Height() != layer.CanvasHeight {
		s.Scale(float64(s.Width())/layer.CanvasWidth, float64(s.Height())/layer.CanvasHeight)
	}

	rep.Background = r.drawBackground(ctx, doc.Background, s)

	fontsReady := true
	if hasVisibleText(doc) {
		fontsReady = r.fonts.Ready(ctx, r.fontTimeout)
		if !fontsReady {
			r.logger.Warn("fonts not ready, rendering with fallback face")
		}
	}

	for i, l := range doc.Layers {
		if !l.Common().Visible {
			rep.Hidden++
			continue
		}
		var err error
		switch v := l.(type) {
		case layer.ImageLayer:
			err = r.drawImageLayer(ctx, v, s)
		case layer.TextLayer:
			if !fontsReady && !r.fonts.Loaded(v.Font) {
				rep.Fallbacks = append(rep.Fallbacks, LayerFailure{
					LayerID: v.ID, Index: i, Reason: ReasonFont,
					Err: fmt.Errorf("font %q not loaded", v.Font),
				})
			}
			err = r.drawTextLayer(v, s)
		}
		if err != nil {
			f := LayerFailure{LayerID: l.Common().ID, Index: i, Reason: ReasonAsset, Err: err}
			if l.Kind() == layer.KindText {
				f.Reason = ReasonFont
			}
			rep.Failures = append(rep.Failures, f)
			rep.Skipped++
			r.logger.Warn("layer skipped", "layer", f.LayerID, "index", i, "reason", f.Reason, "err", err)
			continue
		}
		rep.Drawn++
	}

	rep.Duration = time.Since(start)
	return rep
}

// Prefetch loads every asset doc references in parallel so a following
// Render finds them cached.
func (r *Renderer) Prefetch(ctx context.Context, doc layer.Document) {
	r.assets.Prefetch(ctx, AssetURIs(doc))
}

// AssetURIs lists the distinct asset URIs doc references, in paint order.
func AssetURIs(doc layer.Document) []string {
	var uris []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			uris = append(uris, u)
		}
	}
	if doc.Background.Mode == layer.BackgroundImage {
		add(doc.Background.ImageRef)
	}
	for _, l := range doc.Layers {
		if img, ok := l.(layer.ImageLayer); ok && img.Visible {
			add(img.Source)
		}
	}
	return uris
}

// ContentSize reports the unscaled content box of l: pixel dimensions for
// loaded images, the laid-out line for text.
func (r *Renderer) ContentSize(l layer.Layer) (geometry.Size, bool) {
	switch v := l.(type) {
	case layer.ImageLayer:
		img, ok := r.assets.Cached(v.Source)
		if !ok {
			return geometry.Size{}, false
		}
		b := img.Bounds()
		return geometry.NewSize(float64(b.Dx()), float64(b.Dy())), true
	case layer.TextLayer:
		block, err := LayoutText(r.fonts.Font(v.Font), DisplayText(v.Text), v.FontSize)
		if err != nil {
			return geometry.Size{}, false
		}
		return block.Size, true
	}
	return geometry.Size{}, false
}

var _ transform.Measurer = (*Renderer)(nil)

func (r *Renderer) drawBackground(ctx context.Context, bg layer.Background, s Surface) error {
	full := geometry.NewRect(0, 0, layer.CanvasWidth, layer.CanvasHeight)
	s.FillRect(full, Solid(colorutil.Placeholder))

	switch bg.Mode {
	case layer.BackgroundGradient:
		s.FillRect(full, Paint{Gradient: GradientFor(bg.Gradient)})
	case layer.BackgroundImage:
		if bg.ImageRef == "" {
			return nil
		}
		img, err := r.assets.Load(ctx, bg.ImageRef)
		if err != nil {
			r.logger.Warn("background image failed", "err", err)
			return err
		}
		s.DrawImage(img, CoverRect(img.Bounds()))
	}
	return nil
}

// GradientFor maps a document gradient onto canvas coordinates.
// Unknown directions run top to bottom.
func GradientFor(g layer.Gradient) *LinearGradient {
	const w, h = layer.CanvasWidth, layer.CanvasHeight
	lg := &LinearGradient{
		Start: colorutil.MustParse(g.Start),
		End:   colorutil.MustParse(g.End),
	}
	switch g.Direction {
	case layer.ToRight:
		lg.To = geometry.NewPoint2D(w, 0)
	case layer.ToBottomRight:
		lg.To = geometry.NewPoint2D(w, h)
	case layer.ToTopRight:
		lg.From = geometry.NewPoint2D(0, h)
		lg.To = geometry.NewPoint2D(w, 0)
	default:
		lg.To = geometry.NewPoint2D(0, h)
	}
	return lg
}

// CoverRect scales an image of the given bounds uniformly so it covers the
// whole canvas, centered. Edges may be cropped; there is never letterboxing.
func CoverRect(b image.Rectangle) geometry.Rect {
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return geometry.Rect{}
	}
	scale := math.Max(layer.CanvasWidth/iw, layer.CanvasHeight/ih)
	w, h := iw*scale, ih*scale
	return geometry.NewRect((layer.CanvasWidth-w)/2, (layer.CanvasHeight-h)/2, w, h)
}

func (r *Renderer) drawImageLayer(ctx context.Context, l layer.ImageLayer, s Surface) error {
	img, err := r.assets.Load(ctx, l.Source)
	if err != nil {
		return err
	}

	s.Save()
	defer s.Restore()
	s.Translate(l.Position.X, l.Position.Y)
	s.Scale(l.Scale, l.Scale)
	s.Rotate(transform.Radians(l.Rotation))

	if sh, ok := ImageEffect(l); ok {
		s.SetShadow(sh)
	}
	b := img.Bounds()
	s.DrawImage(img, geometry.CenteredRect(geometry.NewSize(float64(b.Dx()), float64(b.Dy()))))
	return nil
}

// ImageEffect returns the shadow an image layer draws with. Glow and drop
// shadow share the one shadow slot; when both are on, glow takes the color
// and blur but keeps the drop shadow's offset.
func ImageEffect(l layer.ImageLayer) (Shadow, bool) {
	switch {
	case l.Glow:
		sh := Shadow{Color: colorutil.WithAlpha(l.GlowColor, 1), Blur: glowBlur}
		if l.Shadow {
			sh.OffsetX, sh.OffsetY = imageShadowOffset, imageShadowOffset
		}
		return sh, true
	case l.Shadow:
		return Shadow{
			Color:   colorutil.WithAlpha("#000000", imageShadowOpacity),
			Blur:    imageShadowBlur,
			OffsetX: imageShadowOffset,
			OffsetY: imageShadowOffset,
		}, true
	}
	return Shadow{}, false
}

func (r *Renderer) drawTextLayer(l layer.TextLayer, s Surface) error {
	block, err := LayoutText(r.fonts.Font(l.Font), DisplayText(l.Text), l.FontSize)
	if err != nil {
		return err
	}

	s.Save()
	defer s.Restore()
	s.Translate(l.Position.X, l.Position.Y)
	s.Shear(math.Tan(transform.Radians(l.SkewX)), 0)
	s.Rotate(transform.Radians(l.Rotation))

	if l.Shadow {
		s.SetShadow(Shadow{
			Color:   colorutil.WithAlpha(l.ShadowColor, l.ShadowOpacity),
			Blur:    l.ShadowBlur,
			OffsetX: l.ShadowOffsetX,
			OffsetY: l.ShadowOffsetY,
		})
	}
	// Stroke under fill so the outline sits outside the glyphs.
	if l.StrokeWidth > 0 {
		s.StrokePath(block.Path, Stroke{
			Color: colorutil.MustParse(l.StrokeColor),
			Width: 2 * l.StrokeWidth,
			Join:  JoinRound,
		})
	}
	s.FillPath(block.Path, colorutil.MustParse(l.Color))
	return nil
}

func hasVisibleText(doc layer.Document) bool {
	for _, l := range doc.Layers {
		if l.Kind() == layer.KindText && l.Common().Visible {
			return true
		}
	}
	return false
}
