// Package export writes a document to a PNG at full canvas resolution.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"thumb-studio/internal/layer"
	"thumb-studio/internal/metrics"
	"thumb-studio/internal/render"
)

// FilePrefix starts every exported file name.
const FilePrefix = "thumbnail-export-"

// ErrAllLayersFailed is returned when the document had visible layers and
// none of them could be drawn. The PNG is still written.
var ErrAllLayersFailed = errors.New("no layer could be drawn")

// FileName returns the export name for the given time.
func FileName(t time.Time) string {
	return fmt.Sprintf("%s%d.png", FilePrefix, t.UnixMilli())
}

// Result describes a finished export.
type Result struct {
	Path   string
	Report render.Report
}

// Exporter renders documents offscreen and saves them.
type Exporter struct {
	renderer *render.Renderer
	logger   *slog.Logger
	now      func() time.Time

	// Metrics, when set, records every export's render and outcome.
	Metrics *metrics.Metrics
}

// New creates an Exporter.
func New(r *render.Renderer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{renderer: r, logger: logger, now: time.Now}
}

// Export waits for the document's assets, renders it into a fresh
// 1920x1080 surface and writes a timestamped PNG into dir.
func (e *Exporter) Export(ctx context.Context, doc layer.Document, dir string) (res Result, err error) {
	defer func() { e.Metrics.ObserveExport(err) }()

	surface, rep := e.Render(ctx, doc)
	e.Metrics.ObserveRender(metrics.TargetExport, rep)

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Report: rep}, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(e.now()))
	if err := surface.Context().SavePNG(path); err != nil {
		return Result{Report: rep}, fmt.Errorf("write %s: %w", path, err)
	}

	e.logger.Info("exported thumbnail", "path", path, "drawn", rep.Drawn, "skipped", rep.Skipped, "took", rep.Duration)
	res = Result{Path: path, Report: rep}
	if rep.AllFailed() {
		return res, fmt.Errorf("%w: %w", ErrAllLayersFailed, rep.Err())
	}
	return res, nil
}

// Render prefetches assets and draws doc into a new full-size surface.
func (e *Exporter) Render(ctx context.Context, doc layer.Document) (*render.GGSurface, render.Report) {
	e.renderer.Prefetch(ctx, doc)
	surface := render.NewGGSurface(layer.CanvasWidth, layer.CanvasHeight)
	rep := e.renderer.Render(ctx, doc, surface)
	return surface, rep
}
