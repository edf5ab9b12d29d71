// Package metrics exposes render and export counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thumb-studio/internal/render"
)

// Render targets.
const (
	TargetPreview = "preview"
	TargetExport  = "export"
)

// Metrics holds the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	renderDuration *prometheus.HistogramVec
	layerSkipped   *prometheus.CounterVec
	assetLoad      *prometheus.HistogramVec
	exports        *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thumb_render_duration_seconds",
				Help:    "Duration of document renders",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target"},
		),
		layerSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thumb_layer_skipped_total",
				Help: "Layers that could not be drawn as authored",
			},
			[]string{"reason"},
		),
		assetLoad: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thumb_asset_load_duration_seconds",
				Help:    "Duration of asset fetch and decode",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thumb_exports_total",
				Help: "Total number of PNG exports",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(m.renderDuration, m.layerSkipped, m.assetLoad, m.exports)
	return m
}

// ObserveRender records one render report.
func (m *Metrics) ObserveRender(target string, rep render.Report) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(target).Observe(rep.Duration.Seconds())
	for _, f := range rep.Failures {
		m.layerSkipped.WithLabelValues(f.Reason).Inc()
	}
	for range rep.Fallbacks {
		m.layerSkipped.WithLabelValues("font_fallback").Inc()
	}
}

// ObserveAsset records one asset load. It matches assets.Observer.
func (m *Metrics) ObserveAsset(_ string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.assetLoad.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveExport records a finished export.
func (m *Metrics) ObserveExport(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exports.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
