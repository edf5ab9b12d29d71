package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thumb-studio/internal/render"
)

func TestObserveRender(t *testing.T) {
	m := New()
	m.ObserveRender(TargetExport, render.Report{
		Duration: 20 * time.Millisecond,
		Failures: []render.LayerFailure{
			{Reason: render.ReasonAsset},
			{Reason: render.ReasonAsset},
		},
		Fallbacks: []render.LayerFailure{{Reason: render.ReasonFont}},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.layerSkipped.WithLabelValues(render.ReasonAsset)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.layerSkipped.WithLabelValues("font_fallback")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.renderDuration))
}

func TestObserveExportAndAsset(t *testing.T) {
	m := New()
	m.ObserveExport(nil)
	m.ObserveExport(errors.New("disk full"))
	m.ObserveExport(nil)
	m.ObserveAsset("a.png", time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.exports.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("error")))
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExport(nil)
		m.ObserveAsset("x", 0, nil)
		m.ObserveRender(TargetPreview, render.Report{})
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveExport(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `thumb_exports_total{result="ok"} 1`)
}
