package transform

import (
	"thumb-studio/internal/layer"
	"thumb-studio/pkg/geometry"
)

// Measurer reports the unscaled content size of a layer: image pixel
// dimensions or the laid-out text box. ok is false while the size is unknown.
type Measurer interface {
	ContentSize(l layer.Layer) (geometry.Size, bool)
}

// HitTest returns the frontmost visible layer whose content box contains the
// canvas point p. Hidden layers are never hit. Locked layers are returned;
// callers decide what a press on them means.
func HitTest(doc layer.Document, p geometry.Point2D, m Measurer) (layer.Layer, bool) {
	for i := len(doc.Layers) - 1; i >= 0; i-- {
		l := doc.Layers[i]
		if !l.Common().Visible {
			continue
		}
		size, ok := m.ContentSize(l)
		if !ok || size.Empty() {
			continue
		}
		local, ok := ToLocal(l, p)
		if !ok {
			continue
		}
		if geometry.CenteredRect(size).Contains(local) {
			return l, true
		}
	}
	return nil, false
}
