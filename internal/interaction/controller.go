// Package interaction turns pointer and key input on the preview into layer
// edits: select on press, drag to move, Delete to remove.
package interaction

import (
	"log/slog"

	"thumb-studio/internal/layer"
	"thumb-studio/internal/transform"
	"thumb-studio/pkg/geometry"
)

// Editor is the document the controller edits. app.State implements it.
type Editor interface {
	Document() layer.Document
	UpdateLayer(id string, patch layer.Patch)
	RemoveLayer(id string)
	Select(id string)
	ClearSelection()
	Selection() string
	// RequestEditContext asks the host UI to show the properties of id.
	RequestEditContext(id string)
}

// ViewportFunc returns the viewport as it is right now. It is consulted on
// every event, so a resize in the middle of a drag takes effect immediately.
type ViewportFunc func() transform.Viewport

// Key names handled by KeyDown.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "BackSpace"
)

// dragState is the in-progress drag. It is owned by one Controller and never
// derived from what was last painted.
type dragState struct {
	layerID string
	start   geometry.Point2D // device
	anchor  geometry.Point2D // logical layer position at press
}

// Controller is the Idle/Dragging state machine for a single pointer.
// It is not safe for concurrent use; the owning widget serializes events.
type Controller struct {
	editor   Editor
	viewport ViewportFunc
	measurer transform.Measurer
	logger   *slog.Logger

	drag *dragState
}

// NewController creates a controller in the Idle state.
func NewController(editor Editor, viewport ViewportFunc, measurer transform.Measurer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		editor:   editor,
		viewport: viewport,
		measurer: measurer,
		logger:   logger,
	}
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.drag != nil
}

// Selection returns the selected layer id, or "".
func (c *Controller) Selection() string {
	return c.editor.Selection()
}

// PointerDown handles a press at device point p.
//
// A press on an unlocked layer selects it, asks for its edit context and
// starts a drag. A press on a locked layer does nothing at all. A press on
// empty canvas clears the selection.
func (c *Controller) PointerDown(p geometry.Point2D) {
	vp := c.viewport()
	hit, ok := transform.HitTest(c.editor.Document(), vp.DeviceToCanvas(p), c.measurer)
	if !ok {
		c.drag = nil
		c.editor.ClearSelection()
		return
	}

	b := hit.Common()
	if b.Locked {
		c.logger.Debug("press on locked layer ignored", "layer", b.ID)
		return
	}

	c.editor.Select(b.ID)
	c.editor.RequestEditContext(b.ID)
	c.drag = &dragState{layerID: b.ID, start: p, anchor: b.Position}
}

// PointerMove moves the dragged layer so it follows the pointer. The new
// position is always computed from the press anchor, not accumulated.
func (c *Controller) PointerMove(p geometry.Point2D) {
	if c.drag == nil {
		return
	}
	l, ok := c.editor.Document().Find(c.drag.layerID)
	if !ok || l.Common().Locked {
		// Removed or locked while held.
		c.drag = nil
		return
	}
	delta := transform.DeviceDelta(p.Sub(c.drag.start), c.viewport().Scale())
	c.editor.UpdateLayer(c.drag.layerID, layer.MoveTo(c.drag.anchor.Add(delta)))
}

// PointerUp ends any drag. The selection stays.
func (c *Controller) PointerUp(geometry.Point2D) {
	c.drag = nil
}

// Cancel abandons a drag without touching the layer, e.g. when the pointer
// leaves the window.
func (c *Controller) Cancel() {
	c.drag = nil
}

// KeyDown handles a key press. Delete and Backspace remove the selected
// layer unless a text input has focus. It reports whether the key was used.
func (c *Controller) KeyDown(key string, textFocused bool) bool {
	if textFocused {
		return false
	}
	switch key {
	case KeyDelete, KeyBackspace:
		id := c.editor.Selection()
		if id == "" {
			return false
		}
		if c.drag != nil && c.drag.layerID == id {
			c.drag = nil
		}
		c.editor.RemoveLayer(id)
		c.editor.ClearSelection()
		return true
	}
	return false
}
