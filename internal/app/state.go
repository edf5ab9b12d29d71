// Package app holds the editing session: the document, the selection and the
// events the UI listens to. Every document mutation goes through State.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"thumb-studio/internal/layer"
	"thumb-studio/internal/project"
)

// EventType identifies different application events.
type EventType int

const (
	// EventDocumentChanged carries the new layer.Document.
	EventDocumentChanged EventType = iota
	// EventSelectionChanged carries the selected id ("" for none).
	EventSelectionChanged
	// EventEditContextRequested carries the id whose properties should show.
	EventEditContextRequested
	EventProjectLoaded
	EventProjectSaved
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the document, selection and project bookkeeping.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool

	doc      layer.Document
	selected string

	logger *slog.Logger
	newID  func() string

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewState creates a session holding the default starting document.
func NewState(logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
		listeners: make(map[EventType][]EventListener),
	}
	s.doc = layer.NewDocument(s.newID())
	return s
}

// NewID returns a fresh layer id.
func (s *State) NewID() string {
	return s.newID()
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// Document returns the current document. Its layer slice must not be
// modified; use Snapshot for a copy the caller owns.
func (s *State) Document() layer.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Snapshot returns a deep copy of the document.
func (s *State) Snapshot() layer.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// SetDocument replaces the whole document and drops the selection.
func (s *State) SetDocument(doc layer.Document) {
	s.mu.Lock()
	s.doc = doc
	hadSelection := s.selected != ""
	s.selected = ""
	s.mu.Unlock()

	s.Emit(EventDocumentChanged, doc)
	if hadSelection {
		s.Emit(EventSelectionChanged, "")
	}
	s.SetModified(true)
}

// mutate applies fn to the document and emits a change if it produced a
// different document.
func (s *State) mutate(fn func(layer.Document) layer.Document) bool {
	s.mu.Lock()
	before := s.doc
	after := fn(before)
	changed := !sameDocument(before, after)
	if changed {
		s.doc = after
	}
	s.mu.Unlock()

	if changed {
		s.Emit(EventDocumentChanged, after)
		s.SetModified(true)
	}
	return changed
}

// sameDocument reports whether two documents are value-equal. Layer structs
// hold only comparable fields.
func sameDocument(a, b layer.Document) bool {
	if a.Background != b.Background || len(a.Layers) != len(b.Layers) {
		return false
	}
	for i := range a.Layers {
		if a.Layers[i] != b.Layers[i] {
			return false
		}
	}
	return true
}

// AddLayer appends l at the front of the stack.
func (s *State) AddLayer(l layer.Layer) {
	s.mutate(func(d layer.Document) layer.Document { return layer.AddLayer(d, l) })
}

// UpdateLayer merges patch into the layer with the given id.
func (s *State) UpdateLayer(id string, patch layer.Patch) {
	s.mutate(func(d layer.Document) layer.Document { return layer.UpdateLayer(d, id, patch) })
}

// RemoveLayer deletes the layer and drops it from the selection.
func (s *State) RemoveLayer(id string) {
	if !s.mutate(func(d layer.Document) layer.Document { return layer.RemoveLayer(d, id) }) {
		return
	}
	if s.Selection() == id {
		s.ClearSelection()
	}
}

// Reorder moves a layer one step toward the front or back.
func (s *State) Reorder(id string, dir layer.ReorderDirection) {
	s.mutate(func(d layer.Document) layer.Document { return layer.Reorder(d, id, dir) })
}

// Duplicate copies a layer to the front of the stack and selects the copy.
func (s *State) Duplicate(id string) (string, bool) {
	var copyID string
	var ok bool
	newID := s.newID()
	s.mutate(func(d layer.Document) layer.Document {
		var out layer.Document
		out, copyID, ok = layer.Duplicate(d, id, newID)
		return out
	})
	if ok {
		s.Select(copyID)
	}
	return copyID, ok
}

// ToggleVisible flips a layer's visibility.
func (s *State) ToggleVisible(id string) {
	s.mutate(func(d layer.Document) layer.Document { return layer.ToggleVisible(d, id) })
}

// ToggleLocked flips a layer's lock.
func (s *State) ToggleLocked(id string) {
	s.mutate(func(d layer.Document) layer.Document { return layer.ToggleLocked(d, id) })
}

// Align moves a layer to one of the alignment presets.
func (s *State) Align(id string, a layer.Alignment) {
	l, ok := s.Document().Find(id)
	if !ok {
		return
	}
	s.UpdateLayer(id, layer.MoveTo(layer.Aligned(l.Common().Position, a)))
}

// SetBackgroundImage sets the background image and switches to image mode.
func (s *State) SetBackgroundImage(ref string) {
	s.mutate(func(d layer.Document) layer.Document { return layer.WithBackgroundImage(d, ref) })
}

// SetGradient sets the background gradient and switches to gradient mode.
func (s *State) SetGradient(g layer.Gradient) {
	s.mutate(func(d layer.Document) layer.Document { return layer.WithGradient(d, g) })
}

// SetBackgroundMode switches between image and gradient backgrounds.
func (s *State) SetBackgroundMode(mode layer.BackgroundMode) {
	s.mutate(func(d layer.Document) layer.Document { return layer.WithBackgroundMode(d, mode) })
}

// Select makes id the only selected layer. Unknown ids are ignored.
func (s *State) Select(id string) {
	s.mu.Lock()
	if s.doc.IndexOf(id) < 0 || s.selected == id {
		s.mu.Unlock()
		return
	}
	s.selected = id
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, id)
}

// ClearSelection deselects everything.
func (s *State) ClearSelection() {
	s.mu.Lock()
	if s.selected == "" {
		s.mu.Unlock()
		return
	}
	s.selected = ""
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, "")
}

// Selection returns the selected layer id, or "".
func (s *State) Selection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectedLayer returns the selected layer, if any.
func (s *State) SelectedLayer() (layer.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return nil, false
	}
	return s.doc.Find(s.selected)
}

// RequestEditContext asks the UI to show the properties of id.
func (s *State) RequestEditContext(id string) {
	s.Emit(EventEditContextRequested, id)
}

// LoadProject loads a project from the specified path.
func (s *State) LoadProject(path string) error {
	f, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = f.Document
	s.selected = ""
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.logger.Info("project loaded", "path", path, "layers", f.Document.Len())
	s.Emit(EventDocumentChanged, f.Document)
	s.Emit(EventSelectionChanged, "")
	s.Emit(EventProjectLoaded, path)
	return nil
}

// SaveProject saves the project to the specified path.
func (s *State) SaveProject(path string) error {
	f := project.New(s.Snapshot())
	if err := f.Save(path); err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.logger.Info("project saved", "path", path)
	s.Emit(EventProjectSaved, path)
	s.Emit(EventModified, false)
	return nil
}

// HasProject returns true if a project is loaded.
func (s *State) HasProject() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ProjectPath != ""
}
