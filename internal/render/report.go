package render

import (
	"errors"
	"fmt"
	"time"
)

// Failure reasons recorded in a Report.
const (
	ReasonAsset = "asset"
	ReasonFont  = "font"
)

// LayerFailure records a layer that could not be drawn as authored.
type LayerFailure struct {
	LayerID string
	Index   int
	Reason  string
	Err     error
}

func (f LayerFailure) Error() string {
	return fmt.Sprintf("layer %d (%s): %s: %v", f.Index, f.LayerID, f.Reason, f.Err)
}

func (f LayerFailure) Unwrap() error { return f.Err }

// Report summarizes one Render call. Failures never abort a render: a layer
// whose asset could not load is skipped, and text whose font was not ready
// is drawn with the fallback face and listed under Fallbacks.
type Report struct {
	Drawn      int
	Skipped    int
	Hidden     int
	Failures   []LayerFailure
	Fallbacks  []LayerFailure
	Background error
	Duration   time.Duration
}

// AllFailed reports whether there were visible layers and none of them drew.
func (r Report) AllFailed() bool {
	return r.Drawn == 0 && r.Skipped > 0
}

// OK reports whether everything visible was drawn as authored.
func (r Report) OK() bool {
	return len(r.Failures) == 0 && len(r.Fallbacks) == 0 && r.Background == nil
}

// Err joins every layer and background failure, or returns nil.
func (r Report) Err() error {
	var errs []error
	if r.Background != nil {
		errs = append(errs, fmt.Errorf("background: %w", r.Background))
	}
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
