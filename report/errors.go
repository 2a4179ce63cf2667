package report

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFeatures means the collection is empty after filtering.
	ErrNoFeatures = errors.New("no features to report")
	// ErrBackendUnavailable means the page renderer cannot be built.
	ErrBackendUnavailable = errors.New("render backend unavailable")
	// ErrBusy means a generation run is already in progress.
	ErrBusy = errors.New("a report is already being generated")
)

// SetupError aborts a run before any page is produced.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return fmt.Sprintf("report setup: %v", e.Err) }

func (e *SetupError) Unwrap() error { return e.Err }

// CaptureError aborts a run when a page cannot be captured. A missing
// page would corrupt the document structure, so unlike per-image
// failures it is never degraded.
type CaptureError struct {
	Stage Stage
	Page  int
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture page %d (%s): %v", e.Page, e.Stage, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
