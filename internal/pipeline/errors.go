package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyResult is returned when a whole document produced no polylines and
// no text. The source is usually blank or was masked out completely.
var ErrEmptyResult = errors.New("conversion produced no polylines and no text")

// Kind classifies a page-scoped problem.
type Kind int

const (
	// RenderFailure means the page could not be rasterized; the page is skipped.
	RenderFailure Kind = iota + 1
	// DetectionFailure means the text detector failed; the page is traced
	// without masking.
	DetectionFailure
	// DegradedCapability means skeletonization is disabled and the binary
	// mask was traced as is.
	DegradedCapability
)

func (k Kind) String() string {
	switch k {
	case RenderFailure:
		return "render_failure"
	case DetectionFailure:
		return "detection_failure"
	case DegradedCapability:
		return "degraded_capability"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// PageError is a problem confined to one page.
type PageError struct {
	// Page is one-based.
	Page int
	Kind Kind
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Kind, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Fatal reports whether the page produced no output because of this error.
func (e *PageError) Fatal() bool { return e.Kind == RenderFailure }

// errDegraded is attached to pages traced without skeletonization.
var errDegraded = errors.New("skeletonization disabled; tracing unthinned mask")
