package source

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a fetch failed
type FetchErrorKind string

const (
	// Transient marks network/HTTP failures; the next trigger gets a fresh chance
	Transient FetchErrorKind = "transient"
	// RendererFailed marks a non-zero exit from the external renderer
	RendererFailed FetchErrorKind = "renderer_failed"
)

// FetchError reports a failed fetch. It aborts the pipeline run; fetches are
// never retried within a run.
type FetchError struct {
	Kind     FetchErrorKind
	SourceID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.SourceID, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a transient fetch failure
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == Transient
}

// IsRendererFailed reports whether err is a renderer failure
func IsRendererFailed(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == RendererFailed
}
