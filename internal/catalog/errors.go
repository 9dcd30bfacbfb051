package catalog

import (
	"errors"
	"fmt"

	"streamlist/internal/services"
)

// UpstreamError reports a failed call to a third-party catalog. It matches
// services.ErrUpstream under errors.Is.
type UpstreamError struct {
	Catalog    string
	Op         string
	StatusCode int
	Err        error

	retryable bool
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Catalog, e.Op)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s returned %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrUpstream}
	}
	return []error{services.ErrUpstream, e.Err}
}

// Retryable reports whether another attempt could succeed (network failure,
// 429, or 5xx).
func (e *UpstreamError) Retryable() bool { return e.retryable }

// IsUpstream reports whether err came from a catalog call.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func statusRetryable(code int) bool {
	return code == 429 || code >= 500
}
