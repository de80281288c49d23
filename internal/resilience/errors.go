package resilience

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
)

// UpstreamError is a non-success HTTP answer from a backend.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return e.Service + ": status " + http.StatusText(e.Status)
	}
	return e.Service + ": status " + http.StatusText(e.Status) + ": " + e.Body
}

// ErrEmptyResponse means the backend answered but produced no usable text.
// It does not count against the breaker.
var ErrEmptyResponse = eris.New("resilience: empty response")

// IsBackendFailure reports whether err should count against a breaker.
func IsBackendFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrEmptyResponse)
}
