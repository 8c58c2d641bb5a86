package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError is a non-2xx answer from the backend. Message is whatever the
// backend put in its error body, possibly empty.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// NetworkError means no usable answer came back: the backend is unreachable or
// sent a body that is not the expected JSON.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Status == http.StatusNotFound
}
