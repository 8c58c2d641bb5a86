package formdata

import (
	"errors"
	"fmt"
)

var (
	ErrNotMultipart  = errors.New("request body is not multipart/form-data")
	ErrBodyTooLarge  = errors.New("request body exceeds the upload limit")
	ErrMalformedBody = errors.New("malformed multipart body")
	ErrTooManyFiles  = errors.New("too many files in request")
)

// DecodeError is returned for every structural failure of Decode. Kind is one
// of the sentinel errors above, Err the underlying cause if there is one.
type DecodeError struct {
	Kind error
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *DecodeError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newDecodeError(kind, err error) *DecodeError {
	return &DecodeError{Kind: kind, Err: err}
}
