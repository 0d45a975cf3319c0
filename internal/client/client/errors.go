package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountConflict    = errors.New("account already exists")
	ErrNotFound           = errors.New("not found")
	ErrTransport          = errors.New("transport error")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrUnexpectedStatus   = errors.New("unexpected status")
)

// StatusError is a non-2xx response. It unwraps to the sentinel matching
// the code, so errors.Is(err, ErrUnauthorized) works on it.
type StatusError struct {
	Code   int
	Detail string
	kind   error
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %d: %s", e.kind, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: %d", e.kind, e.Code)
}

func (e *StatusError) Unwrap() error { return e.kind }
