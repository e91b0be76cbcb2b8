package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks transport failures: refused connections, timeouts, cancellations.
	ErrNetwork = errors.New("store: network error")
	// ErrStatus marks a response with a non-2xx status.
	ErrStatus = errors.New("store: unexpected status")
	// ErrNotFound marks a 404 for a keyed request.
	ErrNotFound = errors.New("store: employee not found")
)

// Op names a store operation.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RequestError describes one failed store call.
type RequestError struct {
	Op         Op
	ID         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	target := string(e.Op)
	if e.ID != "" {
		target += " " + e.ID
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("store: %s: status %d: %v", target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", target, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
