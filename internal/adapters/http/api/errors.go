package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrServe      = errors.New("swagger serve failed")
	ErrBadRequest = errors.New("bad request")
)

// NewKind tags a sentinel error with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags a sentinel error with the failing operation and its cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
