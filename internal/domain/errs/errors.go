// Package errs holds the error taxonomy shared by stores, services and transport.
package errs

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidState   = errors.New("invalid state")
)
