// Package errx holds the client-facing error taxonomy shared by models,
// services and handlers.
package errx

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPermission = errors.New("permission denied")
)

// Error is a recoverable, client-facing failure. Kind is one of the
// sentinels above; Detail is safe to show to callers.
type Error struct {
	Kind   error
	Field  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Detail
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool { return target == e.Kind }

func Validation(field, detail string) *Error {
	return &Error{Kind: ErrValidation, Field: field, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Kind: ErrNotFound, Detail: detail}
}

func Conflict(field, detail string) *Error {
	return &Error{Kind: ErrConflict, Field: field, Detail: detail}
}

func Permission(detail string) *Error {
	return &Error{Kind: ErrPermission, Detail: detail}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
