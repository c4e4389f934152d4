package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindBadRequest
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "ValidationFailure"
	case KindBadRequest:
		return "BadRequest"
	case KindConflict:
		return "Conflict"
	case KindForbidden:
		return "Forbidden"
	default:
		return "InternalError"
	}
}

// Error is a business failure surfaced to the caller as-is.
type Error struct {
	Kind        Kind
	Description string
}

func (e *Error) Error() string {
	return e.Description
}

func newError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func BadRequest(format string, args ...any) error {
	return newError(KindBadRequest, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

// KindOf reports the kind of err, KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
