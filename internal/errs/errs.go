// Package errs holds the error taxonomy shared by repositories, services
// and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindPreconditionFailed
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPreconditionFailed:
		return "precondition failed"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Detail types carried in Error.Details.
const (
	EtagPreconditionViolation   = "EtagPreconditionViolation"
	UnexistingResourceViolation = "UnexistingResourceViolation"
	InvalidArgumentViolation    = "InvalidArgumentViolation"
	PreconditionFailedViolation = "PreconditionFailed"
	UniqueConstraintViolation   = "UniqueConstraintViolation"
)

type Detail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind     `json:"-"`
	Details []Detail `json:"details"`
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}
	if len(msgs) == 0 {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(msgs, "; "))
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
)

func newError(kind Kind, typ, format string, args ...any) *Error {
	return &Error{Kind: kind, Details: []Detail{{Type: typ, Message: fmt.Sprintf(format, args...)}}}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, UnexistingResourceViolation, format, args...)
}

func PreconditionFailed(format string, args ...any) *Error {
	return newError(KindPreconditionFailed, PreconditionFailedViolation, format, args...)
}

func EtagMismatch(current, expected string) *Error {
	return newError(KindPreconditionFailed, EtagPreconditionViolation,
		"The resource etag '%s' did not match '%s'.", current, expected)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, InvalidArgumentViolation, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, UniqueConstraintViolation, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
