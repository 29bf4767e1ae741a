// Package apperr defines the error kinds surfaced by the portal's request pipeline.
// Handlers wrap failures in an *Error; the response mapper turns the kind into a status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unexpected Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	Validation
	Provider
	Store
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Provider:
		return "provider"
	case Store:
		return "store"
	}
	return "unexpected"
}

// Error carries a kind, a client-safe message and the underlying cause.
// Message is sent to clients only for kinds that are not Store or Unexpected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NotFoundf(resource string) *Error {
	return &Error{Kind: NotFound, Message: resource + " not found"}
}

func Invalid(msg string) *Error { return &Error{Kind: Validation, Message: msg} }

func StoreErr(err error) *Error { return &Error{Kind: Store, Message: "store failure", Err: err} }

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unexpected
}
