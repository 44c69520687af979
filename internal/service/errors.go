package service

import "errors"

// Kind classifies service failures for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Error is the taxonomy error returned by ChatService operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the taxonomy kind from any error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnknown
}
