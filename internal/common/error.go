package common

import "errors"

// Error is a service failure with a kind (one of the Err* kinds above) and a
// caller-facing message. The optional cause is kept for logging and is never
// part of the message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func Auth(msg string) error { return &Error{Kind: ErrAuth, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Upload(msg string, err error) error { return &Error{Kind: ErrUpload, Message: msg, Err: err} }

func Internal(msg string, err error) error { return &Error{Kind: ErrInternal, Message: msg, Err: err} }

// KindOf returns the kind of err, or ErrInternal when err carries none.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}
