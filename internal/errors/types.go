package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure of the token or generation path.
type Kind string

const (
	KindAuthentication Kind = "authentication_error"
	KindTimeout        Kind = "timeout_error"
	KindTransport      Kind = "transport_error"
	KindProtocol       Kind = "protocol_error"
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrAuthentication = stderrors.New("authentication error")
	ErrTimeout        = stderrors.New("timeout error")
	ErrTransport      = stderrors.New("transport error")
	ErrProtocol       = stderrors.New("protocol error")
)

// Error is the single error type surfaced by the issuer and the platform connector.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// New builds an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, op string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + ": " + prefix
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", prefix, e.StatusCode, e.Message)
	}
	return prefix + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return sentinelFor(e.Kind) == target
}

func sentinelFor(kind Kind) error {
	switch kind {
	case KindAuthentication:
		return ErrAuthentication
	case KindTimeout:
		return ErrTimeout
	case KindTransport:
		return ErrTransport
	case KindProtocol:
		return ErrProtocol
	}
	return nil
}

// KindOf extracts the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
