package errors

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
)

// FromNetwork maps a client-side transport failure to TimeoutError or TransportError.
func FromNetwork(op string, err error) *Error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Op: op, Message: "request timeout: " + err.Error(), Err: err}
	}
	errMsg := err.Error()
	var msg string
	switch {
	case strings.Contains(errMsg, "connection refused"):
		msg = "connection refused: " + errMsg
	case strings.Contains(errMsg, "EOF") || strings.Contains(errMsg, "connection reset"):
		msg = "connection error: " + errMsg
	case strings.Contains(errMsg, "no such host") || strings.Contains(errMsg, "name resolution"):
		msg = "dns resolution error: " + errMsg
	case strings.Contains(errMsg, "certificate") || strings.Contains(errMsg, "tls"):
		msg = "tls/certificate error: " + errMsg
	case strings.Contains(errMsg, "context canceled"):
		msg = "request was canceled: " + errMsg
	default:
		msg = "network error: " + errMsg
	}
	return &Error{Kind: KindTransport, Op: op, Message: msg, Err: err}
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "deadline exceeded")
}
