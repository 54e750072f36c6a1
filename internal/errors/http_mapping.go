package errors

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// FromHTTPStatus maps a non-2xx upstream response to the taxonomy.
// 401/403 are authentication failures, 408/504 timeouts, 429 and 5xx
// transport-level failures, and anything else a protocol violation.
func FromHTTPStatus(op string, statusCode int, upstreamBody []byte) *Error {
	upstreamMsg := extractUpstreamMessage(upstreamBody)

	var kind Kind
	var fallback string
	switch {
	case statusCode == http.StatusUnauthorized:
		kind, fallback = KindAuthentication, "invalid authentication"
	case statusCode == http.StatusForbidden:
		kind, fallback = KindAuthentication, "permission denied"
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		kind, fallback = KindTimeout, "request timeout"
	case statusCode == http.StatusTooManyRequests:
		kind, fallback = KindTransport, "rate limit exceeded"
	case statusCode >= 500:
		kind, fallback = KindTransport, "server error"
	default:
		kind, fallback = KindProtocol, fmt.Sprintf("HTTP %d error", statusCode)
	}
	return &Error{Kind: kind, Op: op, StatusCode: statusCode, Message: firstNonEmpty(upstreamMsg, fallback)}
}

// extractUpstreamMessage understands both the Google API error envelope
// ({"error":{"message":...}}) and the OAuth token endpoint shape
// ({"error":"invalid_grant","error_description":...}).
func extractUpstreamMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
			return msg
		}
		if desc := gjson.GetBytes(body, "error_description").String(); desc != "" {
			return desc
		}
		if code := gjson.GetBytes(body, "error"); code.Type == gjson.String && code.String() != "" {
			return code.String()
		}
	}
	msg := string(body)
	if len(msg) > 200 {
		return msg[:200] + "..."
	}
	return msg
}

func firstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
