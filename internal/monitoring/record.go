package monitoring

import (
	"fmt"
	"math"
	"time"
)

func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", code/100)
}

func seconds(d time.Duration) float64 {
	s := d.Seconds()
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// RecordTokenLookup counts a cache lookup outcome.
func RecordTokenLookup(result string) {
	TokenCacheLookups.WithLabelValues(result).Inc()
}

// RecordTokenIssuance records one token exchange.
func RecordTokenIssuance(dur time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TokenIssuances.WithLabelValues(status).Inc()
	TokenIssuanceDuration.Observe(seconds(dur))
}

// RecordUpstream records one generateContent call. networkErr marks calls
// that never produced an HTTP status.
func RecordUpstream(model string, dur time.Duration, status int, networkErr bool) {
	if model == "" {
		model = "unknown"
	}
	cls := statusClass(status)
	if networkErr {
		cls = "network_error"
	}
	UpstreamRequestsTotal.WithLabelValues(model, cls).Inc()
	UpstreamRequestDuration.WithLabelValues(model).Observe(seconds(dur))
}

// RecordUpstreamError increments upstream errors by kind.
func RecordUpstreamError(kind string) {
	if kind == "" {
		kind = "other"
	}
	UpstreamErrors.WithLabelValues(kind).Inc()
}

// RecordExchange records a conversation outcome and the resulting history size.
func RecordExchange(outcome string, historyLen int) {
	ExchangesTotal.WithLabelValues(outcome).Inc()
	HistoryTurns.Set(float64(historyLen))
}

// RecordFinishReason counts a finish reason reported by the platform.
func RecordFinishReason(reason string) {
	FinishReasons.WithLabelValues(reason).Inc()
}

// RecordStorageOperation records one transcript storage call.
func RecordStorageOperation(backend, operation string, dur time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StorageOperations.WithLabelValues(backend, operation, status).Inc()
	StorageOperationDuration.WithLabelValues(backend, operation).Observe(seconds(dur))
}
