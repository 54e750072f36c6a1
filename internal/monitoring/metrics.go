package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Token lifecycle
	TokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_token_cache_lookups_total",
			Help: "Token cache lookups by result (hit, miss, shared, error)",
		},
		[]string{"result"},
	)

	TokenIssuances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_token_issuances_total",
			Help: "Token exchanges performed against the token endpoint",
		},
		[]string{"status"},
	)

	TokenIssuanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vertexchat_token_issuance_duration_seconds",
			Help:    "Token exchange latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// Upstream generation calls
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_upstream_requests_total",
			Help: "Total number of generateContent requests",
		},
		[]string{"model", "status_class"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vertexchat_upstream_request_duration_seconds",
			Help:    "generateContent latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"model"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_upstream_errors_total",
			Help: "generateContent failures by error kind",
		},
		[]string{"kind"},
	)

	// Conversation outcomes
	ExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_exchanges_total",
			Help: "Conversation exchanges by outcome (committed, rejected, aborted)",
		},
		[]string{"outcome"},
	)

	FinishReasons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_finish_reasons_total",
			Help: "Finish reasons reported by the platform",
		},
		[]string{"reason"},
	)

	HistoryTurns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vertexchat_history_turns",
			Help: "Number of turns in the current conversation history",
		},
	)

	// Transcript storage
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_storage_operations_total",
			Help: "Transcript storage operations by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vertexchat_storage_operation_duration_seconds",
			Help:    "Transcript storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// Ops HTTP server
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vertexchat_http_requests_total",
			Help: "Ops HTTP requests by method, route and status class",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vertexchat_http_request_duration_seconds",
			Help:    "Ops HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vertexchat_http_in_flight_requests",
			Help: "Ops HTTP requests currently being served",
		},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vertexchat_http_rate_limited_total",
			Help: "Ops HTTP requests rejected by the rate limiter",
		},
	)
)
