package storage

import (
	"context"
	"time"

	"vertexchat-go/internal/conversation"
	"vertexchat-go/internal/monitoring"
	"vertexchat-go/internal/monitoring/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// WithInstrumentation wraps a backend with tracing and metrics instrumentation.
func WithInstrumentation(inner Backend, label string) Backend {
	if inner == nil {
		return nil
	}
	if label == "" {
		label = "unknown"
	}
	return &instrumentedBackend{Backend: inner, label: label}
}

type instrumentedBackend struct {
	Backend
	label string
}

func (i *instrumentedBackend) AppendExchange(ctx context.Context, ev conversation.ExchangeEvent) error {
	return i.instrument(ctx, "append_exchange", func(ctx context.Context) error {
		return i.Backend.AppendExchange(ctx, ev)
	})
}

func (i *instrumentedBackend) ListExchanges(ctx context.Context, sessionID string) ([]conversation.ExchangeEvent, error) {
	var result []conversation.ExchangeEvent
	err := i.instrument(ctx, "list_exchanges", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = i.Backend.ListExchanges(ctx, sessionID)
		return innerErr
	})
	return result, err
}

func (i *instrumentedBackend) ListSessions(ctx context.Context) ([]string, error) {
	var result []string
	err := i.instrument(ctx, "list_sessions", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = i.Backend.ListSessions(ctx)
		return innerErr
	})
	return result, err
}

func (i *instrumentedBackend) SessionSummary(ctx context.Context, sessionID string) (map[conversation.Outcome]int64, error) {
	var result map[conversation.Outcome]int64
	err := i.instrument(ctx, "session_summary", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = i.Backend.SessionSummary(ctx, sessionID)
		return innerErr
	})
	return result, err
}

func (i *instrumentedBackend) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "storage", i.label+"/"+operation)
	span.SetAttributes(
		attribute.String("storage.backend", i.label),
		attribute.String("storage.operation", operation),
	)
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	monitoring.RecordStorageOperation(i.label, operation, duration, err)
	return err
}
