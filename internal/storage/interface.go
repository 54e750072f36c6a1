package storage

import (
	"context"
	"fmt"

	"vertexchat-go/internal/conversation"
)

// Backend persists exchange summaries per conversation session. Access
// tokens never pass through a Backend.
type Backend interface {
	// Initialize sets up the storage backend
	Initialize(ctx context.Context) error

	// Close closes the storage backend
	Close() error

	// Health checks if the storage backend is healthy
	Health(ctx context.Context) error

	AppendExchange(ctx context.Context, ev conversation.ExchangeEvent) error
	ListExchanges(ctx context.Context, sessionID string) ([]conversation.ExchangeEvent, error)
	ListSessions(ctx context.Context) ([]string, error)
	// SessionSummary returns exchange counts keyed by outcome.
	SessionSummary(ctx context.Context, sessionID string) (map[conversation.Outcome]int64, error)
}

// ErrNotFound indicates an unknown session.
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Key)
}
