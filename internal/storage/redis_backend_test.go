package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexchat-go/internal/conversation"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(mr.Close)

	backend, err := NewRedisBackend(mr.Addr(), "", 0, "test:", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	require.NoError(t, backend.Initialize(context.Background()))
	return backend, mr
}

func exchange(session string, outcome conversation.Outcome, text string) conversation.ExchangeEvent {
	return conversation.ExchangeEvent{
		SessionID:  session,
		Outcome:    outcome,
		UserText:   text,
		HistoryLen: 2,
		At:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisBackendAppendAndList(t *testing.T) {
	backend, _ := newTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.AppendExchange(ctx, exchange("s1", conversation.OutcomeCommitted, "hello")))
	require.NoError(t, backend.AppendExchange(ctx, exchange("s1", conversation.OutcomeRejected, "bad")))
	require.NoError(t, backend.AppendExchange(ctx, exchange("s2", conversation.OutcomeCommitted, "other")))

	got, err := backend.ListExchanges(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].UserText)
	assert.Equal(t, conversation.OutcomeRejected, got[1].Outcome)

	sessions, err := backend.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, sessions)

	summary, err := backend.SessionSummary(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary[conversation.OutcomeCommitted])
	assert.Equal(t, int64(1), summary[conversation.OutcomeRejected])
}

func TestRedisBackendExpiry(t *testing.T) {
	backend, mr := newTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, backend.AppendExchange(ctx, exchange("s1", conversation.OutcomeCommitted, "hello")))
	mr.FastForward(2 * time.Minute)

	_, err := backend.ListExchanges(ctx, "s1")
	var nf *ErrNotFound
	assert.ErrorAs(t, err, &nf)

	sessions, err := backend.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisBackendRejectsMissingSession(t *testing.T) {
	backend, _ := newTestRedis(t, 0)
	err := backend.AppendExchange(context.Background(), exchange("", conversation.OutcomeCommitted, "x"))
	assert.Error(t, err)
}

func TestNewRedisBackendRequiresAddr(t *testing.T) {
	if _, err := NewRedisBackend("", "", 0, "", 0); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
