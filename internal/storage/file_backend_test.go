package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexchat-go/internal/conversation"
)

func TestFileBackendRoundTrip(t *testing.T) {
	backend := NewFileBackend(t.TempDir() + "/transcripts")
	ctx := context.Background()
	require.NoError(t, backend.Initialize(ctx))
	require.NoError(t, backend.Health(ctx))

	require.NoError(t, backend.AppendExchange(ctx, exchange("abc", conversation.OutcomeCommitted, "one")))
	require.NoError(t, backend.AppendExchange(ctx, exchange("abc", conversation.OutcomeAborted, "two")))

	got, err := backend.ListExchanges(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[1].UserText)

	summary, err := backend.SessionSummary(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[conversation.Outcome]int64{
		conversation.OutcomeCommitted: 1,
		conversation.OutcomeAborted:   1,
	}, summary)

	sessions, err := backend.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, sessions)
}

func TestFileBackendUnknownSession(t *testing.T) {
	backend := NewFileBackend(t.TempDir())
	_, err := backend.ListExchanges(context.Background(), "missing")
	var nf *ErrNotFound
	if !assert.ErrorAs(t, err, &nf) {
		return
	}
	assert.Equal(t, "missing", nf.Key)
}

func TestFileBackendRejectsPathSessionIDs(t *testing.T) {
	backend := NewFileBackend(t.TempDir())
	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if err := backend.AppendExchange(context.Background(), exchange(id, conversation.OutcomeCommitted, "x")); err == nil {
			t.Fatalf("expected error for session id %q", id)
		}
	}
}
