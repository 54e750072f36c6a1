package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexchat-go/internal/conversation"
	"vertexchat-go/internal/events"
)

var day = time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC)

func ev(outcome conversation.Outcome, prompt, output int) conversation.ExchangeEvent {
	return conversation.ExchangeEvent{
		SessionID:    "s",
		Outcome:      outcome,
		Model:        "gemini-pro",
		PromptTokens: prompt,
		OutputTokens: output,
		At:           day,
	}
}

func TestTrackerAggregatesOutcomesAndTokens(t *testing.T) {
	tracker := NewTracker(nil, 0)
	tracker.Record(ev(conversation.OutcomeCommitted, 10, 5))
	tracker.Record(ev(conversation.OutcomeRejected, 4, 0))
	tracker.Record(ev(conversation.OutcomeAborted, 0, 0))

	stats := tracker.GetStats()
	assert.Equal(t, int64(3), stats.TotalExchanges)
	assert.Equal(t, int64(1), stats.Committed)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Aborted)
	assert.Equal(t, int64(14), stats.PromptTokens)
	assert.Equal(t, int64(19), stats.TotalTokens)

	daily := stats.DailyStats["2025-01-06"]
	require.NotNil(t, daily)
	assert.Equal(t, int64(3), daily.Exchanges)
	assert.Equal(t, int64(1), daily.Rejected)
	assert.Equal(t, int64(3), stats.HourlyStats[14].Exchanges)
	assert.Equal(t, int64(3), stats.Models["gemini-pro"].Calls)
}

func TestGetStatsReturnsCopy(t *testing.T) {
	tracker := NewTracker(nil, 0)
	tracker.Record(ev(conversation.OutcomeCommitted, 1, 1))
	snap := tracker.GetStats()
	snap.Models["gemini-pro"].Calls = 99
	assert.Equal(t, int64(1), tracker.GetStats().Models["gemini-pro"].Calls)
}

func TestTrackerAttachToHub(t *testing.T) {
	hub := events.NewHub()
	tracker := NewTracker(nil, 0)
	detach := tracker.Attach(hub)

	hub.Publish(context.Background(), events.TopicExchangeCommitted, ev(conversation.OutcomeCommitted, 2, 3), nil)
	hub.Publish(context.Background(), events.TopicTokenIssued, nil, nil)
	detach()
	hub.Publish(context.Background(), events.TopicExchangeCommitted, ev(conversation.OutcomeCommitted, 2, 3), nil)

	assert.Equal(t, int64(1), tracker.GetStats().TotalExchanges)
}

func TestTrackerPersistsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStorage(dir)
	require.NoError(t, err)

	first := NewTracker(store, time.Hour)
	first.Start(context.Background())
	first.Record(ev(conversation.OutcomeCommitted, 7, 8))
	require.NoError(t, first.Stop(context.Background()))

	second := NewTracker(store, time.Hour)
	second.Start(context.Background())
	defer func() { _ = second.Stop(context.Background()) }()
	second.Record(ev(conversation.OutcomeCommitted, 1, 1))

	stats := second.GetStats()
	assert.Equal(t, int64(2), stats.TotalExchanges)
	assert.Equal(t, int64(17), stats.TotalTokens)
}

type failingStorage struct{ saves int }

func (f *failingStorage) LoadStats(context.Context) (*Stats, error) {
	return nil, errors.New("unreadable")
}

func (f *failingStorage) SaveStats(context.Context, *Stats) error {
	f.saves++
	return errors.New("read-only")
}

func TestTrackerSaveFailureKeepsDirty(t *testing.T) {
	store := &failingStorage{}
	tracker := NewTracker(store, time.Hour)
	tracker.Start(context.Background())
	tracker.Record(ev(conversation.OutcomeCommitted, 1, 1))

	if err := tracker.Stop(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
	if err := tracker.save(context.Background()); err == nil {
		t.Fatalf("expected retry of unsaved stats")
	}
	assert.Equal(t, 2, store.saves)
}

func TestFileStorageMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStorage(dir)
	require.NoError(t, err)

	stats, err := store.LoadStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stats.Models)

	require.NoError(t, writeRaw(store.path, "{not json"))
	stats, err = store.LoadStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalExchanges)
}
