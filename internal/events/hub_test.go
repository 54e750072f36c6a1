package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubDeliversInSubscriptionOrder(t *testing.T) {
	hub := NewHub()
	var seen []string
	hub.Subscribe(TopicExchangeCommitted, func(_ context.Context, e Event) { seen = append(seen, "a:"+e.Topic) })
	hub.Subscribe(TopicExchangeCommitted, func(_ context.Context, e Event) { seen = append(seen, "b:"+e.Topic) })
	hub.Subscribe(TopicExchangeRejected, func(_ context.Context, e Event) { seen = append(seen, "other") })

	hub.Publish(context.Background(), TopicExchangeCommitted, 1, nil)
	assert.Equal(t, []string{"a:exchange.committed", "b:exchange.committed"}, seen)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	calls := 0
	unsub := hub.Subscribe(TopicTokenIssued, func(context.Context, Event) { calls++ })
	hub.Publish(context.Background(), TopicTokenIssued, nil, nil)
	unsub()
	hub.Publish(context.Background(), TopicTokenIssued, nil, nil)
	assert.Equal(t, 1, calls)
}

func TestNilHubPublishIsNoop(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() { hub.Publish(context.Background(), TopicTokenFailed, nil, nil) })
}
