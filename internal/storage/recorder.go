package storage

import (
	"context"
	"time"

	"vertexchat-go/internal/conversation"
	"vertexchat-go/internal/events"

	log "github.com/sirupsen/logrus"
)

const recordTimeout = 3 * time.Second

// Recorder copies exchange events into a Backend. Storage failures are
// logged and never reach the conversation.
type Recorder struct {
	backend Backend
}

func NewRecorder(backend Backend) *Recorder {
	return &Recorder{backend: backend}
}

// Attach subscribes to every exchange topic and returns a function that
// removes the subscriptions.
func (r *Recorder) Attach(sub events.Subscriber) func() {
	topics := []string{
		events.TopicExchangeCommitted,
		events.TopicExchangeRejected,
		events.TopicExchangeAborted,
	}
	cancels := make([]func(), 0, len(topics))
	for _, topic := range topics {
		cancels = append(cancels, sub.Subscribe(topic, r.handle))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (r *Recorder) handle(ctx context.Context, ev events.Event) {
	exchange, ok := ev.Payload.(conversation.ExchangeEvent)
	if !ok {
		log.WithField("topic", ev.Topic).Warn("recorder ignored event with unexpected payload")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := r.backend.AppendExchange(ctx, exchange); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session_id": exchange.SessionID,
			"outcome":    exchange.Outcome,
		}).Warn("failed to record exchange")
	}
}
