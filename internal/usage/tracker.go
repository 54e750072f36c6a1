// Package usage aggregates exchange outcomes and token consumption.
package usage

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"vertexchat-go/internal/conversation"
	"vertexchat-go/internal/events"
)

// DefaultPersistInterval is how often a started tracker saves.
const DefaultPersistInterval = time.Minute

// Tracker collects usage from exchange events and persists it in the
// background. A nil storage keeps everything in memory.
type Tracker struct {
	storage         Storage
	persistInterval time.Duration

	mu    sync.RWMutex
	stats *Stats
	dirty bool

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewTracker creates a new usage tracker
func NewTracker(storage Storage, persistInterval time.Duration) *Tracker {
	if persistInterval <= 0 {
		persistInterval = DefaultPersistInterval
	}
	return &Tracker{
		storage:         storage,
		persistInterval: persistInterval,
		stats:           NewStats(),
		stopCh:          make(chan struct{}),
	}
}

// Start loads previous stats and starts the persistence worker.
func (t *Tracker) Start(ctx context.Context) {
	if t.storage != nil {
		stats, err := t.storage.LoadStats(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to load usage statistics, starting fresh")
		} else {
			t.mu.Lock()
			t.stats = stats
			t.mu.Unlock()
		}
	}

	t.wg.Add(1)
	go t.persistWorker(ctx)
}

// Stop ends the worker and writes a final snapshot.
func (t *Tracker) Stop(ctx context.Context) error {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
	return t.save(ctx)
}

// Attach subscribes the tracker to every exchange topic.
func (t *Tracker) Attach(sub events.Subscriber) func() {
	handler := func(_ context.Context, ev events.Event) {
		if exchange, ok := ev.Payload.(conversation.ExchangeEvent); ok {
			t.Record(exchange)
		}
	}
	cancels := []func(){
		sub.Subscribe(events.TopicExchangeCommitted, handler),
		sub.Subscribe(events.TopicExchangeRejected, handler),
		sub.Subscribe(events.TopicExchangeAborted, handler),
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// Record folds one exchange into the statistics.
func (t *Tracker) Record(ev conversation.ExchangeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.add(ev)
	t.dirty = true
}

// GetStats returns a snapshot of current statistics
func (t *Tracker) GetStats() *Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats.clone()
}

func (t *Tracker) persistWorker(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.persistInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.save(ctx); err != nil {
				log.WithError(err).Error("Failed to persist usage statistics")
			}
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *Tracker) save(ctx context.Context) error {
	if t.storage == nil {
		return nil
	}
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return nil
	}
	snapshot := t.stats.clone()
	t.dirty = false
	t.mu.Unlock()

	if err := t.storage.SaveStats(context.WithoutCancel(ctx), snapshot); err != nil {
		t.mu.Lock()
		t.dirty = true
		t.mu.Unlock()
		return err
	}
	return nil
}
