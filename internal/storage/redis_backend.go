package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"vertexchat-go/internal/conversation"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps one list of exchange records and one outcome hash per
// session, plus a set of known sessions. Session keys expire ttl after
// their last write.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a new Redis storage backend
func NewRedisBackend(addr, password string, db int, prefix string, ttl time.Duration) (*RedisBackend, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if prefix == "" {
		prefix = "vertexchat:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
		MinIdleConns: 1,
	})

	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}, nil
}

// Initialize tests Redis connection
func (r *RedisBackend) Initialize(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes Redis connection
func (r *RedisBackend) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Health checks redis availability
func (r *RedisBackend) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) sessionsKey() string { return r.prefix + "sessions" }
func (r *RedisBackend) exchangesKey(id string) string {
	return r.prefix + "session:" + id + ":exchanges"
}
func (r *RedisBackend) summaryKey(id string) string {
	return r.prefix + "session:" + id + ":summary"
}

// AppendExchange writes the record, bumps the outcome counter and
// refreshes expiry in one transaction.
func (r *RedisBackend) AppendExchange(ctx context.Context, ev conversation.ExchangeEvent) error {
	if ev.SessionID == "" {
		return fmt.Errorf("exchange has no session id")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode exchange: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.exchangesKey(ev.SessionID), payload)
		pipe.HIncrBy(ctx, r.summaryKey(ev.SessionID), string(ev.Outcome), 1)
		pipe.SAdd(ctx, r.sessionsKey(), ev.SessionID)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.exchangesKey(ev.SessionID), r.ttl)
			pipe.Expire(ctx, r.summaryKey(ev.SessionID), r.ttl)
		}
		return nil
	})
	return err
}

// ListExchanges returns the session's records oldest first.
func (r *RedisBackend) ListExchanges(ctx context.Context, sessionID string) ([]conversation.ExchangeEvent, error) {
	raw, err := r.client.LRange(ctx, r.exchangesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &ErrNotFound{Key: sessionID}
	}
	out := make([]conversation.ExchangeEvent, 0, len(raw))
	for i, item := range raw {
		var ev conversation.ExchangeEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode exchange %d of %s: %w", i, sessionID, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// ListSessions returns known session ids whose records have not expired.
func (r *RedisBackend) ListSessions(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.sessionsKey()).Result()
	if err != nil {
		return nil, err
	}
	live := ids[:0]
	for _, id := range ids {
		n, err := r.client.Exists(ctx, r.exchangesKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			r.client.SRem(ctx, r.sessionsKey(), id)
			continue
		}
		live = append(live, id)
	}
	sort.Strings(live)
	return live, nil
}

// SessionSummary returns exchange counts keyed by outcome.
func (r *RedisBackend) SessionSummary(ctx context.Context, sessionID string) (map[conversation.Outcome]int64, error) {
	raw, err := r.client.HGetAll(ctx, r.summaryKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &ErrNotFound{Key: sessionID}
	}
	out := make(map[conversation.Outcome]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode summary %s.%s: %w", sessionID, k, err)
		}
		out[conversation.Outcome(k)] = n
	}
	return out, nil
}
