package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"vertexchat-go/internal/config"
	store "vertexchat-go/internal/storage"
)

// buildStorageBackend opens the configured transcript backend, falling
// back to the file backend when Redis is unreachable. A nil result means
// the conversation runs without a transcript.
func buildStorageBackend(ctx context.Context, cfg config.ReportConfig) store.Backend {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if cfg.Backend == "redis" {
		backend, err := store.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix,
			time.Duration(cfg.TTLHours)*time.Hour)
		if err == nil {
			err = backend.Initialize(initCtx)
			if err == nil {
				return store.WithInstrumentation(backend, "redis")
			}
			_ = backend.Close()
		}
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis transcript backend unavailable; falling back to file backend")
	}

	backend := store.NewFileBackend(cfg.Dir)
	if err := backend.Initialize(initCtx); err != nil {
		log.WithError(err).Error("file transcript backend unavailable; transcripts disabled")
		return nil
	}
	return store.WithInstrumentation(backend, "file")
}
