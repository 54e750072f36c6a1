// Package server hosts the optional ops listener: Prometheus metrics,
// health probes and read-only transcript reports.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"vertexchat-go/internal/config"
	"vertexchat-go/internal/constants"
	mw "vertexchat-go/internal/middleware"
	"vertexchat-go/internal/storage"
	"vertexchat-go/internal/usage"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the runtime services the ops routes report on. All
// fields are optional.
type Dependencies struct {
	Checks   map[string]HealthCheck
	Sessions storage.Backend
	Usage    *usage.Tracker
}

// Server wraps the ops gin engine and its listener.
type Server struct {
	cfg    config.MetricsConfig
	engine *gin.Engine
	srv    *http.Server
}

// New builds the engine and registers routes. Call Run to serve.
func New(cfg config.MetricsConfig, debug bool, deps Dependencies) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	_ = engine.SetTrustedProxies(nil)
	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics(), mw.RequestLogger())
	engine.Use(mw.RateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))

	registerRoutes(engine, deps)

	return &Server{
		cfg:    cfg,
		engine: engine,
		srv: &http.Server{
			Addr:              cfg.Listen,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("ops server listening")
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.OpsShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
