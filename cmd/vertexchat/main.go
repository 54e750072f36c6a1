package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"vertexchat-go/internal/attachment"
	"vertexchat-go/internal/config"
	"vertexchat-go/internal/constants"
	"vertexchat-go/internal/conversation"
	"vertexchat-go/internal/credential"
	"vertexchat-go/internal/events"
	"vertexchat-go/internal/logging"
	"vertexchat-go/internal/middleware"
	"vertexchat-go/internal/monitoring/tracing"
	"vertexchat-go/internal/oauth"
	srv "vertexchat-go/internal/server"
	store "vertexchat-go/internal/storage"
	"vertexchat-go/internal/terminal"
	"vertexchat-go/internal/upstream/vertex"
	"vertexchat-go/internal/usage"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML or JSON configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(constants.GetFullVersion())
		return
	}

	if err := run(*configPath, *debug); err != nil {
		fmt.Fprintln(os.Stderr, "vertexchat:", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Security.Debug = true
	}
	if err := logging.Setup(cfg); err != nil {
		return err
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traceShutdown, err := tracing.Init(ctx, cfg.Tracing.TracerOptions())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	defer func() {
		if err := traceShutdown(context.Background()); err != nil {
			log.WithError(err).Warn("failed to shutdown tracing")
		}
	}()

	account, err := cfg.ServiceAccount.Resolve()
	if err != nil {
		return err
	}
	policy, err := cfg.Safety.Policy()
	if err != nil {
		return err
	}

	hub := events.NewHub()
	if cfg.Security.Debug {
		hub.Subscribe(events.TopicTokenFailed, func(_ context.Context, evt events.Event) {
			log.WithField("topic", evt.Topic).Debugf("token event: %v", evt.Payload)
		})
	}

	tokens := credential.NewTokenCache(
		oauth.NewIssuer(oauth.WithTokenURL(cfg.ServiceAccount.TokenURI)),
		credential.Options{
			Account:   account,
			Scope:     cfg.ServiceAccount.Scope,
			Publisher: hub,
		},
	)
	client := vertex.New(cfg.Platform, tokens)

	controller := conversation.NewController(client, conversation.Options{
		Model:     cfg.Platform.Model,
		Policy:    policy,
		Publisher: hub,
	})
	log.WithFields(log.Fields{
		"session_id": controller.SessionID(),
		"model":      cfg.Platform.Model,
		"version":    constants.Version,
	}).Info("conversation started")

	tracker, err := buildUsageTracker(cfg.Usage)
	if err != nil {
		return err
	}
	tracker.Start(ctx)
	detachUsage := tracker.Attach(hub)
	defer func() {
		detachUsage()
		if err := tracker.Stop(context.Background()); err != nil {
			log.WithError(err).Warn("failed to save usage statistics")
		}
		stats := tracker.GetStats()
		log.WithFields(log.Fields{
			"exchanges":    stats.TotalExchanges,
			"total_tokens": stats.TotalTokens,
		}).Info("session usage")
	}()

	var backend store.Backend
	if cfg.Report.Enabled {
		backend = buildStorageBackend(ctx, cfg.Report)
		if backend != nil {
			defer func() { _ = backend.Close() }()
			detach := store.NewRecorder(backend).Attach(hub)
			defer detach()
		}
	}

	if cfg.Metrics.Enabled {
		checks := map[string]srv.HealthCheck{
			"token": func(context.Context) error {
				return tokens.Ready()
			},
		}
		if backend != nil {
			checks["storage"] = backend.Health
		}
		ops := srv.New(cfg.Metrics, cfg.Security.Debug, srv.Dependencies{
			Checks:   checks,
			Sessions: backend,
			Usage:    tracker,
		})
		middleware.SafeGo("ops-server", func() {
			if err := ops.Run(ctx); err != nil {
				log.WithError(err).Error("ops server stopped")
			}
		})
	}

	prompt := terminal.NewPrompt(os.Stdin, os.Stdout)
	err = controller.Run(ctx, prompt, attachment.NewReader(cfg.Attachments.MaxBytes))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildUsageTracker(cfg config.UsageConfig) (*usage.Tracker, error) {
	interval := time.Duration(cfg.PersistIntervalSec) * time.Second
	if cfg.Dir == "" {
		return usage.NewTracker(nil, interval), nil
	}
	fs, err := usage.NewFileStorage(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("usage storage: %w", err)
	}
	return usage.NewTracker(fs, interval), nil
}
