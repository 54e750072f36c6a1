package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"vertexchat-go/internal/config"
)

var (
	logMux        sync.Mutex
	logFileHandle *os.File
)

// Setup configures the global logrus logger. With a log file configured,
// entries go only to that file so they do not interleave with the chat
// prompt; otherwise they go to stderr. Debug mode switches to text output
// at debug level. The most recent call wins.
func Setup(cfg *config.Config) error {
	return setup(cfg, os.Stderr)
}

func setup(cfg *config.Config, fallback io.Writer) error {
	logMux.Lock()
	defer logMux.Unlock()

	debug := cfg != nil && cfg.Security.Debug

	var formatter log.Formatter = &log.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	level := log.WarnLevel
	if debug {
		formatter = &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}
		level = log.DebugLevel
	}
	log.SetFormatter(formatter)

	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil
	}

	out := fallback
	if cfg != nil && cfg.Security.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Security.LogFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.Security.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFileHandle = file
		out = file
		if !debug {
			level = log.InfoLevel
		}
	}
	log.SetLevel(level)
	log.SetOutput(out)
	return nil
}

// Close releases the log file, if any, and restores stderr output.
func Close() {
	logMux.Lock()
	defer logMux.Unlock()
	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil
	}
	log.SetOutput(os.Stderr)
}
