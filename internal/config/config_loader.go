package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is loaded from the working directory when present. Variables
// already set in the environment win.
const DotEnvFile = ".env"

// Load builds the configuration: defaults, then the optional file at path
// (YAML or JSON), then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		fileCfg, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
		log.WithField("path", path).Info("configuration loaded")
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.ValidateAndExpandPaths(); err != nil {
		return nil, err
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		log.WithFields(log.Fields{"field": w.Field, "value": w.Value}).Warn(w.Message)
	}
	if !result.Valid {
		return nil, result.Err()
	}
	return cfg, nil
}

func loadDotEnv(file string) error {
	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	log.WithField("path", file).Debug("environment file loaded")
	return nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			config = Default()
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}
	return config, nil
}
