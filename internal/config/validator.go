package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vertexchat-go/internal/models"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s=%s]: %s", e.Field, e.Value, e.Message)
}

// ValidationResult holds the results of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// AddError adds a validation error
func (r *ValidationResult) AddError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
	r.Valid = false
}

// AddWarning adds a validation warning
func (r *ValidationResult) AddWarning(field, value, message string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// Err joins all errors, or returns nil when the result is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Validate validates the configuration and returns validation results
func (c *Config) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(c.Platform.ProjectID) == "" {
		result.AddError("platform.project_id", "", "project id is required")
	}
	if strings.TrimSpace(c.Platform.Region) == "" {
		result.AddError("platform.region", "", "region is required")
	}
	if strings.TrimSpace(c.Platform.Model) == "" {
		result.AddError("platform.model", "", "model is required")
	} else if !models.IsValidModel(c.Platform.Model) {
		result.AddError("platform.model", c.Platform.Model, "unrecognised model resource name")
	}
	if c.Platform.Endpoint != "" {
		if u, err := url.Parse(c.Platform.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			result.AddError("platform.endpoint", c.Platform.Endpoint, "invalid URL format")
		}
	}
	if c.Platform.ProxyURL != "" {
		if _, err := url.Parse(c.Platform.ProxyURL); err != nil {
			result.AddError("platform.proxy_url", c.Platform.ProxyURL, "invalid proxy URL format")
		}
	}
	if c.Platform.TimeoutSec < 1 {
		result.AddError("platform.timeout_sec", strconv.Itoa(c.Platform.TimeoutSec), "must be positive")
	} else if c.Platform.TimeoutSec > 600 {
		result.AddWarning("platform.timeout_sec", strconv.Itoa(c.Platform.TimeoutSec),
			"timeout_sec above 600 leaves a stuck call hanging for a long time")
	}
	if c.Platform.DialTimeoutSec < 1 || c.Platform.DialTimeoutSec > 300 {
		result.AddWarning("platform.dial_timeout_sec", strconv.Itoa(c.Platform.DialTimeoutSec),
			"dial_timeout_sec should be between 1 and 300")
	}
	if t := c.Platform.Generation.Temperature; t != nil && (*t < 0 || *t > 2) {
		result.AddError("platform.generation.temperature", strconv.FormatFloat(*t, 'f', -1, 64), "must be between 0 and 2")
	}
	if m := c.Platform.Generation.MaxOutputTokens; m != nil && *m <= 0 {
		result.AddError("platform.generation.max_output_tokens", strconv.Itoa(*m), "must be positive")
	}

	sa := c.ServiceAccount
	if sa.CredentialsFile == "" {
		if strings.TrimSpace(sa.ClientEmail) == "" {
			result.AddError("service_account.client_email", "", "client email is required without a credentials file")
		}
		if strings.TrimSpace(sa.PrivateKey) == "" {
			result.AddError("service_account.private_key", "", "private key is required without a credentials file")
		}
	} else if _, err := os.Stat(sa.CredentialsFile); err != nil {
		result.AddError("service_account.credentials_file", sa.CredentialsFile, err.Error())
	}
	if sa.TokenURI != "" {
		if u, err := url.Parse(sa.TokenURI); err != nil || u.Scheme == "" {
			result.AddError("service_account.token_uri", sa.TokenURI, "invalid URL format")
		}
	}

	if _, err := c.Safety.Policy(); err != nil {
		result.AddError("safety", c.Safety.Threshold, err.Error())
	}

	if c.Attachments.MaxBytes <= 0 {
		result.AddError("attachments.max_bytes", strconv.FormatInt(c.Attachments.MaxBytes, 10), "must be positive")
	}

	if c.Report.Enabled {
		switch c.Report.Backend {
		case "redis":
			if c.Report.RedisAddr == "" {
				result.AddError("report.redis_addr", "", "required for the redis backend")
			}
		case "file":
			if c.Report.Dir == "" {
				result.AddError("report.dir", "", "required for the file backend")
			}
		default:
			result.AddError("report.backend", c.Report.Backend, "must be redis or file")
		}
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		result.AddError("metrics.listen", "", "required when metrics are enabled")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		result.AddError("tracing.sample_ratio", strconv.FormatFloat(c.Tracing.SampleRatio, 'g', -1, 64), "must be between 0 and 1")
	}

	return result
}

// ValidateAndExpandPaths validates and expands file paths in configuration
func (c *Config) ValidateAndExpandPaths() error {
	var err error

	if c.ServiceAccount.CredentialsFile != "" {
		c.ServiceAccount.CredentialsFile, err = expandPath(c.ServiceAccount.CredentialsFile)
		if err != nil {
			return fmt.Errorf("invalid credentials_file path: %v", err)
		}
	}

	if c.Security.LogFile != "" {
		c.Security.LogFile, err = expandPath(c.Security.LogFile)
		if err != nil {
			return fmt.Errorf("invalid log_file path: %v", err)
		}
	}

	if c.Usage.Dir != "" {
		c.Usage.Dir, err = expandPath(c.Usage.Dir)
		if err != nil {
			return fmt.Errorf("invalid usage dir: %v", err)
		}
	}

	if c.Report.Dir != "" {
		c.Report.Dir, err = expandPath(c.Report.Dir)
		if err != nil {
			return fmt.Errorf("invalid report dir: %v", err)
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in file paths
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %v", err)
		}
		path = filepath.Join(home, path[2:])
	}

	path = os.ExpandEnv(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot convert to absolute path: %v", err)
	}

	return absPath, nil
}
