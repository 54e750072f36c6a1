package config

import (
	"os"
	"strconv"
	"strings"
)

func (c *Config) applyEnv() {
	c.Platform.ProjectID = firstNonEmpty(os.Getenv("VERTEX_PROJECT_ID"), c.Platform.ProjectID, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	c.Platform.Region = getenv("VERTEX_REGION", c.Platform.Region)
	c.Platform.Model = getenv("VERTEX_MODEL", c.Platform.Model)
	c.Platform.Endpoint = getenv("VERTEX_ENDPOINT", c.Platform.Endpoint)
	c.Platform.ProxyURL = getenv("VERTEX_PROXY_URL", c.Platform.ProxyURL)
	setIntFromEnv("VERTEX_TIMEOUT_SEC", func(n int) { c.Platform.TimeoutSec = n })
	setIntFromEnv("VERTEX_DIAL_TIMEOUT_SEC", func(n int) { c.Platform.DialTimeoutSec = n })
	setIntFromEnv("VERTEX_TLS_HANDSHAKE_TIMEOUT_SEC", func(n int) { c.Platform.TLSHandshakeTimeoutSec = n })
	setIntFromEnv("VERTEX_RESPONSE_HEADER_TIMEOUT_SEC", func(n int) { c.Platform.ResponseHeaderTimeoutSec = n })
	setIntFromEnv("VERTEX_MAX_OUTPUT_TOKENS", func(n int) { c.Platform.Generation.MaxOutputTokens = &n })
	setFloatFromEnv("VERTEX_TEMPERATURE", func(f float64) { c.Platform.Generation.Temperature = &f })
	if v := getenv("VERTEX_STOP_SEQUENCES", ""); v != "" {
		c.Platform.Generation.StopSequences = splitAndTrim(v, ",")
	}

	c.ServiceAccount.ClientEmail = getenv("VERTEX_CLIENT_EMAIL", c.ServiceAccount.ClientEmail)
	if v := getenv("VERTEX_PRIVATE_KEY", ""); v != "" {
		c.ServiceAccount.PrivateKey = unescapePEM(v)
	}
	c.ServiceAccount.PrivateKeyID = getenv("VERTEX_PRIVATE_KEY_ID", c.ServiceAccount.PrivateKeyID)
	c.ServiceAccount.TokenURI = getenv("VERTEX_TOKEN_URI", c.ServiceAccount.TokenURI)
	c.ServiceAccount.CredentialsFile = getenv("GOOGLE_APPLICATION_CREDENTIALS", c.ServiceAccount.CredentialsFile)

	c.Safety.Threshold = getenv("VERTEX_SAFETY_THRESHOLD", c.Safety.Threshold)
	setInt64FromEnv("ATTACHMENT_MAX_BYTES", func(n int64) { c.Attachments.MaxBytes = n })

	setToggleFromEnv("DEBUG", func(b bool) { c.Security.Debug = b })
	c.Security.LogFile = getenv("LOG_FILE", c.Security.LogFile)

	setToggleFromEnv("REPORT_ENABLED", func(b bool) { c.Report.Enabled = b })
	c.Report.Backend = getenv("REPORT_BACKEND", c.Report.Backend)
	c.Report.Dir = getenv("REPORT_DIR", c.Report.Dir)
	c.Report.RedisAddr = getenv("REDIS_ADDR", c.Report.RedisAddr)
	c.Report.RedisPassword = getenv("REDIS_PASSWORD", c.Report.RedisPassword)
	setIntFromEnv("REDIS_DB", func(n int) { c.Report.RedisDB = n })
	c.Report.RedisPrefix = getenv("REDIS_PREFIX", c.Report.RedisPrefix)
	setIntFromEnv("REPORT_TTL_HOURS", func(n int) { c.Report.TTLHours = n })

	setToggleFromEnv("METRICS_ENABLED", func(b bool) { c.Metrics.Enabled = b })
	c.Metrics.Listen = getenv("METRICS_LISTEN", c.Metrics.Listen)
	setIntFromEnv("METRICS_RATE_LIMIT_RPS", func(n int) { c.Metrics.RateLimitRPS = n })
	setIntFromEnv("METRICS_RATE_LIMIT_BURST", func(n int) { c.Metrics.RateLimitBurst = n })

	c.Usage.Dir = getenv("USAGE_DIR", c.Usage.Dir)
	setIntFromEnv("USAGE_PERSIST_INTERVAL_SEC", func(n int) { c.Usage.PersistIntervalSec = n })

	c.Tracing.Endpoint = getenv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	setToggleFromEnv("OTEL_EXPORTER_OTLP_INSECURE", func(b bool) { c.Tracing.Insecure = b })
	c.Tracing.ServiceName = getenv("OTEL_SERVICE_NAME", c.Tracing.ServiceName)
	setFloatFromEnv("TRACING_SAMPLE_RATIO", func(f float64) { c.Tracing.SampleRatio = f })
	setIntFromEnv("TRACING_BATCH_TIMEOUT_SEC", func(n int) { c.Tracing.BatchTimeoutSec = n })
}

// unescapePEM turns the literal \n sequences common in single-line env
// values back into newlines.
func unescapePEM(v string) string {
	if strings.Contains(v, `\n`) && !strings.Contains(v, "\n") {
		return strings.ReplaceAll(v, `\n`, "\n")
	}
	return v
}

func setFloatFromEnv(key string, setter func(float64)) {
	if v := getenv(key, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			setter(f)
		}
	}
}

func setInt64FromEnv(key string, setter func(int64)) {
	if v := getenv(key, ""); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			setter(n)
		}
	}
}
