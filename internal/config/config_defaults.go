package config

import (
	"vertexchat-go/internal/constants"
	"vertexchat-go/internal/monitoring/tracing"
)

const (
	DefaultAttachmentMaxBytes = 20 << 20
	DefaultRedisAddr          = "127.0.0.1:6379"
	DefaultRedisPrefix        = "vertexchat:"
	DefaultReportTTLHours     = 24 * 7
	DefaultMetricsListen      = "127.0.0.1:9464"
	DefaultReportBackend      = "redis"
	DefaultReportDir          = "~/.vertexchat/transcripts"
	DefaultSafetyThreshold    = "BLOCK_ONLY_HIGH"
	DefaultTraceBatchSec      = 5
)

// Default returns a configuration with every optional field populated.
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			Region:                 constants.DefaultRegion,
			Model:                  constants.DefaultModel,
			TimeoutSec:             int(constants.PlatformRequestTimeout.Seconds()),
			DialTimeoutSec:         int(constants.DefaultDialTimeout.Seconds()),
			TLSHandshakeTimeoutSec: int(constants.DefaultTLSHandshakeTimeout.Seconds()),
		},
		ServiceAccount: ServiceAccountConfig{
			TokenURI: constants.DefaultTokenURI,
			Scope:    constants.CloudPlatformScope,
		},
		Safety: SafetyConfig{
			Threshold: DefaultSafetyThreshold,
		},
		Attachments: AttachmentConfig{
			MaxBytes: DefaultAttachmentMaxBytes,
		},
		Report: ReportConfig{
			Backend:     DefaultReportBackend,
			Dir:         DefaultReportDir,
			RedisAddr:   DefaultRedisAddr,
			RedisPrefix: DefaultRedisPrefix,
			TTLHours:    DefaultReportTTLHours,
		},
		Metrics: MetricsConfig{
			Listen: DefaultMetricsListen,
		},
		Tracing: TracingConfig{
			Insecure:        true,
			ServiceName:     tracing.DefaultServiceName,
			BatchTimeoutSec: DefaultTraceBatchSec,
		},
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Platform.Region == "" {
		c.Platform.Region = d.Platform.Region
	}
	if c.Platform.Model == "" {
		c.Platform.Model = d.Platform.Model
	}
	if c.Platform.TimeoutSec <= 0 {
		c.Platform.TimeoutSec = d.Platform.TimeoutSec
	}
	if c.Platform.DialTimeoutSec <= 0 {
		c.Platform.DialTimeoutSec = d.Platform.DialTimeoutSec
	}
	if c.Platform.TLSHandshakeTimeoutSec <= 0 {
		c.Platform.TLSHandshakeTimeoutSec = d.Platform.TLSHandshakeTimeoutSec
	}
	if c.ServiceAccount.TokenURI == "" {
		c.ServiceAccount.TokenURI = d.ServiceAccount.TokenURI
	}
	if c.ServiceAccount.Scope == "" {
		c.ServiceAccount.Scope = d.ServiceAccount.Scope
	}
	if c.Safety.Threshold == "" {
		c.Safety.Threshold = d.Safety.Threshold
	}
	if c.Attachments.MaxBytes <= 0 {
		c.Attachments.MaxBytes = d.Attachments.MaxBytes
	}
	if c.Report.Backend == "" {
		c.Report.Backend = d.Report.Backend
	}
	if c.Report.Dir == "" {
		c.Report.Dir = d.Report.Dir
	}
	if c.Report.RedisAddr == "" {
		c.Report.RedisAddr = d.Report.RedisAddr
	}
	if c.Report.RedisPrefix == "" {
		c.Report.RedisPrefix = d.Report.RedisPrefix
	}
	if c.Report.TTLHours <= 0 {
		c.Report.TTLHours = d.Report.TTLHours
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = d.Metrics.Listen
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = d.Tracing.ServiceName
	}
	if c.Tracing.BatchTimeoutSec <= 0 {
		c.Tracing.BatchTimeoutSec = d.Tracing.BatchTimeoutSec
	}
}
