package config

// PlatformConfig addresses the generation endpoint.
type PlatformConfig struct {
	ProjectID string `yaml:"project_id" json:"project_id"`
	Region    string `yaml:"region" json:"region"`
	Model     string `yaml:"model" json:"model"`
	// Endpoint replaces https://{region}-aiplatform.googleapis.com when set.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	ProxyURL string `yaml:"proxy_url" json:"proxy_url"`

	TimeoutSec               int `yaml:"timeout_sec" json:"timeout_sec"`
	DialTimeoutSec           int `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	TLSHandshakeTimeoutSec   int `yaml:"tls_handshake_timeout_sec" json:"tls_handshake_timeout_sec"`
	ResponseHeaderTimeoutSec int `yaml:"response_header_timeout_sec" json:"response_header_timeout_sec"`

	Generation GenerationConfig `yaml:"generation" json:"generation"`
	// PayloadOverrides are dot-paths set on every request body just before
	// it is sent. A nil value deletes the path.
	PayloadOverrides map[string]any `yaml:"payload_overrides" json:"payload_overrides"`
}

// GenerationConfig holds optional sampling parameters. Unset fields are
// left to the server's defaults.
type GenerationConfig struct {
	Temperature     *float64 `yaml:"temperature" json:"temperature"`
	TopP            *float64 `yaml:"top_p" json:"top_p"`
	TopK            *int     `yaml:"top_k" json:"top_k"`
	MaxOutputTokens *int     `yaml:"max_output_tokens" json:"max_output_tokens"`
	StopSequences   []string `yaml:"stop_sequences" json:"stop_sequences"`
}

// ServiceAccountConfig supplies the credentials exchanged for access
// tokens, either inline or through a Google JSON key file.
type ServiceAccountConfig struct {
	ClientEmail     string `yaml:"client_email" json:"client_email"`
	PrivateKey      string `yaml:"private_key" json:"private_key"`
	PrivateKeyID    string `yaml:"private_key_id" json:"private_key_id"`
	TokenURI        string `yaml:"token_uri" json:"token_uri"`
	Scope           string `yaml:"scope" json:"scope"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// SafetyConfig sets the block threshold sent with every request.
type SafetyConfig struct {
	Threshold string `yaml:"threshold" json:"threshold"`
	// Categories overrides the threshold per HARM_CATEGORY_* name.
	Categories map[string]string `yaml:"categories" json:"categories"`
}

// AttachmentConfig bounds files read for upload.
type AttachmentConfig struct {
	MaxBytes int64 `yaml:"max_bytes" json:"max_bytes"`
}

// SecurityConfig 日志和调试配置
type SecurityConfig struct {
	Debug   bool   `yaml:"debug" json:"debug"`
	LogFile string `yaml:"log_file" json:"log_file"`
}

// ReportConfig enables the transcript reporter. Backend is "redis" or
// "file"; Dir is used by the file backend.
type ReportConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	Backend       string `yaml:"backend" json:"backend"`
	Dir           string `yaml:"dir" json:"dir"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix"`
	TTLHours      int    `yaml:"ttl_hours" json:"ttl_hours"`
}

// MetricsConfig controls the ops listener serving /metrics and /healthz.
type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	Listen         string `yaml:"listen" json:"listen"`
	RateLimitRPS   int    `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int    `yaml:"rate_limit_burst" json:"rate_limit_burst"`
}

// TracingConfig drives the OTLP trace exporter. An empty Endpoint leaves
// tracing disabled.
type TracingConfig struct {
	Endpoint        string  `yaml:"endpoint" json:"endpoint"`
	Insecure        bool    `yaml:"insecure" json:"insecure"`
	ServiceName     string  `yaml:"service_name" json:"service_name"`
	SampleRatio     float64 `yaml:"sample_ratio" json:"sample_ratio"`
	BatchTimeoutSec int     `yaml:"batch_timeout_sec" json:"batch_timeout_sec"`
}

// UsageConfig controls token usage accounting. An empty Dir keeps the
// totals in memory only.
type UsageConfig struct {
	Dir                string `yaml:"dir" json:"dir"`
	PersistIntervalSec int    `yaml:"persist_interval_sec" json:"persist_interval_sec"`
}
