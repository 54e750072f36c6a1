package config

// Config is the runtime configuration. It is assembled once at startup by
// Load and treated as read-only afterwards.
type Config struct {
	Platform       PlatformConfig       `yaml:"platform" json:"platform"`
	ServiceAccount ServiceAccountConfig `yaml:"service_account" json:"service_account"`
	Safety         SafetyConfig         `yaml:"safety" json:"safety"`
	Attachments    AttachmentConfig     `yaml:"attachments" json:"attachments"`
	Security       SecurityConfig       `yaml:"security" json:"security"`
	Report         ReportConfig         `yaml:"report" json:"report"`
	Metrics        MetricsConfig        `yaml:"metrics" json:"metrics"`
	Usage          UsageConfig          `yaml:"usage" json:"usage"`
	Tracing        TracingConfig        `yaml:"tracing" json:"tracing"`
}
