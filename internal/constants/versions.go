package constants

// Version information (injected at build time via -ldflags).
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetFullVersion returns a one-line build description.
func GetFullVersion() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}
