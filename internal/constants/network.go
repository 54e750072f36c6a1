package constants

import "time"

// HTTP client transport settings.
const (
	BaseMaxIdleConns        = 16
	BaseMaxIdleConnsPerHost = 4
	BaseIdleConnTimeout     = 90 * time.Second
	DefaultKeepAlive        = 30 * time.Second

	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultExpectContinueTimeout = 2 * time.Second
)

// Google endpoints and defaults.
const (
	DefaultTokenURI    = "https://oauth2.googleapis.com/token"
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	DefaultRegion      = "us-central1"
	DefaultModel       = "publishers/google/models/gemini-experimental"
)
