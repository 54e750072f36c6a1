package constants

import "time"

const (
	// PlatformRequestTimeout bounds a single generateContent call end to end.
	PlatformRequestTimeout = 300 * time.Second
	// TokenRequestTimeout bounds a single token exchange.
	TokenRequestTimeout = 30 * time.Second
	// AssertionLifetime is the exp-iat window of a signed token assertion.
	AssertionLifetime = time.Hour
	// OpsShutdownTimeout bounds graceful shutdown of the ops listener.
	OpsShutdownTimeout = 5 * time.Second
)
