package constants

import "time"

const (
	// TokenCacheKey is the fixed key the bearer token is stored under.
	TokenCacheKey = "vertex_platform_token"
	// TokenCacheTTL is how long a fetched token is reused. It is kept at or
	// below the provider's own expiry so a cached token is never stale.
	TokenCacheTTL = 60 * time.Minute
)
