package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vertexchat-go/internal/constants"
	"vertexchat-go/internal/events"
	"vertexchat-go/internal/monitoring"
	"vertexchat-go/internal/oauth"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenIssuer exchanges a signed assertion for an access token.
type TokenIssuer interface {
	Issue(ctx context.Context, assertion oauth.TokenAssertion) (oauth.AccessToken, error)
}

// Options configures a TokenCache. Zero fields take defaults.
type Options struct {
	Account   oauth.ServiceAccount
	Scope     string
	Key       string
	TTL       time.Duration
	Store     Store
	Refresh   RefreshCoordinator
	Publisher events.Publisher
	Now       func() time.Time
}

// TokenCache hands out platform access tokens, issuing a new one only when
// the cached token has expired. Concurrent misses share one issuance.
type TokenCache struct {
	issuer    TokenIssuer
	account   oauth.ServiceAccount
	scope     string
	key       string
	ttl       time.Duration
	store     Store
	refresh   RefreshCoordinator
	publisher events.Publisher
	now       func() time.Time

	mu      sync.Mutex
	lastErr error
}

// NewTokenCache builds a cache in front of issuer.
func NewTokenCache(issuer TokenIssuer, opts Options) *TokenCache {
	c := &TokenCache{
		issuer:    issuer,
		account:   opts.Account,
		scope:     opts.Scope,
		key:       opts.Key,
		ttl:       opts.TTL,
		store:     opts.Store,
		refresh:   opts.Refresh,
		publisher: opts.Publisher,
		now:       opts.Now,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.scope == "" {
		c.scope = constants.CloudPlatformScope
	}
	if c.key == "" {
		c.key = constants.TokenCacheKey
	}
	if c.ttl <= 0 {
		c.ttl = constants.TokenCacheTTL
	}
	if c.store == nil {
		c.store = NewMemoryStore(c.now)
	}
	if c.refresh == nil {
		c.refresh = NewInflightCoordinator()
	}
	return c
}

// Token returns the cached token while it is still valid, otherwise issues
// a new one. On failure nothing is cached and every caller that waited on
// the same issuance receives the same error.
func (c *TokenCache) Token(ctx context.Context) (oauth.AccessToken, error) {
	if tok, ok := c.store.Get(c.key); ok {
		monitoring.RecordTokenLookup("hit")
		return tok, nil
	}

	tok, shared, err := c.refresh.Do(ctx, c.key, c.issue)
	if err != nil {
		if ctx.Err() == nil {
			monitoring.RecordTokenLookup("error")
		}
		return oauth.AccessToken{}, err
	}
	if shared {
		monitoring.RecordTokenLookup("shared")
	} else {
		monitoring.RecordTokenLookup("miss")
	}
	return tok, nil
}

func (c *TokenCache) issue(ctx context.Context) (oauth.AccessToken, error) {
	// A flight that finished just before this one started may have
	// already filled the store.
	if tok, ok := c.store.Get(c.key); ok {
		return tok, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.TokenRequestTimeout)
	defer cancel()

	start := c.now()
	assertion := oauth.NewTokenAssertion(c.account, c.scope, start)
	tok, err := c.issuer.Issue(ctx, assertion)
	monitoring.RecordTokenIssuance(c.now().Sub(start), err)
	c.setLastErr(err)
	if err != nil {
		log.WithError(err).WithField("client_email", c.account.ClientEmail).Warn("platform token issuance failed")
		c.publish(ctx, events.TopicTokenFailed, map[string]any{"error": err.Error()})
		return oauth.AccessToken{}, err
	}

	// The entry lives for the cache TTL from fetch, whatever the provider
	// reports as the token's own lifetime.
	expiresAt := start.Add(c.ttl)
	c.store.Set(c.key, tok, expiresAt)

	log.WithFields(log.Fields{
		"client_email": c.account.ClientEmail,
		"expires_at":   expiresAt.Format(time.RFC3339),
	}).Debug("platform token issued")
	c.publish(ctx, events.TopicTokenIssued, map[string]any{"expires_at": expiresAt})
	return tok, nil
}

func (c *TokenCache) publish(ctx context.Context, topic string, payload map[string]any) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(ctx, topic, payload, map[string]string{"client_email": c.account.ClientEmail})
}

func (c *TokenCache) setLastErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Ready reports token health without starting an issuance. A cache that has
// never issued is ready; a cached token the provider no longer honours is
// not, and neither is a cache whose latest issuance failed.
func (c *TokenCache) Ready() error {
	if tok, ok := c.store.Get(c.key); ok {
		if tok.ValidUntil.IsZero() || tok.Valid(c.now()) {
			return nil
		}
		return fmt.Errorf("cached platform token expired at %s", tok.ValidUntil.Format(time.RFC3339))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Invalidate drops the cached token so the next Token call issues anew.
func (c *TokenCache) Invalidate() {
	c.store.Delete(c.key)
}

// TokenSource adapts the cache to oauth2.TokenSource. ctx bounds every
// issuance triggered through the returned source.
func (c *TokenCache) TokenSource(ctx context.Context) oauth2.TokenSource {
	return cacheTokenSource{ctx: ctx, cache: c}
}

type cacheTokenSource struct {
	ctx   context.Context
	cache *TokenCache
}

func (s cacheTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.cache.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}
