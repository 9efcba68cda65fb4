package adapter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/koalaroute/koalaroute/models"
)

// defaultTokenMargin is how long before the upstream expiry a cached token
// is already considered stale. Refreshing early keeps in-flight requests
// from racing the hard expiry.
const defaultTokenMargin = 60 * time.Second

// tokenFetchFunc exchanges static provider credentials for a fresh bearer
// token.
type tokenFetchFunc func(ctx context.Context) (models.AccessToken, error)

// tokenCache holds one bearer token for an OAuth2-style provider and
// refreshes it on demand. Concurrent callers that find the token stale are
// collapsed into a single upstream exchange via singleflight; a failed
// exchange is reported to every waiter and nothing is cached.
type tokenCache struct {
	fetch  tokenFetchFunc
	margin time.Duration
	now    func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	token models.AccessToken
}

func newTokenCache(fetch tokenFetchFunc, margin time.Duration) *tokenCache {
	if margin <= 0 {
		margin = defaultTokenMargin
	}
	return &tokenCache{fetch: fetch, margin: margin, now: time.Now}
}

// Get returns a bearer token that is valid for at least the configured
// margin, exchanging credentials upstream when the cached one is stale.
func (c *tokenCache) Get(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if !token.Stale(c.now(), c.margin) {
		return token.Value, nil
	}

	value, err, _ := c.group.Do("token", func() (any, error) {
		// Another waiter may have refreshed while this one queued.
		c.mu.RLock()
		cached := c.token
		c.mu.RUnlock()
		if !cached.Stale(c.now(), c.margin) {
			return cached.Value, nil
		}

		fresh, fetchErr := c.fetch(ctx)
		if fetchErr != nil {
			return "", fetchErr
		}

		c.mu.Lock()
		c.token = fresh
		c.mu.Unlock()
		return fresh.Value, nil
	})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}

// Invalidate drops the cached token so the next Get performs a fresh
// exchange. Called when the upstream rejects a token the cache still
// considered valid.
func (c *tokenCache) Invalidate() {
	c.mu.Lock()
	c.token = models.AccessToken{}
	c.mu.Unlock()
}
