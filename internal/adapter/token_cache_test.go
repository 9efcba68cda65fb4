package adapter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koalaroute/koalaroute/models"
)

func TestTokenCache_FetchesOnce(t *testing.T) {
	var calls atomic.Int32
	cache := newTokenCache(func(ctx context.Context) (models.AccessToken, error) {
		calls.Add(1)
		return models.AccessToken{Value: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}, time.Minute)

	for i := 0; i < 5; i++ {
		value, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", value)
	}

	assert.Equal(t, int32(1), calls.Load(), "valid cached token must not be re-exchanged")
}

// TestTokenCache_ConcurrentGetsCollapse verifies that racing callers share a
// single upstream exchange instead of issuing one each.
func TestTokenCache_ConcurrentGetsCollapse(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	cache := newTokenCache(func(ctx context.Context) (models.AccessToken, error) {
		calls.Add(1)
		<-release
		return models.AccessToken{Value: "tok-shared", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}, time.Minute)

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]string, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = value
		}(i)
	}

	// Let every goroutine queue on the in-flight exchange before it finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent stale reads must collapse into one exchange")
	for _, value := range results {
		assert.Equal(t, "tok-shared", value)
	}
}

func TestTokenCache_RefreshesStaleToken(t *testing.T) {
	var calls atomic.Int32
	cache := newTokenCache(func(ctx context.Context) (models.AccessToken, error) {
		n := calls.Add(1)
		// First token expires inside the safety margin.
		expiry := time.Now().Add(30 * time.Second)
		if n > 1 {
			expiry = time.Now().Add(time.Hour)
		}
		return models.AccessToken{Value: "tok", ExpiresAt: expiry}, nil
	}, time.Minute)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	_, err = cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load(), "a token inside the margin must be refreshed")
}

func TestTokenCache_FetchFailureNotCached(t *testing.T) {
	var calls atomic.Int32
	cache := newTokenCache(func(ctx context.Context) (models.AccessToken, error) {
		if calls.Add(1) == 1 {
			return models.AccessToken{}, errors.New("exchange refused")
		}
		return models.AccessToken{Value: "tok-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}, time.Minute)

	_, err := cache.Get(context.Background())
	require.Error(t, err)

	value, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", value)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenCache_Invalidate(t *testing.T) {
	var calls atomic.Int32
	cache := newTokenCache(func(ctx context.Context) (models.AccessToken, error) {
		calls.Add(1)
		return models.AccessToken{Value: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}, time.Minute)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
