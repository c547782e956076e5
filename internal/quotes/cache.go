package quotes

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"

	"brokerage/internal/models"
)

// CachedClient caches successful lookups per symbol for a short TTL so
// portfolio rendering does not hit the feed once per line.
type CachedClient struct {
	next  Lookuper
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewCachedClient(next Lookuper, ttl time.Duration) (*CachedClient, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1e3,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl}, nil
}

func (c *CachedClient) Lookup(ctx context.Context, symbol string) (models.Quote, error) {
	if cached, ok := c.cache.Get(symbol); ok {
		if quote, ok := cached.(models.Quote); ok {
			return quote, nil
		}
	}
	quote, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}
	c.cache.SetWithTTL(symbol, quote, 1, c.ttl)
	return quote, nil
}

// Wait flushes pending cache writes. Useful in tests; ristretto admits
// entries asynchronously.
func (c *CachedClient) Wait() {
	c.cache.Wait()
}
