package cache

import (
	"context"

	"github.com/tobikareem/desola-flights/internal/models"
	"github.com/tobikareem/desola-flights/internal/providers"
)

// CachedProvider composes the two-tier lookup around any adapter: hit means
// no network call, miss means a live search whose result is written back.
type CachedProvider struct {
	inner providers.Provider
	tier  *TwoTier
}

func WrapProvider(inner providers.Provider, tier *TwoTier) *CachedProvider {
	return &CachedProvider{inner: inner, tier: tier}
}

func (c *CachedProvider) Name() string {
	return c.inner.Name()
}

func (c *CachedProvider) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	key := SearchKey(c.inner.Name(), query.Origin, query.Destination)

	if resp, ok := c.tier.Get(ctx, key); ok {
		return resp, nil
	}

	resp, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	c.tier.Put(key, resp)
	return resp, nil
}
