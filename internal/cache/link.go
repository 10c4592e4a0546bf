package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vidtrack/vidtrack/internal/model"
)

// Cache key prefixes and TTLs.
const (
	linkKeyPrefix     = "link:"
	negCacheKeySuffix = ":neg"

	// DefaultLinkTTL is the TTL for cached link data.
	DefaultLinkTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetLink retrieves a link from cache by slug.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, slug string) (*model.CachedLink, error) {
	key := linkKeyPrefix + slug

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	return &model.CachedLink{
		Destination: result["destination"],
		Title:       result["title"],
	}, nil
}

// SetLink stores a link in cache for the redirect hot path.
func (c *Cache) SetLink(ctx context.Context, link *model.Link) error {
	key := linkKeyPrefix + link.Slug
	cached := link.ToCachedLink()

	fields := map[string]any{
		"destination": cached.Destination,
		"title":       cached.Title,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultLinkTTL)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}

	return nil
}

// DeleteLink removes a link from cache.
func (c *Cache) DeleteLink(ctx context.Context, slug string) error {
	key := linkKeyPrefix + slug

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete link from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a slug is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, slug string) (bool, error) {
	key := linkKeyPrefix + slug + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a slug as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, slug string) error {
	key := linkKeyPrefix + slug + negCacheKeySuffix

	if err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
