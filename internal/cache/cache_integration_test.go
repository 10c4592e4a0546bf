//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/vidtrack/vidtrack/internal/testutil"
)

func newTestCache(t *testing.T) (context.Context, *Cache) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	return ctx, c
}

func TestIntegrationCache_LinkRoundTrip(t *testing.T) {
	ctx, c := newTestCache(t)

	slug := testutil.UniqueSlug("cached")
	link := testutil.NewTestLink(t, slug)

	if _, err := c.GetLink(ctx, slug); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("cold lookup error = %v, want ErrCacheMiss", err)
	}

	if err := c.SetLink(ctx, link); err != nil {
		t.Fatalf("SetLink: %v", err)
	}

	cached, err := c.GetLink(ctx, slug)
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}
	if cached.Destination != link.DestinationURL {
		t.Errorf("destination = %q, want %q", cached.Destination, link.DestinationURL)
	}

	if err := c.DeleteLink(ctx, slug); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if _, err := c.GetLink(ctx, slug); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("post-delete lookup error = %v, want ErrCacheMiss", err)
	}
}

func TestIntegrationCache_NegativeCache(t *testing.T) {
	ctx, c := newTestCache(t)

	slug := testutil.UniqueSlug("ghost")

	negative, err := c.IsNegativelyCached(ctx, slug)
	if err != nil {
		t.Fatalf("IsNegativelyCached: %v", err)
	}
	if negative {
		t.Fatal("fresh slug should not be negatively cached")
	}

	if err := c.SetNegativeCache(ctx, slug); err != nil {
		t.Fatalf("SetNegativeCache: %v", err)
	}
	negative, err = c.IsNegativelyCached(ctx, slug)
	if err != nil {
		t.Fatalf("IsNegativelyCached: %v", err)
	}
	if !negative {
		t.Error("slug should be negatively cached")
	}

	// A successful SetLink clears the tombstone
	if err := c.SetLink(ctx, testutil.NewTestLink(t, slug)); err != nil {
		t.Fatalf("SetLink: %v", err)
	}
	negative, err = c.IsNegativelyCached(ctx, slug)
	if err != nil {
		t.Fatalf("IsNegativelyCached: %v", err)
	}
	if negative {
		t.Error("SetLink should clear the negative entry")
	}
}

func TestIntegrationCache_IPRateLimit(t *testing.T) {
	ctx, c := newTestCache(t)

	ip := "203.0.113.99"
	burst := 3

	for i := 0; i < burst; i++ {
		res, err := c.CheckIPRateLimit(ctx, ip, 1, burst)
		if err != nil {
			t.Fatalf("CheckIPRateLimit: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be inside burst", i)
		}
	}

	res, err := c.CheckIPRateLimit(ctx, ip, 1, burst)
	if err != nil {
		t.Fatalf("CheckIPRateLimit: %v", err)
	}
	if res.Allowed {
		t.Fatal("burst exhausted, request should be limited")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("retry_after = %v, want > 0", res.RetryAfter)
	}

	// A different client keeps its own bucket
	other, err := c.CheckIPRateLimit(ctx, "198.51.100.1", 1, burst)
	if err != nil {
		t.Fatalf("CheckIPRateLimit other: %v", err)
	}
	if !other.Allowed {
		t.Error("distinct client should not share the bucket")
	}
}
