package queries

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// DefaultListingTTL bounds how long a listing can stay stale when an
// invalidation is missed.
const DefaultListingTTL = 5 * time.Minute

// ListingCache caches interview listings per owner. A nil *ListingCache is
// valid and caches nothing.
type ListingCache struct {
	cache   cache.Cache
	ttl     time.Duration
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewListingCache creates a listing cache on top of c.
func NewListingCache(c cache.Cache, ttl time.Duration, logger *slog.Logger) *ListingCache {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingCache{cache: c, ttl: ttl, metrics: observability.NoopMetrics{}, logger: logger}
}

// WithMetrics records hits and misses.
func (c *ListingCache) WithMetrics(metrics observability.Metrics) *ListingCache {
	if metrics != nil {
		c.metrics = metrics
	}
	return c
}

func listingKey(ownerEmail string) string {
	return "interviews:listing:" + ownerEmail
}

// Get returns the cached listing. Decode and backend failures count as misses.
func (c *ListingCache) Get(ctx context.Context, ownerEmail string) ([]InterviewSummary, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, listingKey(ownerEmail))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.WarnContext(ctx, "listing cache read failed", "owner_email", ownerEmail, "error", err)
		}
		c.metrics.Counter(observability.MetricCacheMisses, 1, observability.T("cache", "listing"))
		return nil, false
	}

	var summaries []InterviewSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable listing", "owner_email", ownerEmail, "error", err)
		c.metrics.Counter(observability.MetricCacheMisses, 1, observability.T("cache", "listing"))
		return nil, false
	}
	c.metrics.Counter(observability.MetricCacheHits, 1, observability.T("cache", "listing"))
	return summaries, true
}

// Put stores a listing.
func (c *ListingCache) Put(ctx context.Context, ownerEmail string, summaries []InterviewSummary) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, listingKey(ownerEmail), data, c.ttl)
}

// InvalidateListing drops the cached listing of an owner.
func (c *ListingCache) InvalidateListing(ctx context.Context, ownerEmail string) error {
	if c == nil {
		return nil
	}
	return c.cache.Delete(ctx, listingKey(ownerEmail))
}
