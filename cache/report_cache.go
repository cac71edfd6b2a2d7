package cache

import (
	"context"
	"fmt"
	"time"
)

// Report kinds used as cache key segments
const (
	ReportCorrelation = "correlation"
	ReportLevels      = "levels"
	ReportTrend       = "trend"
	ReportInsights    = "insights"
	ReportOptimal     = "optimal"
)

// ByteStore is the raw payload store behind the report cache.
// *RedisClient is the production implementation; tests substitute an
// in-memory store.
type ByteStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, payload []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ReportCache provides TTL caching for derived pattern reports, keyed by
// report kind, user and request parameters. Reports are stored as the
// serialized bytes of the original computation; a hit within the TTL
// returns those exact bytes. Entries expire only by TTL, never on new
// journal data.
type ReportCache struct {
	store ByteStore
}

// NewReportCache creates a report cache backed by Redis. A nil client
// disables caching.
func NewReportCache(redis *RedisClient) *ReportCache {
	c := &ReportCache{}
	if redis != nil {
		c.store = redis
	}
	return c
}

// NewReportCacheWithStore creates a report cache over an arbitrary byte
// store
func NewReportCacheWithStore(store ByteStore) *ReportCache {
	return &ReportCache{store: store}
}

// Enabled reports whether a cache backend is available
func (c *ReportCache) Enabled() bool {
	return c != nil && c.store != nil
}

// GetReport retrieves a cached report payload.
// Returns the payload and true if found, nil and false otherwise.
func (c *ReportCache) GetReport(ctx context.Context, kind string, userID int64, params string) ([]byte, bool) {
	if c.store == nil {
		return nil, false
	}

	payload, err := c.store.GetBytes(ctx, reportKey(kind, userID, params))
	if err != nil {
		return nil, false
	}

	return payload, true
}

// SetReport caches a report payload for a user with the given TTL
func (c *ReportCache) SetReport(ctx context.Context, kind string, userID int64, params string, payload []byte, ttl time.Duration) error {
	if c.store == nil {
		return fmt.Errorf("report cache backend not available")
	}

	return c.store.SetBytes(ctx, reportKey(kind, userID, params), payload, ttl)
}

// Invalidate drops a cached report. Only used by operational tooling;
// normal flow lets entries age out.
func (c *ReportCache) Invalidate(ctx context.Context, kind string, userID int64, params string) error {
	if c.store == nil {
		return fmt.Errorf("report cache backend not available")
	}

	return c.store.Delete(ctx, reportKey(kind, userID, params))
}

func reportKey(kind string, userID int64, params string) string {
	return fmt.Sprintf("patterns:%s:%d:%s", kind, userID, params)
}
