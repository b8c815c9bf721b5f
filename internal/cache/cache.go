package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

// DefaultTTL is how long a snapshot stays fresh
const DefaultTTL = 30 * time.Minute

// Loader supplies the full airport collection, ordered by relevance
type Loader interface {
	ListAirports(ctx context.Context) ([]*types.Airport, error)
}

// Snapshot is an immutable copy of the airport collection.
// It is never modified after publication.
type Snapshot struct {
	Airports  []*types.Airport
	LoadedAt  time.Time
	ExpiresAt time.Time
}

// Fresh reports whether the snapshot is still valid at now
func (s *Snapshot) Fresh(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// RecordCache holds the current snapshot and refreshes it from the loader on expiry
type RecordCache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// Option configures a RecordCache
type Option func(*RecordCache)

// WithTTL sets the snapshot lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *RecordCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *RecordCache) {
		c.now = now
	}
}

// WithLogger sets the logger used for refresh events
func WithLogger(logger *slog.Logger) Option {
	return func(c *RecordCache) {
		c.logger = logger
	}
}

// New creates an empty cache. The first Load fetches from the loader.
func New(loader Loader, opts ...Option) *RecordCache {
	c := &RecordCache{
		loader: loader,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured snapshot lifetime
func (c *RecordCache) TTL() time.Duration {
	return c.ttl
}

// Load returns the current snapshot, refreshing it first when it is missing
// or expired. Concurrent callers that find the snapshot stale share a single
// refresh. On error the previous snapshot, if any, stays published.
func (c *RecordCache) Load(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap.Fresh(c.now()) {
		cacheRequestsTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}
	cacheRequestsTotal.WithLabelValues("miss").Inc()

	// The shared scan must outlive any single caller giving up
	scanCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("snapshot", func() (interface{}, error) {
		return c.refresh(scanCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *RecordCache) refresh(ctx context.Context) (*Snapshot, error) {
	// Another caller may have published while this one waited for the group
	if snap := c.current.Load(); snap.Fresh(c.now()) {
		return snap, nil
	}

	start := time.Now()
	airports, err := c.loader.ListAirports(ctx)
	if err != nil {
		cacheRefreshesTotal.WithLabelValues("error").Inc()
		c.logger.Error("snapshot refresh failed", "error", err)
		return nil, fmt.Errorf("failed to refresh airport snapshot: %w", err)
	}

	now := c.now()
	snap := &Snapshot{
		Airports:  airports,
		LoadedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.current.Store(snap)

	cacheRefreshesTotal.WithLabelValues("success").Inc()
	cacheSnapshotAirports.Set(float64(len(airports)))
	c.logger.Info("airport snapshot refreshed",
		"airports", len(airports),
		"expires_at", snap.ExpiresAt,
		"duration", time.Since(start))

	return snap, nil
}
