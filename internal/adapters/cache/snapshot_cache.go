// Package cache provides a time-bounded cache in front of a row source.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/example/tkitrace/internal/ports/secondary"
)

// DefaultTTL is the validity window of a cached snapshot.
const DefaultTTL = 60 * time.Second

// SnapshotCache decorates a RowSource so repeated fetches within the TTL reuse
// one snapshot. Concurrent misses share a single upstream fetch. Failed fetches
// are never cached. Cached snapshots are shared and must be treated as read-only.
type SnapshotCache struct {
	source secondary.RowSource
	ttl    time.Duration
	log    logrus.FieldLogger
	now    func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	current *secondary.Snapshot
	expires time.Time
}

// Option configures a SnapshotCache.
type Option func(*SnapshotCache)

// WithClock replaces the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *SnapshotCache) { c.now = now }
}

// WithLogger sets the logger for refresh events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *SnapshotCache) { c.log = log }
}

// NewSnapshotCache wraps source. A ttl of zero disables caching.
func NewSnapshotCache(source secondary.RowSource, ttl time.Duration, opts ...Option) *SnapshotCache {
	c := &SnapshotCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the wrapped source.
func (c *SnapshotCache) Name() string {
	return c.source.Name()
}

// Fetch returns the cached snapshot while it is fresh, otherwise fetches a new one.
func (c *SnapshotCache) Fetch(ctx context.Context) (*secondary.Snapshot, error) {
	if snap := c.fresh(); snap != nil {
		return snap, nil
	}
	return c.load(ctx)
}

// Refresh fetches a new snapshot regardless of the cached one.
func (c *SnapshotCache) Refresh(ctx context.Context) (*secondary.Snapshot, error) {
	c.Invalidate()
	return c.load(ctx)
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.expires = time.Time{}
}

func (c *SnapshotCache) fresh() *secondary.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || !c.now().Before(c.expires) {
		return nil
	}
	return c.current
}

func (c *SnapshotCache) load(ctx context.Context) (*secondary.Snapshot, error) {
	v, err, shared := c.group.Do("snapshot", func() (interface{}, error) {
		// A caller that missed the cache may arrive after another flight filled it.
		if snap := c.fresh(); snap != nil {
			return snap, nil
		}

		start := c.now()
		snap, err := c.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.current = snap
			c.expires = c.now().Add(c.ttl)
			c.mu.Unlock()
		}

		c.log.WithFields(logrus.Fields{
			"source":   c.source.Name(),
			"snapshot": snap.ID,
			"rows":     len(snap.Rows),
			"elapsed":  c.now().Sub(start).String(),
			"ttl":      c.ttl.String(),
		}).Debug("snapshot fetched")
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.WithField("source", c.source.Name()).Debug("snapshot fetch shared with concurrent caller")
	}
	return v.(*secondary.Snapshot), nil
}

var _ secondary.RowSource = (*SnapshotCache)(nil)
