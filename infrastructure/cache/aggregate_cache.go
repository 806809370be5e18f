// Package cache provides the in-process read-through cache of the shared
// table's aggregate partition.
package cache

import (
	"sync"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/domain/invitelinks"

	"go.uber.org/zap"
)

// SharedAggregateCache caches the shared table's aggregate partition, keyed
// by sort key. It is populated once by a full paginated scan and kept in
// sync by merging every successful shared-table write. If the initial scan
// fails the cache is disabled for the rest of the process and reads fall
// back to live queries.
type SharedAggregateCache struct {
	mu       sync.RWMutex
	loaded   bool
	disabled bool
	entries  map[string]invitelinks.Aggregate
	logger   *zap.Logger
}

// NewSharedAggregateCache creates an empty, not-yet-populated cache.
func NewSharedAggregateCache(logger *zap.Logger) *SharedAggregateCache {
	return &SharedAggregateCache{
		entries: make(map[string]invitelinks.Aggregate),
		logger:  logger,
	}
}

// Snapshot returns all cached aggregates. ok is false while the cache is
// unpopulated or after it has been disabled.
func (c *SharedAggregateCache) Snapshot() ([]invitelinks.Aggregate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded || c.disabled {
		return nil, false
	}

	aggregates := make([]invitelinks.Aggregate, 0, len(c.entries))
	for _, agg := range c.entries {
		aggregates = append(aggregates, agg)
	}
	return aggregates, true
}

// Populate installs the result of the initial full partition scan.
func (c *SharedAggregateCache) Populate(aggregates []invitelinks.Aggregate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disabled {
		return
	}

	c.entries = make(map[string]invitelinks.Aggregate, len(aggregates))
	for _, agg := range aggregates {
		c.entries[agg.SK] = agg
	}
	c.loaded = true

	c.logger.Info("Shared aggregate cache populated",
		zap.Int("entries", len(aggregates)),
	)
}

// Disable turns the cache off for the remainder of the process.
func (c *SharedAggregateCache) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disabled = true
	c.loaded = false
	c.entries = make(map[string]invitelinks.Aggregate)

	c.logger.Warn("Shared aggregate cache disabled, falling back to live queries")
}

// Disabled reports whether the cache has been turned off.
func (c *SharedAggregateCache) Disabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disabled
}

// MergeOnWrite folds a successful shared-table write into the cached entry.
// Partial updates do not return the full item, so attributes the write left
// unset keep whatever the cache held before.
func (c *SharedAggregateCache) MergeOnWrite(update ports.AggregateUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || c.disabled {
		return
	}

	prior := c.entries[update.SK]
	prior.PK = invitelinks.AggregatePK
	prior.SK = update.SK
	prior.Campaign = update.Campaign
	prior.Category = update.Category
	if update.AccountSK != nil {
		prior.AccountSK = *update.AccountSK
	}
	if update.Domain != nil {
		prior.Domain = *update.Domain
	}
	if update.InviteCodes != nil {
		prior.InviteCodes = *update.InviteCodes
	}
	if update.Updated != nil {
		prior.Updated = *update.Updated
	}
	c.entries[update.SK] = prior
}

// InvalidateAll drops every cached entry; the next read repopulates.
func (c *SharedAggregateCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disabled {
		return
	}

	c.loaded = false
	c.entries = make(map[string]invitelinks.Aggregate)
}
