// Package index assembles the spatial index engine on top of a
// spatial.Scheme, so the same insert/remove/k-nearest/range/ray/frustum/
// collision algorithms run unmodified against either the Morton (octree)
// or Tetree key family (spec §5 "Spatial index engine").
package index

import "github.com/lucien-spatial/lucien/spatial"

// BalanceStrategy controls how aggressively the engine subdivides and
// merges nodes as entities move (spec §4.3 "pluggable balancing
// strategies").
type BalanceStrategy uint8

const (
	// BalanceDefault subdivides once a node's occupancy exceeds
	// MaxEntitiesPerNode and merges once a subdivided node's children are
	// jointly empty.
	BalanceDefault BalanceStrategy = iota

	// BalanceAggressive subdivides at half the configured threshold and
	// never auto-merges, favoring query speed over memory.
	BalanceAggressive

	// BalanceConservative subdivides only once occupancy exceeds twice the
	// configured threshold, favoring memory over query speed.
	BalanceConservative
)

// Config configures an Engine. Use New with Options rather than
// constructing Config directly, matching the functional-options shape the
// rest of the pack uses for multi-field configuration (SPEC_FULL.md
// "Configuration").
type Config struct {
	scheme              spatial.Scheme
	maxEntitiesPerNode  int
	maxLevel            uint8
	balance             BalanceStrategy
	autoBalance         bool
	useBulkLazyKeys     bool
	entityCachePerShard int
	poolHighWater       int
}

// Option configures an Engine at construction time.
type Option func(*Config)

func defaultConfig(scheme spatial.Scheme) Config {
	return Config{
		scheme:              scheme,
		maxEntitiesPerNode:  16,
		maxLevel:            spatial.MaxLevel,
		balance:             BalanceDefault,
		autoBalance:         true,
		useBulkLazyKeys:     true,
		entityCachePerShard: 1024,
		poolHighWater:       4096,
	}
}

// splitThreshold is the occupancy count past which a node subdivides,
// resolved per spec §4.3's three built-in strategies (see the
// BalanceStrategy constant docs above for the exact multiplier each one
// uses).
func (c Config) splitThreshold() int {
	switch c.balance {
	case BalanceAggressive:
		return c.maxEntitiesPerNode / 2
	case BalanceConservative:
		return c.maxEntitiesPerNode * 2
	default:
		return c.maxEntitiesPerNode
	}
}

// shouldSplit reports whether a node holding count entities has crossed
// this configuration's split threshold.
func (c Config) shouldSplit(count int) bool {
	return count > c.splitThreshold()
}

// shouldMerge reports whether a parent whose children jointly hold
// totalChildCount entities should fold them back in (spec §4.3 "Merge:
// when a node and all its existing sibling nodes together have fewer than
// merge_threshold entities"). BalanceAggressive never merges, trading
// memory for avoiding merge/split thrashing under churn.
func (c Config) shouldMerge(totalChildCount int) bool {
	if c.balance == BalanceAggressive {
		return false
	}
	return totalChildCount == 0
}

// WithMaxEntitiesPerNode sets the occupancy threshold that triggers
// subdivision under BalanceDefault (spec §4.3 "auto-subdivide").
func WithMaxEntitiesPerNode(n int) Option {
	return func(c *Config) { c.maxEntitiesPerNode = n }
}

// WithMaxLevel caps how deep the tree may subdivide.
func WithMaxLevel(level uint8) Option {
	return func(c *Config) { c.maxLevel = level }
}

// WithBalanceStrategy selects the subdivision/merge policy.
func WithBalanceStrategy(s BalanceStrategy) Option {
	return func(c *Config) { c.balance = s }
}

// WithEntityCacheSize sets the capacity of the engine's single entity LRU
// cache.
func WithEntityCacheSize(n int) Option {
	return func(c *Config) { c.entityCachePerShard = n }
}

// WithPoolHighWater caps how many pooled scratch buffers the engine keeps
// alive at once (spec §5 "capped object pool").
func WithPoolHighWater(n int) Option {
	return func(c *Config) { c.poolHighWater = n }
}

// WithAutoBalance toggles synchronous split/merge on insert/remove (spec
// §4.3 "Auto-balancing: when enabled, insert/remove check per-node
// thresholds and synchronously split/merge the affected subtree"). When
// disabled, the tree only subdivides or merges when Rebalance is called
// explicitly.
func WithAutoBalance(enabled bool) Option {
	return func(c *Config) { c.autoBalance = enabled }
}

// WithBulkLazyKeys toggles whether InsertBatch resolves tetree point
// entries through tetree.LazyKey and a per-goroutine PackedKeyCache during
// its parallel resolution phase, instead of calling Enclosing directly.
// The keys are resolved before the sort/placement phase either way. Has
// no effect on the Morton scheme or on bounded entries.
func WithBulkLazyKeys(enabled bool) Option {
	return func(c *Config) { c.useBulkLazyKeys = enabled }
}
