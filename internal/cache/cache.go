// Package cache holds playlists in a bounded, usage-ranked in-memory cache.
//
// When an [PlaylistCache.Add] pushes the cache over capacity, exactly one playlist is evicted:
// the one with the smallest usage counter, oldest insertion first on ties. Evicted playlists
// whose usage is below the persistence threshold are encoded and handed to a
// [models.SnapshotStore]; the rest are dropped. Persistence failures are logged and counted
// but never returned, since the capacity bound always wins.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// DefaultThreshold is the usage below which evicted playlists are persisted.
const DefaultThreshold = 5

// Options configures a [PlaylistCache].
type Options struct {
	Capacity         int   // Capacity is clamped to at least 1
	PersistThreshold int64 // PersistThreshold is clamped to at least 0
	Store            models.SnapshotStore
	Logger           *log.Logger
}

// Stats counts what happened to evicted playlists.
type Stats struct {
	Resident  int   `json:"resident"`
	Capacity  int   `json:"capacity"`
	Threshold int64 `json:"threshold"`
	Evictions int64 `json:"evictions"`
	Persisted int64 `json:"persisted"`
	Dropped   int64 `json:"dropped"`
	Failures  int64 `json:"failures"`
}

// Eviction describes one eviction and its outcome.
type Eviction struct {
	Name      string
	Usage     int64
	Persisted bool
	Err       error
}

type entry struct {
	playlist *models.Playlist
	seq      uint64
}

// PlaylistCache is safe for concurrent use. One mutex serializes every operation,
// including the synchronous persistence call made during eviction.
type PlaylistCache struct {
	mu        sync.Mutex
	capacity  int
	threshold int64
	entries   map[string]*entry
	seq       uint64
	store     models.SnapshotStore
	logger    *log.Logger
	stats     Stats
	onEvict   func(Eviction)
}

// New creates a cache. A nil Store disables persistence.
func New(opts Options) *PlaylistCache {
	capacity := max(opts.Capacity, 1)
	threshold := max(opts.PersistThreshold, 0)

	logger := opts.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}

	return &PlaylistCache{
		capacity:  capacity,
		threshold: threshold,
		entries:   make(map[string]*entry, capacity+1),
		store:     opts.Store,
		logger:    logger.With("component", "playlist-cache"),
	}
}

// OnEvict registers fn to be called, under the cache lock, after each eviction.
func (c *PlaylistCache) OnEvict(fn func(Eviction)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Add inserts or replaces p under its name and evicts at most one playlist if the cache
// is over capacity. A nil playlist or one with an empty name is ignored.
func (c *PlaylistCache) Add(ctx context.Context, p *models.Playlist) {
	if p == nil || p.Name() == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries[p.Name()] = &entry{playlist: p, seq: c.seq}

	if len(c.entries) > c.capacity {
		c.evict(ctx)
	}
}

// evict removes the least-used entry. Callers hold c.mu.
func (c *PlaylistCache) evict(ctx context.Context) {
	var victim *entry
	var victimUsage int64
	for _, e := range c.entries {
		u := e.playlist.Usage()
		if victim == nil || u < victimUsage || (u == victimUsage && e.seq < victim.seq) {
			victim, victimUsage = e, u
		}
	}
	if victim == nil {
		return
	}

	p := victim.playlist
	delete(c.entries, p.Name())
	c.stats.Evictions++

	ev := Eviction{Name: p.Name(), Usage: victimUsage}
	switch {
	case victimUsage >= c.threshold:
		c.stats.Dropped++
		c.logger.Info("evicted without persisting", "name", p.Name(), "usage", victimUsage, "threshold", c.threshold)
	case c.store == nil:
		c.stats.Dropped++
		c.logger.Info("evicted, persistence disabled", "name", p.Name(), "usage", victimUsage)
	default:
		ev.Err = c.persist(ctx, p, victimUsage)
		ev.Persisted = ev.Err == nil
	}

	if c.onEvict != nil {
		c.onEvict(ev)
	}
}

func (c *PlaylistCache) persist(ctx context.Context, p *models.Playlist, usage int64) error {
	payload, err := models.Encode(p)
	if err != nil {
		c.stats.Failures++
		c.logger.Error("failed to encode evicted playlist", "name", p.Name(), "err", err)
		return fmt.Errorf("failed to encode playlist: %w", err)
	}

	if err := c.store.Upsert(ctx, p.Name(), payload, usage); err != nil {
		c.stats.Failures++
		c.logger.Error("failed to persist evicted playlist", "name", p.Name(), "err", err)
		return fmt.Errorf("failed to persist playlist: %w", err)
	}

	c.stats.Persisted++
	c.logger.Info("evicted and persisted", "name", p.Name(), "usage", usage, "bytes", len(payload))
	return nil
}

// Get returns the resident playlist stored under name.
func (c *PlaylistCache) Get(name string) (*models.Playlist, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return e.playlist, true
}

// Load returns the resident playlist, or fetches and decodes it from the store.
// The decoded playlist is not re-added to the cache.
func (c *PlaylistCache) Load(ctx context.Context, name string) (*models.Playlist, error) {
	if p, ok := c.Get(name); ok {
		return p, nil
	}
	if c.store == nil {
		return nil, shared.ErrSnapshotNotFound
	}

	payload, err := c.store.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	p, err := models.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %q: %w", name, err)
	}
	return p, nil
}

// Remove deletes name from the cache without persisting it.
func (c *PlaylistCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// All returns the resident playlists ordered by insertion.
func (c *PlaylistCache) All() []*models.Playlist {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]*models.Playlist, len(entries))
	for i, e := range entries {
		out[i] = e.playlist
	}
	return out
}

func (c *PlaylistCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PlaylistCache) Capacity() int { return c.capacity }

func (c *PlaylistCache) Threshold() int64 { return c.threshold }

func (c *PlaylistCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Resident = len(c.entries)
	s.Capacity = c.capacity
	s.Threshold = c.threshold
	return s
}
