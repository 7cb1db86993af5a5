// Package flyweight interns artists and songs so that equal catalog entries share one instance.
//
// A [Registry] maps a normalized key to a canonical value and hands out identities from a
// per-registry counter. [ArtistRegistry] and [SongRegistry] specialize it; the song registry
// resolves the artist through its [ArtistRegistry] before building a song, so the two can be
// toggled independently. Registries are plain values: construct them, pass them around and
// [Registry.Clear] them between measurement runs.
package flyweight

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/shared"
)

// Registry is a mutex-guarded intern pool keyed by normalized strings.
type Registry[T any] struct {
	mu      sync.Mutex
	kind    string
	enabled bool
	seq     int64
	pool    map[string]T
	logger  *log.Logger
}

func newRegistry[T any](kind string, enabled bool, logger *log.Logger) *Registry[T] {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &Registry[T]{
		kind:    kind,
		enabled: enabled,
		pool:    make(map[string]T),
		logger:  logger.With("registry", kind),
	}
}

// resolve returns the pooled value for key, or builds one with the next identity.
// build runs inside the critical section.
func (r *Registry[T]) resolve(key string, build func(id int64) T) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enabled {
		if v, ok := r.pool[key]; ok {
			r.logger.Debug("reused", "key", key)
			return v
		}
	}

	r.seq++
	v := build(r.seq)
	if r.enabled {
		r.pool[key] = v
	}
	r.logger.Debug("created", "key", key, "id", r.seq, "interned", r.enabled)
	return v
}

// Count returns the number of pooled values. It stays 0 while interning is disabled.
func (r *Registry[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool)
}

// Created returns how many values were built since the last [Registry.Clear], in either mode.
func (r *Registry[T]) Created() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Clear empties the pool and restarts identities at 1.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.pool)
	r.seq = 0
}

// SetEnabled toggles interning. Values already handed out are unaffected.
func (r *Registry[T]) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

func (r *Registry[T]) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}
