package models

import (
	"sync"
	"sync/atomic"
)

// Playlist is a named, ordered list of song references with a usage counter.
//
// It owns its slice of references but not the songs themselves. Duplicates are allowed.
// All methods are safe for concurrent use; usage may keep growing while the playlist sits in a cache.
type Playlist struct {
	name  string
	mu    sync.RWMutex
	songs []*Song
	usage atomic.Int64
}

// NewPlaylist creates an empty playlist with zero usage.
func NewPlaylist(name string) *Playlist {
	return &Playlist{name: name}
}

func (p *Playlist) Name() string { return p.name }

// Append adds song at the end. A nil song is ignored so every entry can be encoded.
func (p *Playlist) Append(song *Song) {
	if song == nil {
		return
	}
	p.mu.Lock()
	p.songs = append(p.songs, song)
	p.mu.Unlock()
}

// Songs returns a copy of the song references in insertion order.
func (p *Playlist) Songs() []*Song {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Song, len(p.songs))
	copy(out, p.songs)
	return out
}

func (p *Playlist) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.songs)
}

// IncrementUsage bumps the usage counter and returns the new value.
func (p *Playlist) IncrementUsage() int64 {
	return p.usage.Add(1)
}

func (p *Playlist) Usage() int64 {
	return p.usage.Load()
}

// setUsage is used by [Decode] to restore a persisted counter.
func (p *Playlist) setUsage(n int64) {
	p.usage.Store(n)
}
