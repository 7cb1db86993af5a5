package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
)

func playlist(name string, usage int) *models.Playlist {
	p := models.NewPlaylist(name)
	p.Append(models.NewSong(1, "Memories", models.NewArtist(1, "Maroon 5", "Pop Rock", "USA")))
	for range usage {
		p.IncrementUsage()
	}
	return p
}

func names(ps []*models.Playlist) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name()
	}
	return out
}

func TestNew(t *testing.T) {
	tt := []struct {
		name          string
		opts          Options
		wantCapacity  int
		wantThreshold int64
	}{
		{"zero capacity clamps to one", Options{Capacity: 0, PersistThreshold: 5}, 1, 5},
		{"negative capacity clamps to one", Options{Capacity: -3, PersistThreshold: 5}, 1, 5},
		{"negative threshold clamps to zero", Options{Capacity: 10, PersistThreshold: -1}, 10, 0},
		{"values kept", Options{Capacity: 150, PersistThreshold: 5}, 150, 5},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.opts)
			if c.Capacity() != tc.wantCapacity {
				t.Errorf("expected capacity %d, got %d", tc.wantCapacity, c.Capacity())
			}
			if c.Threshold() != tc.wantThreshold {
				t.Errorf("expected threshold %d, got %d", tc.wantThreshold, c.Threshold())
			}
		})
	}
}

func TestPlaylistCache(t *testing.T) {
	ctx := context.Background()

	t.Run("ignores nil and unnamed playlists", func(t *testing.T) {
		c := New(Options{Capacity: 2})
		c.Add(ctx, nil)
		c.Add(ctx, models.NewPlaylist(""))
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d", c.Len())
		}
	})

	t.Run("capacity invariant", func(t *testing.T) {
		store := tu.NewMockStore()
		c := New(Options{Capacity: 3, PersistThreshold: 5, Store: store})

		for i := range 25 {
			c.Add(ctx, playlist(fmt.Sprintf("p%02d", i), i%7))
			if c.Len() > 3 {
				t.Fatalf("cache over capacity after add %d: %d", i, c.Len())
			}
		}
		if c.Stats().Evictions != 22 {
			t.Errorf("expected 22 evictions, got %d", c.Stats().Evictions)
		}
	})

	t.Run("evicts least used", func(t *testing.T) {
		c := New(Options{Capacity: 4, PersistThreshold: 0})
		c.Add(ctx, playlist("five", 5))
		c.Add(ctx, playlist("two-a", 2))
		c.Add(ctx, playlist("nine", 9))
		c.Add(ctx, playlist("two-b", 2))
		c.Add(ctx, playlist("six", 6))

		got := names(c.All())
		want := []string{"five", "nine", "two-b", "six"}
		if !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("tie goes to oldest insertion", func(t *testing.T) {
		c := New(Options{Capacity: 2})
		c.Add(ctx, playlist("a", 1))
		c.Add(ctx, playlist("b", 1))
		c.Add(ctx, playlist("c", 1))

		if _, ok := c.Get("a"); ok {
			t.Error("expected oldest entry a to be evicted")
		}
	})

	t.Run("overwrite refreshes insertion order", func(t *testing.T) {
		c := New(Options{Capacity: 2})
		c.Add(ctx, playlist("a", 1))
		c.Add(ctx, playlist("b", 1))
		c.Add(ctx, playlist("a", 1))
		if c.Len() != 2 {
			t.Fatalf("overwrite should not grow the cache, got %d", c.Len())
		}

		c.Add(ctx, playlist("c", 1))
		if _, ok := c.Get("b"); ok {
			t.Error("expected b to be evicted after a was refreshed")
		}
		if _, ok := c.Get("a"); !ok {
			t.Error("expected a to stay resident")
		}
	})

	t.Run("usage can grow while resident", func(t *testing.T) {
		c := New(Options{Capacity: 2})
		a := playlist("a", 0)
		c.Add(ctx, a)
		c.Add(ctx, playlist("b", 1))
		a.IncrementUsage()
		a.IncrementUsage()

		c.Add(ctx, playlist("c", 5))
		if _, ok := c.Get("b"); ok {
			t.Error("expected b to be evicted once a became hotter")
		}
	})

	t.Run("threshold persistence", func(t *testing.T) {
		tt := []struct {
			usage       int
			wantPersist bool
		}{
			{0, true},
			{3, true},
			{4, true},
			{5, false},
			{12, false},
		}

		for _, tc := range tt {
			t.Run(fmt.Sprintf("usage %d", tc.usage), func(t *testing.T) {
				store := tu.NewMockStore()
				c := New(Options{Capacity: 1, PersistThreshold: 5, Store: store})
				c.Add(ctx, playlist("cold", tc.usage))
				c.Add(ctx, playlist("hot", 100))

				persisted := len(store.Upserts) == 1
				if persisted != tc.wantPersist {
					t.Fatalf("expected persisted=%v, got %v", tc.wantPersist, persisted)
				}
				if persisted && store.Upserts[0].Usage != int64(tc.usage) {
					t.Errorf("expected usage %d, got %d", tc.usage, store.Upserts[0].Usage)
				}
			})
		}
	})

	t.Run("scenario capacity 2 threshold 5", func(t *testing.T) {
		store := tu.NewMockStore()
		c := New(Options{Capacity: 2, PersistThreshold: 5, Store: store})
		c.Add(ctx, playlist("P1", 1))
		c.Add(ctx, playlist("P2", 1))
		c.Add(ctx, playlist("P3", 10))

		if c.Len() != 2 {
			t.Fatalf("expected 2 resident, got %d", c.Len())
		}
		if _, ok := c.Get("P3"); !ok {
			t.Error("expected P3 to remain")
		}
		if got := store.Names(); len(got) != 1 || (got[0] != "P1" && got[0] != "P2") {
			t.Fatalf("expected one of P1/P2 persisted, got %v", got)
		}

		evicted := store.Names()[0]
		if _, ok := c.Get(evicted); ok {
			t.Errorf("persisted playlist %s should not be resident", evicted)
		}

		p, err := models.Decode(store.Upserts[0].Payload)
		if err != nil {
			t.Fatalf("failed to decode persisted payload: %v", err)
		}
		if p.Name() != evicted || p.Usage() != 1 || p.Len() != 1 {
			t.Errorf("unexpected decoded playlist %s usage=%d len=%d", p.Name(), p.Usage(), p.Len())
		}
	})

	t.Run("store failure still evicts", func(t *testing.T) {
		store := tu.NewMockStore()
		store.Err = errors.New("connection refused")

		var events []Eviction
		c := New(Options{Capacity: 1, PersistThreshold: 5, Store: store})
		c.OnEvict(func(e Eviction) { events = append(events, e) })

		c.Add(ctx, playlist("a", 0))
		c.Add(ctx, playlist("b", 9))

		if c.Len() != 1 {
			t.Fatalf("expected 1 resident, got %d", c.Len())
		}
		stats := c.Stats()
		if stats.Failures != 1 || stats.Persisted != 0 {
			t.Errorf("expected 1 failure and 0 persisted, got %+v", stats)
		}
		if len(events) != 1 || events[0].Err == nil || events[0].Persisted {
			t.Errorf("expected one failed eviction event, got %+v", events)
		}
	})

	t.Run("nil store drops cold playlists", func(t *testing.T) {
		c := New(Options{Capacity: 1, PersistThreshold: 5})
		c.Add(ctx, playlist("a", 0))
		c.Add(ctx, playlist("b", 0))

		stats := c.Stats()
		if stats.Evictions != 1 || stats.Dropped != 1 {
			t.Errorf("expected 1 eviction dropped, got %+v", stats)
		}
	})

	t.Run("Remove and All", func(t *testing.T) {
		c := New(Options{Capacity: 5})
		c.Add(ctx, playlist("x", 0))
		c.Add(ctx, playlist("y", 0))
		c.Remove("x")
		c.Remove("missing")

		if got := names(c.All()); !slices.Equal(got, []string{"y"}) {
			t.Errorf("expected [y], got %v", got)
		}
	})

	t.Run("Load falls back to store", func(t *testing.T) {
		store := tu.NewMockStore()
		c := New(Options{Capacity: 1, PersistThreshold: 5, Store: store})
		c.Add(ctx, playlist("cold", 2))
		c.Add(ctx, playlist("hot", 50))

		resident, err := c.Load(ctx, "hot")
		if err != nil || resident.Name() != "hot" {
			t.Fatalf("expected resident playlist, got %v %v", resident, err)
		}

		loaded, err := c.Load(ctx, "cold")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.Usage() != 2 {
			t.Errorf("expected usage 2, got %d", loaded.Usage())
		}

		if _, err := c.Load(ctx, "nothing"); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("Load without store", func(t *testing.T) {
		c := New(Options{Capacity: 1})
		if _, err := c.Load(ctx, "x"); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("Load corrupt payload", func(t *testing.T) {
		store := tu.NewMockStore()
		_ = store.Upsert(ctx, "bad", []byte{0xff, 0xff}, 1)
		c := New(Options{Capacity: 1, Store: store})
		if _, err := c.Load(ctx, "bad"); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestPlaylistCacheConcurrency(t *testing.T) {
	ctx := context.Background()
	store := tu.NewMockStore()
	c := New(Options{Capacity: 10, PersistThreshold: 5, Store: store})

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range 50 {
				c.Add(ctx, playlist(fmt.Sprintf("w%d-%d", w, i), i%10))
				_ = c.All()
				if c.Len() > 10 {
					t.Errorf("cache over capacity: %d", c.Len())
				}
			}
		}(w)
	}
	wg.Wait()

	stats := c.Stats()
	if stats.Resident != 10 {
		t.Errorf("expected 10 resident, got %d", stats.Resident)
	}
	if stats.Evictions != 390 {
		t.Errorf("expected 390 evictions, got %d", stats.Evictions)
	}
	if stats.Persisted+stats.Dropped != stats.Evictions {
		t.Errorf("expected every eviction accounted for, got %+v", stats)
	}
}
