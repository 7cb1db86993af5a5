package flyweight

import (
	"sync"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
)

func newRegistries(songs, artists bool) *SongRegistry {
	return NewSongRegistry(NewArtistRegistry(artists, nil), songs, nil)
}

func TestArtistRegistry(t *testing.T) {
	t.Run("interning returns the same instance", func(t *testing.T) {
		r := NewArtistRegistry(true, nil)
		a := r.Resolve("Ed Sheeran", "Pop", "UK")
		b := r.Resolve("  ed   SHEERAN ", "Folk", "Ireland")

		if a != b {
			t.Fatalf("expected same instance, got %v and %v", a, b)
		}
		if b.Genre() != "Pop" {
			t.Errorf("expected first genre to win, got %s", b.Genre())
		}
		if r.Count() != 1 || r.Created() != 1 {
			t.Errorf("expected count 1 created 1, got %d %d", r.Count(), r.Created())
		}
	})

	t.Run("disabled builds fresh instances", func(t *testing.T) {
		r := NewArtistRegistry(false, nil)
		a := r.Resolve("Ed Sheeran", "Pop", "UK")
		b := r.Resolve("Ed Sheeran", "Pop", "UK")

		if a == b {
			t.Fatal("expected distinct instances")
		}
		if a.ID() == b.ID() {
			t.Errorf("expected distinct identities, got %d", a.ID())
		}
		if r.Count() != 0 {
			t.Errorf("expected empty pool, got %d", r.Count())
		}
		if r.Created() != 2 {
			t.Errorf("expected 2 created, got %d", r.Created())
		}
	})

	t.Run("empty names collapse onto the sentinel", func(t *testing.T) {
		r := NewArtistRegistry(true, nil)
		a := r.Resolve("", "", "")
		b := r.Resolve("   ", "Pop", "UK")

		if a != b {
			t.Fatal("expected empty names to share one artist")
		}
		if a.Name() != "unknown" {
			t.Errorf("expected sentinel name, got %q", a.Name())
		}
	})

	t.Run("identities are monotonic and reset by Clear", func(t *testing.T) {
		r := NewArtistRegistry(true, nil)
		a := r.Resolve("A", "", "")
		b := r.Resolve("B", "", "")
		if a.ID() != 1 || b.ID() != 2 {
			t.Fatalf("expected ids 1 and 2, got %d and %d", a.ID(), b.ID())
		}

		r.Clear()
		if r.Count() != 0 || r.Created() != 0 {
			t.Fatalf("expected cleared registry, got count=%d created=%d", r.Count(), r.Created())
		}

		c := r.Resolve("A", "", "")
		if c == a {
			t.Error("expected a new instance after Clear")
		}
		if c.ID() != 1 {
			t.Errorf("expected id 1 after Clear, got %d", c.ID())
		}
	})

	t.Run("SetEnabled does not touch existing entries", func(t *testing.T) {
		r := NewArtistRegistry(true, nil)
		a := r.Resolve("Maroon 5", "Pop Rock", "USA")

		r.SetEnabled(false)
		if r.Enabled() {
			t.Fatal("expected disabled")
		}
		if b := r.Resolve("Maroon 5", "Pop Rock", "USA"); b == a {
			t.Error("expected fresh instance while disabled")
		}
		if r.Count() != 1 {
			t.Errorf("expected pooled entry to survive, got %d", r.Count())
		}

		r.SetEnabled(true)
		if b := r.Resolve("Maroon 5", "Pop Rock", "USA"); b != a {
			t.Error("expected pooled instance after re-enabling")
		}
	})
}

func TestSongRegistry(t *testing.T) {
	t.Run("interning idempotence", func(t *testing.T) {
		r := newRegistries(true, true)
		a := r.Resolve("Despacito", "Luis Fonsi", "Reggaeton", "Puerto Rico")
		b := r.Resolve("despacito", "luis fonsi", "Reggaeton", "Puerto Rico")
		if a != b {
			t.Fatal("expected the same song instance")
		}
		if a.ID() != b.ID() {
			t.Errorf("expected same identity, got %d and %d", a.ID(), b.ID())
		}
	})

	t.Run("disabled yields distinct identities", func(t *testing.T) {
		r := newRegistries(false, true)
		a := r.Resolve("Despacito", "Luis Fonsi", "Reggaeton", "Puerto Rico")
		b := r.Resolve("Despacito", "Luis Fonsi", "Reggaeton", "Puerto Rico")
		if a == b || a.ID() == b.ID() {
			t.Fatal("expected distinct songs")
		}
		if a.Artist() != b.Artist() {
			t.Error("expected artist to still be shared")
		}
	})

	t.Run("two titles share one artist", func(t *testing.T) {
		r := newRegistries(true, true)
		a := r.Resolve("Someone You Loved", "Lewis Capaldi", "Pop", "UK")
		b := r.Resolve("Before You Go", "Lewis Capaldi", "Pop", "UK")

		if a == b {
			t.Fatal("expected different songs")
		}
		if a.Artist() != b.Artist() {
			t.Error("expected one shared artist")
		}
		if r.Artists().Count() != 1 {
			t.Errorf("expected 1 artist, got %d", r.Artists().Count())
		}
	})

	t.Run("song hit does not touch the artist registry", func(t *testing.T) {
		r := newRegistries(true, false)
		r.Resolve("Roses", "SAINt JHN", "Hip Hop", "USA")
		r.Resolve("Roses", "SAINt JHN", "Hip Hop", "USA")
		if r.Artists().Created() != 1 {
			t.Errorf("expected 1 artist created, got %d", r.Artists().Created())
		}
	})

	t.Run("mode combinations", func(t *testing.T) {
		tt := []struct {
			name           string
			songs, artists bool
			wantSongs      int64
			wantArtists    int64
			sameSong       bool
			sameArtist     bool
		}{
			{"both on", true, true, 1, 1, true, true},
			{"both off", false, false, 3, 3, false, false},
			{"songs only", true, false, 1, 1, true, true},
			{"artists only", false, true, 3, 1, false, true},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				r := newRegistries(tc.songs, tc.artists)

				var got []*models.Song
				for range 3 {
					got = append(got, r.Resolve("Blinding Lights", "The Weeknd", "Synthpop", "Canada"))
				}

				if r.Created() != tc.wantSongs {
					t.Errorf("expected %d songs created, got %d", tc.wantSongs, r.Created())
				}
				if r.Artists().Created() != tc.wantArtists {
					t.Errorf("expected %d artists created, got %d", tc.wantArtists, r.Artists().Created())
				}
				if (got[0] == got[2]) != tc.sameSong {
					t.Errorf("expected same song = %v", tc.sameSong)
				}
				if (got[0].Artist() == got[2].Artist()) != tc.sameArtist {
					t.Errorf("expected same artist = %v", tc.sameArtist)
				}
			})
		}
	})

	t.Run("three playlists without interning", func(t *testing.T) {
		r := newRegistries(false, false)

		var playlists []*models.Playlist
		for _, name := range []string{"a", "b", "c"} {
			p := models.NewPlaylist(name)
			p.Append(r.Resolve("Dance Monkey", "Tones and I", "Pop", "Australia"))
			playlists = append(playlists, p)
		}

		if r.Created() != 3 || r.Artists().Created() != 3 {
			t.Fatalf("expected 3 songs and 3 artists, got %d and %d", r.Created(), r.Artists().Created())
		}
		if r.Count() != 0 || r.Artists().Count() != 0 {
			t.Errorf("expected nothing pooled, got %d and %d", r.Count(), r.Artists().Count())
		}

		s0 := playlists[0].Songs()[0]
		s1 := playlists[1].Songs()[0]
		if s0 == s1 || s0.Artist() == s1.Artist() {
			t.Error("expected independent song and artist objects")
		}
	})

	t.Run("ClearAll", func(t *testing.T) {
		r := newRegistries(true, true)
		r.Resolve("Bad Guy", "Billie Eilish", "Electropop", "USA")
		r.ClearAll()
		if r.Count() != 0 || r.Artists().Count() != 0 || r.Created() != 0 || r.Artists().Created() != 0 {
			t.Error("expected both registries reset")
		}
	})
}

func TestRegistryConcurrency(t *testing.T) {
	r := newRegistries(true, true)

	const workers = 32
	results := make([]*models.Song, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve("Señorita", "Shawn Mendes", "Pop", "Canada")
			r.Artists().Resolve("Shawn Mendes", "Pop", "Canada")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d got a divergent canonical song", i)
		}
	}
	if r.Created() != 1 || r.Artists().Created() != 1 {
		t.Errorf("expected exactly one song and one artist, got %d and %d", r.Created(), r.Artists().Created())
	}
}
