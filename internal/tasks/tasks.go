package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/cache"
	"github.com/desertthunder/setlist/internal/flyweight"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Scenario defaults.
const (
	DefaultPlaylists        = 1000
	DefaultSongsPerPlaylist = 10
	DefaultMaxUsage         = 20
	DefaultSeed             = 12345
	DefaultSampleSize       = 3
)

// ScenarioOpts configures one [Engine.Run]. Zero values fall back to the defaults above.
type ScenarioOpts struct {
	Playlists        int
	SongsPerPlaylist int
	MaxUsage         int
	Seed             int64
	InternSongs      bool
	InternArtists    bool
	SampleSize       int
	Label            string
	Cache            *cache.PlaylistCache // optional; playlists are added after their usage is set
}

func (o ScenarioOpts) withDefaults() ScenarioOpts {
	if o.Playlists <= 0 {
		o.Playlists = DefaultPlaylists
	}
	if o.SongsPerPlaylist <= 0 {
		o.SongsPerPlaylist = DefaultSongsPerPlaylist
	}
	if o.MaxUsage <= 0 {
		o.MaxUsage = DefaultMaxUsage
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.Label == "" {
		o.Label = fmt.Sprintf("songs %s / artists %s", onOff(o.InternSongs), onOff(o.InternArtists))
	}
	return o
}

// ScenarioResult contains the counters collected by one scenario run.
type ScenarioResult struct {
	Label          string             `json:"label"`
	InternSongs    bool               `json:"intern_songs"`
	InternArtists  bool               `json:"intern_artists"`
	Playlists      int                `json:"playlists"`
	SongsAdded     int                `json:"songs_added"`
	UniqueSongs    int                `json:"unique_songs"`   // entries held by the song registry
	UniqueArtists  int                `json:"unique_artists"` // entries held by the artist registry
	SongsCreated   int64              `json:"songs_created"`
	ArtistsCreated int64              `json:"artists_created"`
	HeapBytes      int64              `json:"heap_bytes"`
	Duration       time.Duration      `json:"duration"`
	Savings        float64            `json:"savings_percent"`
	Cache          *cache.Stats       `json:"cache,omitempty"`
	Sample         []*models.Playlist `json:"-"`
}

// Comparison pairs an interning ON run with an interning OFF run over the same seed.
type Comparison struct {
	On  *ScenarioResult `json:"on"`
	Off *ScenarioResult `json:"off"`
}

// HeapSaved is the heap delta of the OFF run minus the ON run.
func (c *Comparison) HeapSaved() int64 {
	return c.Off.HeapBytes - c.On.HeapBytes
}

// Engine drives scenarios against one pair of registries. Runs are serialized
// since each run clears and reconfigures the shared registries.
type Engine struct {
	mu     sync.Mutex
	songs  *flyweight.SongRegistry
	logger *log.Logger
}

// NewEngine creates an engine. A nil songs registry gets a fresh pair with interning enabled.
func NewEngine(songs *flyweight.SongRegistry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NopLogger()
	}
	if songs == nil {
		songs = flyweight.NewSongRegistry(flyweight.NewArtistRegistry(true, logger), true, logger)
	}
	return &Engine{songs: songs, logger: shared.WithLogger(logger, "component", "scenario")}
}

// Registry returns the song registry used by the engine.
func (e *Engine) Registry() *flyweight.SongRegistry { return e.songs }

// sendProgress sends a progress update through the channel without blocking.
//
// Drops the update if the channel is full.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run builds opts.Playlists playlists from [Catalog] and reports how many song and
// artist objects were created along the way.
//
// Cancellation is checked between playlists; a cancelled run returns ctx.Err().
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ScenarioOpts) (*ScenarioResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run(ctx, progress, opts.withDefaults())
}

func (e *Engine) run(ctx context.Context, progress chan<- ProgressUpdate, opts ScenarioOpts) (*ScenarioResult, error) {
	artists := e.songs.Artists()
	e.songs.SetEnabled(opts.InternSongs)
	artists.SetEnabled(opts.InternArtists)
	e.songs.ClearAll()
	e.sendProgress(progress, prepareUpdate(opts))

	e.logger.Info("running scenario", "label", opts.Label, "playlists", opts.Playlists,
		"songs_per_playlist", opts.SongsPerPlaylist, "seed", opts.Seed)

	rng := rand.New(rand.NewSource(opts.Seed))
	before := heapAlloc()
	start := time.Now()

	playlists := make([]*models.Playlist, 0, opts.Playlists)
	every := max(opts.Playlists/20, 1)
	for i := range opts.Playlists {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("scenario cancelled", "label", opts.Label, "built", i)
			return nil, err
		}

		p := models.NewPlaylist(fmt.Sprintf("Playlist #%d", i+1))
		for range opts.SongsPerPlaylist {
			t := Catalog[rng.Intn(len(Catalog))]
			p.Append(e.songs.Resolve(t.Title, t.Artist, t.Genre, t.Country))
		}
		playlists = append(playlists, p)

		if (i+1)%every == 0 || i+1 == opts.Playlists {
			e.sendProgress(progress, buildUpdate(i+1, opts.Playlists))
		}
	}
	elapsed := time.Since(start)

	e.sendProgress(progress, measureUpdate())
	after := heapAlloc()

	res := &ScenarioResult{
		Label:          opts.Label,
		InternSongs:    opts.InternSongs,
		InternArtists:  opts.InternArtists,
		Playlists:      len(playlists),
		SongsAdded:     len(playlists) * opts.SongsPerPlaylist,
		UniqueSongs:    e.songs.Count(),
		UniqueArtists:  artists.Count(),
		SongsCreated:   e.songs.Created(),
		ArtistsCreated: artists.Created(),
		HeapBytes:      int64(after) - int64(before),
		Duration:       elapsed,
	}
	res.Savings = SavingsPercent(int64(res.SongsAdded), res.SongsCreated)

	for i, p := range playlists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for range rng.Intn(opts.MaxUsage) {
			p.IncrementUsage()
		}
		if opts.Cache != nil {
			opts.Cache.Add(ctx, p)
			if (i+1)%every == 0 || i+1 == len(playlists) {
				e.sendProgress(progress, fillCacheUpdate(i+1, len(playlists), opts.Cache.Stats()))
			}
		}
	}
	if opts.Cache != nil {
		stats := opts.Cache.Stats()
		res.Cache = &stats
	}

	res.Sample = playlists[:min(opts.SampleSize, len(playlists))]
	runtime.KeepAlive(playlists)

	e.logger.Info("scenario finished", "label", res.Label, "songs_created", res.SongsCreated,
		"artists_created", res.ArtistsCreated, "heap_bytes", res.HeapBytes, "duration", res.Duration)
	e.sendProgress(progress, doneUpdate(res))
	return res, nil
}

// Compare runs opts with interning fully ON and then fully OFF.
// The cache in opts is ignored so both runs measure the same work.
func (e *Engine) Compare(ctx context.Context, progress chan<- ProgressUpdate, opts ScenarioOpts) (*Comparison, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	opts.Cache = nil

	on := opts
	on.InternSongs, on.InternArtists, on.Label = true, true, "Interning ON"
	onRes, err := e.run(ctx, progress, on.withDefaults())
	if err != nil {
		return nil, err
	}

	off := opts
	off.InternSongs, off.InternArtists, off.Label = false, false, "Interning OFF"
	offRes, err := e.run(ctx, progress, off.withDefaults())
	if err != nil {
		return nil, err
	}

	e.songs.ClearAll()
	return &Comparison{On: onRes, Off: offRes}, nil
}

// Demo builds the three fixed demo playlists using the registries' current modes.
func (e *Engine) Demo(ctx context.Context) ([]*models.Playlist, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*models.Playlist, 0, len(demoPlaylists))
	for _, d := range demoPlaylists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := models.NewPlaylist(d.Name)
		for _, t := range d.Tracks {
			p.Append(e.songs.Resolve(t.Title, t.Artist, t.Genre, t.Country))
		}
		out = append(out, p)
	}
	return out, nil
}

// SavingsPercent is the share of requested objects that did not have to be created.
func SavingsPercent(total, created int64) float64 {
	if total <= 0 || created >= total {
		return 0
	}
	return float64(total-created) * 100 / float64(total)
}

func heapAlloc() uint64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
