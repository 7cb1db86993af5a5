package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/cache"
	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

func scenarioOpts(cmd *cli.Command) (tasks.ScenarioOpts, error) {
	opts := tasks.ScenarioOpts{
		Playlists:        cmd.Int("playlists"),
		SongsPerPlaylist: cmd.Int("songs"),
		MaxUsage:         cmd.Int("max-usage"),
		Seed:             cmd.Int64("seed"),
	}
	if opts.Playlists <= 0 || opts.SongsPerPlaylist <= 0 || opts.MaxUsage <= 0 {
		return opts, fmt.Errorf("%w: --playlists, --songs and --max-usage must be positive", shared.ErrInvalidFlag)
	}
	return opts, nil
}

// printProgress renders updates until the channel closes, then signals done.
// Per-step lines are only printed when the output is a terminal.
func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	steps := isTerminal(r.output)
	for update := range progressCh {
		switch update.Phase {
		case tasks.Prepare:
			r.writePlain("⚙  %s\n", update.Message)
		case tasks.BuildPlaylists, tasks.FillCache:
			if steps {
				r.writePlain("   %s\n", update.Message)
			}
		case tasks.Measure:
			r.writePlain("📏 %s\n", update.Message)
		case tasks.Done:
			r.writePlain("✓  %s\n\n", update.Message)
		}
	}
}

// ScenarioRun builds playlists with the configured interning modes and feeds the playlist cache.
func (r *Runner) ScenarioRun(ctx context.Context, cmd *cli.Command) error {
	opts, err := scenarioOpts(cmd)
	if err != nil {
		return err
	}
	opts.InternSongs = r.config.Flyweight.Songs && !cmd.Bool("no-song-interning")
	opts.InternArtists = r.config.Flyweight.Artists && !cmd.Bool("no-artist-interning")

	capacity := cmd.Int("capacity")
	if capacity == 0 {
		capacity = r.config.Cache.Capacity
	}
	threshold := cmd.Int64("threshold")
	if threshold == 0 {
		threshold = r.config.Cache.PersistThreshold
	}

	// Names of evicted playlists whose snapshot could not be written.
	var unpersisted []string
	if capacity > 0 {
		var store repositories.Backend
		if !cmd.Bool("no-persist") {
			store, err = r.backend(ctx)
			switch {
			case errors.Is(err, shared.ErrPersistenceDisabled):
				r.logger.Info("persistence disabled, evicted playlists will be dropped")
			case err != nil:
				return fmt.Errorf("failed to open backend: %w", err)
			default:
				defer store.Close()
			}
		}

		c := cache.New(cache.Options{
			Capacity:         capacity,
			PersistThreshold: threshold,
			Store:            store,
			Logger:           r.logger,
		})
		c.OnEvict(func(ev cache.Eviction) {
			if ev.Err != nil {
				unpersisted = append(unpersisted, ev.Name)
			}
		})
		r.logger.Debug("playlist cache ready", "capacity", c.Capacity(), "threshold", c.Threshold(), "persist", store != nil)
		opts.Cache = c
	}

	useJSON := cmd.Bool("json")
	var result *tasks.ScenarioResult
	if useJSON {
		result, err = r.engine.Run(ctx, nil, opts)
	} else {
		r.writePlainHeader("Scenario")
		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go r.printProgress(progressCh, done)

		result, err = r.engine.Run(ctx, progressCh, opts)
		close(progressCh)
		<-done
	}
	if err != nil {
		return fmt.Errorf("scenario failed: %w", err)
	}

	if useJSON {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("%s", formatter.ScenarioSummary(result))
	if len(unpersisted) > 0 {
		r.writePlain("\n⚠  %d evicted playlist(s) could not be persisted: %s\n", len(unpersisted), strings.Join(unpersisted, ", "))
	}
	if cmd.Bool("show") {
		for _, p := range result.Sample {
			r.writePlain("\n%s", formatter.PlaylistToText(p))
		}
	}
	return nil
}

// ScenarioCompare runs the scenario with interning ON and OFF and prints both.
func (r *Runner) ScenarioCompare(ctx context.Context, cmd *cli.Command) error {
	opts, err := scenarioOpts(cmd)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	var cmp *tasks.Comparison
	if useJSON {
		cmp, err = r.engine.Compare(ctx, nil, opts)
	} else {
		r.writePlainHeader("Interning ON vs OFF")
		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go r.printProgress(progressCh, done)

		cmp, err = r.engine.Compare(ctx, progressCh, opts)
		close(progressCh)
		<-done
	}
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if useJSON {
		return r.writeJSON(cmp, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.ComparisonSummary(cmp))
}

// ScenarioDemo prints the three demo playlists and the shared instance counts.
func (r *Runner) ScenarioDemo(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")

	registry := r.engine.Registry()
	registry.ClearAll()

	playlists, err := r.engine.Demo(ctx)
	if err != nil {
		return err
	}

	for i, p := range playlists {
		data, err := formatter.Playlist(p, format)
		if err != nil {
			return err
		}
		if i > 0 {
			r.writePlain("\n")
		}
		r.writePlain("%s", data)
	}

	r.writePlainln("Songs created: %d, artists created: %d", registry.Created(), registry.Artists().Created())
	return nil
}
