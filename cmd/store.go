package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/cache"
	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

// StoreList prints every stored playlist, newest first.
func (r *Runner) StoreList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.backend(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, true)
	}
	return r.writePlain("%s", formatter.SnapshotTable(infos))
}

// StoreShow decodes one stored playlist and prints or exports it.
func (r *Runner) StoreShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	if name == "" {
		return fmt.Errorf("%w: --name", shared.ErrMissingArgument)
	}

	store, err := r.backend(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := cache.New(cache.Options{Store: store, Logger: r.logger}).Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", name, err)
	}

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" {
		written, err := formatter.WritePlaylistExport(p, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("exported playlist", "name", name, "path", written)
		return r.writePlain("✓ Exported %s to %s\n", name, written)
	}

	data, err := formatter.Playlist(p, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// StoreDelete removes one stored playlist.
func (r *Runner) StoreDelete(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	if name == "" {
		return fmt.Errorf("%w: --name", shared.ErrMissingArgument)
	}

	store, err := r.backend(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}

	r.logger.Info("deleted stored playlist", "name", name)
	return r.writePlain("✓ Deleted %s\n", name)
}

// StoreClear deletes every stored playlist. Requires --yes.
func (r *Runner) StoreClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete every stored playlist", shared.ErrMissingArgument)
	}

	store, err := r.backend(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	r.logger.Info("cleared stored playlists", "backend", r.config.Persistence.Backend)
	return r.writePlain("✓ Stored playlists cleared\n")
}

// StoreREST lists stored playlists through PostgREST instead of a database connection.
func (r *Runner) StoreREST(ctx context.Context, cmd *cli.Command) error {
	client, err := services.NewRESTClient(r.config.REST, r.httpClient)
	if err != nil {
		return err
	}

	infos, err := client.ListSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, true)
	}
	return r.writePlain("%s", formatter.SnapshotTable(infos))
}

// StoreBackends prints the registered persistence backends and marks the configured one.
func (r *Runner) StoreBackends(ctx context.Context, cmd *cli.Command) error {
	for _, name := range repositories.Backends() {
		marker := " "
		if name == r.config.Persistence.Backend {
			marker = "*"
		}
		r.writePlain("%s %s\n", marker, name)
	}
	return nil
}
