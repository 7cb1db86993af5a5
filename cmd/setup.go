package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/shared"
)

// SetupConfig writes the built-in config template to disk.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
		}
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to replace config file: %w", err)
		}
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Wrote %s\n", configPath)
	r.writePlain("Set SUPABASE_DATABASE_URL or REDIS_URL and persistence.backend to use a remote store.\n")
	return nil
}

// SetupDatabase opens the configured backend, which runs migrations for SQLite
// and creates the snapshot table for Postgres.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	backend := r.config.Persistence.Backend
	r.logger.Info("initializing backend", "backend", backend)

	store, err := r.backend(ctx)
	if errors.Is(err, shared.ErrPersistenceDisabled) {
		r.writePlain("Persistence is disabled; nothing to set up.\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to initialize backend: %w", err)
	}
	defer store.Close()

	infos, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("backend initialized but not readable: %w", err)
	}

	r.logger.Infof("setup complete for backend: %v", backend)
	r.writePlain("✓ %s ready (%d stored playlists)\n", backend, len(infos))
	return nil
}
