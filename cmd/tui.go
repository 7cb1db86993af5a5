package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
	"github.com/desertthunder/setlist/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: scenario engine not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(fileLogger)

	opts := ui.Options{
		Scenario: tasks.ScenarioOpts{
			InternSongs:   r.config.Flyweight.Songs,
			InternArtists: r.config.Flyweight.Artists,
		},
		Capacity:  r.config.Cache.Capacity,
		Threshold: r.config.Cache.PersistThreshold,
		Logger:    fileLogger,
	}

	store, err := r.backend(ctx)
	switch {
	case errors.Is(err, shared.ErrPersistenceDisabled):
		fileLogger.Info("persistence disabled")
	case err != nil:
		return fmt.Errorf("failed to open backend: %w", err)
	default:
		defer store.Close()
		opts.Store = store
	}

	model := ui.NewModel(ctx, r.engine, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
