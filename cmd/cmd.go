// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/tasks"
)

// scenarioFlags are shared by "scenario run" and "scenario compare".
func scenarioFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "playlists",
			Usage: "Number of playlists to build",
			Value: tasks.DefaultPlaylists,
		},
		&cli.IntFlag{
			Name:  "songs",
			Usage: "Songs per playlist",
			Value: tasks.DefaultSongsPerPlaylist,
		},
		&cli.IntFlag{
			Name:  "max-usage",
			Usage: "Upper bound (exclusive) for the random usage given to each playlist",
			Value: tasks.DefaultMaxUsage,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Random seed for song selection and usage",
			Value: tasks.DefaultSeed,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// scenarioCommand handles interning scenarios
func scenarioCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "scenario",
		Aliases: []string{"sc"},
		Usage:   "Build synthetic playlists and measure interning",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one scenario with the configured interning modes and cache",
				Flags: append(scenarioFlags(),
					&cli.BoolFlag{
						Name:  "no-song-interning",
						Usage: "Create a new song object for every occurrence",
					},
					&cli.BoolFlag{
						Name:  "no-artist-interning",
						Usage: "Create a new artist object for every new song",
					},
					&cli.IntFlag{
						Name:  "capacity",
						Usage: "Playlist cache capacity (0 uses the configured value, negative disables the cache)",
					},
					&cli.Int64Flag{
						Name:  "threshold",
						Usage: "Persist evicted playlists with usage below this value (0 uses the configured value)",
					},
					&cli.BoolFlag{
						Name:  "no-persist",
						Usage: "Drop evicted playlists instead of writing them to the backend",
					},
					&cli.BoolFlag{
						Name:  "show",
						Usage: "Print the sample playlists",
					},
				),
				Action: r.ScenarioRun,
			},
			{
				Name:   "compare",
				Usage:  "Run the same scenario with interning ON and OFF",
				Flags:  scenarioFlags(),
				Action: r.ScenarioCompare,
			},
			{
				Name:  "demo",
				Usage: "Build three small playlists that share songs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (text, csv, markdown)",
						Value: formatter.FormatText,
					},
				},
				Action: r.ScenarioDemo,
			},
		},
	}
}

// storeCommand handles the persisted snapshot store
func storeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Inspect playlists persisted by cache evictions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StoreList,
			},
			{
				Name:  "show",
				Usage: "Decode and print one stored playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Stored playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (text, csv, markdown)",
						Value: formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.StoreShow,
			},
			{
				Name:  "delete",
				Usage: "Delete one stored playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Stored playlist name",
						Required: true,
					},
				},
				Action: r.StoreDelete,
			},
			{
				Name:  "clear",
				Usage: "Delete every stored playlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion",
					},
				},
				Action: r.StoreClear,
			},
			{
				Name:  "rest",
				Usage: "List stored playlists through the Supabase REST endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StoreREST,
			},
			{
				Name:   "backends",
				Usage:  fmt.Sprintf("List persistence backends (%s)", strings.Join(repositories.Backends(), ", ")),
				Action: r.StoreBackends,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the configured backend and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/setlist-tui.log",
			},
		},
		Action: r.TUI,
	}
}
