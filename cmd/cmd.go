// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/soundalike/internal/formatter"
)

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database, and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// catalogCommand manages the artist catalog.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Manage the artist catalog",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import artists from a .json or .csv file",
				ArgsUsage: "<file>",
				Action:    r.CatalogImport,
			},
			{
				Name:  "add",
				Usage: "Add or update a single artist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Artist name", Required: true},
					&cli.StringFlag{Name: "genre", Usage: "Genre label"},
					&cli.IntFlag{Name: "popularity", Usage: "Popularity score"},
					&cli.StringSliceFlag{Name: "song", Usage: "Song title (repeatable)"},
				},
				Action: r.CatalogAdd,
			},
			{
				Name:  "list",
				Usage: "List catalog artists",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "genre", Usage: "Only list artists with this genre"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of artists to list"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: text, json, or csv", Value: "text"},
				},
				Action: r.CatalogList,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an artist by name",
				ArgsUsage: "<name>",
				Action:    r.CatalogRemove,
			},
			{
				Name:   "normalize",
				Usage:  "Recompute normalized names for every artist",
				Action: r.CatalogNormalize,
			},
			{
				Name:   "genres",
				Usage:  "List genres with artist counts",
				Action: r.CatalogGenres,
			},
			{
				Name:  "sync",
				Usage: "Fetch artists from Spotify and add them to the catalog",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name to fetch (repeatable)", Required: true},
				},
				Action: r.CatalogSync,
			},
		},
	}
}

// recommendCommand ranks the catalog against the given artists.
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Aliases:   []string{"rec"},
		Usage:     "Recommend artists similar to the given ones",
		ArgsUsage: "<artist>[, <artist>...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "top-n", Aliases: []string{"n"}, Usage: "Number of recommendations (default from config)"},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv, md, or html",
				Value:   string(formatter.FormatText),
			},
			&cli.BoolFlag{Name: "popularity", Usage: "Add popularity as a scoring feature"},
			&cli.BoolFlag{Name: "exclude-input", Usage: "Leave the given artists out of the results"},
			&cli.BoolFlag{Name: "scores", Usage: "Include similarity scores"},
		},
		Action: r.Recommend,
	}
}

// serveCommand starts the web front end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the recommendation form and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive recommendation TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the TUI is running", Value: "./tmp/soundalike-tui.log"},
		},
		Action: r.TUI,
	}
}
