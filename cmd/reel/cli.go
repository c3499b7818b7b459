package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/reel/internal/config"
	"github.com/hpungsan/reel/internal/errors"
	"github.com/hpungsan/reel/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "reel",
		Usage:   "Rolling block recorder",
		Version: Version,
		Commands: []*cli.Command{
			recordCmd(db, cfg),
			listCmd(db),
			savedCmd(db),
			showCmd(db),
			saveCmd(db),
			trimCmd(db),
			deleteCmd(db),
			pruneCmd(db, cfg),
			exportCmd(db, cfg, baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recent unsaved sessions, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListRecent(c.Context, db, ops.ListRecentInput{
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// savedCmd creates the saved command.
func savedCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "List saved sessions, newest first",
		Action: func(c *cli.Context) error {
			output, err := ops.ListSaved(c.Context, db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a session's metadata by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{
				ID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Mark a session as saved, excluding it from pruning",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Name for the saved session"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Save(c.Context, db, ops.SaveInput{
				ID:   c.Args().First(),
				Name: c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// trimCmd creates the trim command.
func trimCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "trim",
		Usage:     "Set trim points on a saved session",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "in", Required: true, Usage: "Trim start offset in seconds"},
			&cli.Float64Flag{Name: "out", Required: true, Usage: "Trim end offset in seconds"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Trim(c.Context, db, ops.TrimInput{
				ID:  c.Args().First(),
				In:  c.Float64("in"),
				Out: c.Float64("out"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a session and its media payload",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{
				ID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// pruneCmd creates the prune command.
func pruneCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Apply the retention budget to unsaved sessions",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "budget", Aliases: []string{"b"}, Usage: "Duration budget in seconds (default: configured retention budget)"},
		},
		Action: func(c *cli.Context) error {
			budget := float64(cfg.RetentionBudgetSeconds)
			if c.IsSet("budget") {
				budget = c.Float64("budget")
			}

			output, err := ops.Prune(c.Context, db, ops.PruneInput{
				BudgetSeconds: budget,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a session's media payload to the exports directory",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Destination directory (default: <data dir>/exports)"},
		},
		Action: func(c *cli.Context) error {
			dir := c.String("dir")
			if dir == "" {
				dir = filepath.Join(baseDir, "exports")
			}

			output, err := ops.Export(c.Context, db, ops.ExportInput{
				ID:     c.Args().First(),
				Dir:    dir,
				Format: cfg.CaptureFormat,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if reelErr, ok := err.(*errors.ReelError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", reelErr.Code, reelErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
