// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the attempt journal database (overrides config)",
	}
}

// authorizeCommand runs the loopback redirect capture
func authorizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "authorize",
		Aliases: []string{"auth"},
		Usage:   "Open the provider's authorization page and capture the redirect on 127.0.0.1",
		Flags: []cli.Flag{
			configFlag(),
			dbFlag(),
			&cli.IntFlag{
				Name:  "port",
				Usage: "Loopback port for the redirect endpoint (0 picks a free port)",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Redirect path",
			},
			&cli.StringFlag{
				Name:  "auth-url",
				Usage: "Provider authorization endpoint",
			},
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "OAuth2 client ID",
			},
			&cli.StringSliceFlag{
				Name:  "scope",
				Usage: "Scope to request, repeatable",
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "Anti-forgery state token (random when empty)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the redirect, 0 waits forever",
				Value: 2 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-journal",
				Usage: "Do not record the attempt in the journal",
			},
		},
		Action: r.Authorize,
	}
}

// attemptsCommand inspects the attempt journal
func attemptsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "attempts",
		Usage: "Inspect recorded authorization attempts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent attempts, newest first",
				Flags: []cli.Flag{
					configFlag(),
					dbFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of attempts to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "outcome",
						Usage: "Only attempts with this outcome",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the list to a compressed archive",
					},
				},
				Action: r.AttemptsList,
			},
			{
				Name:  "show",
				Usage: "Print attempts from an archive written by list --out",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AttemptsShow,
			},
			{
				Name:  "delete",
				Usage: "Remove an attempt from the journal",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), dbFlag()},
				Action: r.AttemptsDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the attempt journal and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					dbFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
