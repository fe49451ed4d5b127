// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the playlist HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a bearer token for a user id",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User id placed in the token subject",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Token,
	}
}

func problemCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "problem",
		Aliases: []string{"problems"},
		Usage:   "Manage the problem catalog",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a problem",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Problem title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "difficulty",
						Usage: "EASY, MEDIUM or HARD",
						Value: "MEDIUM",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProblemAdd,
			},
			{
				Name:  "list",
				Usage: "List problems",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "difficulty",
						Usage: "Only list problems of this difficulty",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ProblemList,
			},
		},
	}
}

func playlistCommand(r *Runner) *cli.Command {
	userFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:     "user",
			Aliases:  []string{"u"},
			Usage:    "Owning user id",
			Required: true,
		}
	}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"playlists"},
		Usage:   "Manage, inspect and export playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist for a user",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.StringSliceFlag{
						Name:  "problem",
						Usage: "Problem id to add (repeatable)",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "add",
				Usage: "Add problems to a playlist",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist id",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "problem",
						Usage:    "Problem id to add (repeatable)",
						Required: true,
					},
				},
				Action: r.PlaylistAddProblems,
			},
			{
				Name:  "remove",
				Usage: "Remove problems from a playlist",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist id",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "problem",
						Usage:    "Problem id to remove (repeatable)",
						Required: true,
					},
				},
				Action: r.PlaylistRemoveProblems,
			},
			{
				Name:  "list",
				Usage: "List a user's playlists",
				Flags: []cli.Flag{
					userFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist with its problems",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist id",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "export",
				Usage: "Export playlists to csv, markdown, txt or json",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Playlist id to export (repeatable; all playlists when omitted)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, md, txt or json",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: cpx_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}
