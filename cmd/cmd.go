// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/plexlist/internal/formatter"
	"github.com/urfave/cli/v3"
)

// commonFlags returns the flags every command accepts
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// plexFlags returns the server connection flags, falling back to PLEX_URL and PLEX_TOKEN
func plexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Plex server URL (default: plex.url from config)",
			Sources: cli.EnvVars("PLEX_URL"),
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Plex token (default: plex.token from config)",
			Sources: cli.EnvVars("PLEX_TOKEN"),
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	flags := []cli.Flag{}
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// curateCommand scans sections for keyword matches and adds them to a playlist
func curateCommand(r *Runner) *cli.Command {
	formats := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		formats[i] = string(f)
	}

	return &cli.Command{
		Name:      "curate",
		Usage:     "Add movies and episodes whose summary or title contains keywords to a playlist",
		UsageText: `plexlist curate -p "Heists" -s Movies -s "TV Shows" -k heist -k robbery`,
		Flags: withFlags(commonFlags(), plexFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:     "playlist",
				Aliases:  []string{"p"},
				Usage:    "Playlist to add matches to, created when it does not exist",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "keyword",
				Aliases:  []string{"k"},
				Usage:    "Keyword to look for (repeatable)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "section",
				Aliases:  []string{"s"},
				Usage:    "Library section to scan, in order (repeatable)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Require every keyword to match instead of any",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Scan and report matches without changing the playlist",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: fmt.Sprintf("Write a report of the run (%s)", strings.Join(formats, ", ")),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record this run even when history is enabled",
			},
		}),
		Action: r.Curate,

		// section names and keywords may contain commas
		DisableSliceFlagSeparator: true,
	}
}

// sectionsCommand lists library sections
func sectionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sections",
		Usage: "List library sections",
		Flags: withFlags(commonFlags(), plexFlags(), []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		}),
		Action: r.Sections,
	}
}

// playlistsCommand lists playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List playlists",
		Flags: withFlags(commonFlags(), plexFlags(), []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		}),
		Action: r.Playlists,
	}
}

// historyCommand lists recorded curate runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded curate runs",
		Flags: withFlags(commonFlags(), []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Only show runs for this playlist",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Show the section outcomes of a single run",
			},
		}),
		Action: r.History,
	}
}

// setupCommand writes a config file and initializes the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file and initialize the history database",
		Flags:  commonFlags(),
		Action: r.Setup,
	}
}
