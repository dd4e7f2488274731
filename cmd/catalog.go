package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

// Sections lists the library sections of the server.
func (r *Runner) Sections(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	catalog, err := r.catalogFor(cmd)
	if err != nil {
		return err
	}

	sections, err := catalog.ListSections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}
	r.logger.Debug("fetched sections", "count", len(sections))

	if cmd.Bool("json") {
		return r.writeJSON(sections, true)
	}

	rows := make([][]string, len(sections))
	for i, s := range sections {
		curatable := "no"
		if s.Kind.Scannable() {
			curatable = "yes"
		}
		rows[i] = []string{s.Key, s.Name, string(s.Kind), curatable}
	}

	return r.writeTable([]string{"Key", "Name", "Kind", "Curatable"}, rows, []columnAlignment{alignRight})
}

// Playlists lists the playlists on the server.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	catalog, err := r.catalogFor(cmd)
	if err != nil {
		return err
	}

	playlists, err := catalog.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	r.logger.Debug("fetched playlists", "count", len(playlists))

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	rows := make([][]string, len(playlists))
	for i, pl := range playlists {
		smart := ""
		if pl.Smart {
			smart = "smart"
		}
		rows[i] = []string{pl.ID, pl.Name, strconv.Itoa(pl.ItemCount), smart}
	}

	return r.writeTable([]string{"ID", "Name", "Items", "Type"}, rows, []columnAlignment{alignRight, alignLeft, alignRight})
}
