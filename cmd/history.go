package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/repositories"
	"github.com/urfave/cli/v3"
)

const historyTimeFormat = "2006-01-02 15:04"

// History lists recorded curate runs, or the section outcomes of one run with --id.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	if !r.config.History.Enabled {
		r.logger.Warn("history is disabled; set history.enabled = true to record runs")
	}

	db, err := r.openDB(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)

	if id := cmd.String("id"); id != "" {
		run, err := repo.Get(id)
		if err != nil {
			return err
		}
		return r.writeRun(run)
	}

	runs, err := repo.List(map[string]any{
		"playlist": cmd.String("playlist"),
		"limit":    int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded.\n")
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			strconv.Itoa(run.Sequence()),
			run.CreatedAt().Local().Format(historyTimeFormat),
			run.Playlist(),
			keywordSummary(run),
			strconv.Itoa(run.MatchCount()),
			string(run.Status()),
			run.ID(),
		}
	}

	return r.writeTable(
		[]string{"#", "Date", "Playlist", "Keywords", "Matches", "Status", "ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func (r *Runner) writeRun(run *models.Run) error {
	r.writePlain("Run #%d  %s\n", run.Sequence(), run.CreatedAt().Local().Format(historyTimeFormat))
	r.writePlain("Playlist: %s\n", run.Playlist())
	r.writePlain("Keywords: %s\n", keywordSummary(run))
	r.writePlain("Status:   %s (%d matches)\n", run.Status(), run.MatchCount())
	if run.ErrorText() != "" {
		r.writePlain("Error:    %s\n", run.ErrorText())
	}

	rows := make([][]string, len(run.Outcomes()))
	for i, o := range run.Outcomes() {
		rows[i] = []string{o.Name, o.Status, o.Reason, strconv.Itoa(o.Scanned), strconv.Itoa(o.Matched)}
	}

	return r.writeTable(
		[]string{"Section", "Status", "Reason", "Scanned", "Matched"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func keywordSummary(run *models.Run) string {
	sep := " | "
	if run.Mode() == models.ModeAll {
		sep = " & "
	}
	return strings.Join(run.Keywords(), sep)
}
