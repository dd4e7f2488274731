package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plexlist/internal/formatter"
	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/repositories"
	"github.com/desertthunder/plexlist/internal/services"
	"github.com/desertthunder/plexlist/internal/shared"
	"github.com/desertthunder/plexlist/internal/tasks"
	"github.com/desertthunder/plexlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Curate scans the requested sections and adds every match to the playlist.
//
// Skipped sections are logged as warnings and do not fail the command; a failed playlist write does.
func (r *Runner) Curate(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	opts := tasks.CurateOpts{
		Playlist: cmd.String("playlist"),
		Sections: cmd.StringSlice("section"),
		Filter:   models.NewFilter(cmd.StringSlice("keyword"), cmd.Bool("all")),
		DryRun:   cmd.Bool("dry-run"),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	var format formatter.Format
	if value := cmd.String("report"); value != "" {
		f, err := formatter.ParseFormat(value)
		if err != nil {
			return err
		}
		format = f
	} else if opts.DryRun {
		format = formatter.FormatText
	}
	reportPath := cmd.String("output")

	catalog, err := r.catalogFor(cmd)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "playlist", opts.Playlist)
	logger.Info("starting curate run", "sections", len(opts.Sections), "keywords", opts.Filter.String(), "dry_run", opts.DryRun)

	result, runErr := r.runCurate(ctx, catalog, opts, logger)
	if result != nil {
		logOutcomes(logger, result)
	}

	if r.config.History.Enabled && !cmd.Bool("no-history") {
		r.recordRun(logger, opts, result, runErr)
	}

	if runErr != nil {
		return runErr
	}

	if format != "" {
		if reportPath == "" {
			return formatter.Write(r.output, result, format)
		}
		path, err := formatter.WriteFile(result, format, reportPath)
		if err != nil {
			return err
		}
		logger.Info("report written", "path", path, "format", format)
	}

	return r.writeSummary(result)
}

// runCurate runs the engine while a single goroutine renders its progress.
//
// The renderer is drained before returning so nothing is drawn after the summary.
func (r *Runner) runCurate(ctx context.Context, catalog services.Catalog, opts tasks.CurateOpts, logger *log.Logger) (*tasks.CurateResult, error) {
	engine := tasks.NewCurateEngine(catalog)
	renderer := ui.NewProgressRenderer(r.progress, logger)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		renderer.Consume(progressCh)
	}()

	result, err := engine.Run(ctx, progressCh, opts)
	close(progressCh)
	<-done

	return result, err
}

func logOutcomes(logger *log.Logger, result *tasks.CurateResult) {
	for _, o := range result.Sections {
		if o.Skipped() {
			kv := []any{"section", o.Name, "reason", o.Reason}
			if o.Err != nil {
				kv = append(kv, "error", o.Err)
			}
			logger.Warn(o.Message(), kv...)
			continue
		}

		logger.Info(o.Message(), "section", o.Name, "scanned", o.Scanned)
		if o.FailedShows > 0 {
			logger.Warn("some shows could not be listed", "section", o.Name, "shows", o.FailedShows)
		}
	}
}

// recordRun stores the run in the history database.
//
// Failures are logged and never change the outcome of the command.
func (r *Runner) recordRun(logger *log.Logger, opts tasks.CurateOpts, result *tasks.CurateResult, runErr error) {
	db, err := r.openDB(r.config.Database)
	if err != nil {
		logger.Warn("failed to open history database", "path", r.config.Database.Path, "error", err)
		return
	}
	defer db.Close()

	run := models.NewRun(0, opts.Playlist, opts.Filter, opts.Sections)

	status := models.RunSuccess
	if opts.DryRun {
		status = models.RunDryRun
	}

	matchCount := 0
	if result != nil {
		matchCount = result.MatchCount()
		run.SetOutcomes(runSections(result))
	}
	run.Finish(status, matchCount, runErr)

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}

	logger.Debug("run recorded", "id", run.ID(), "sequence", run.Sequence(), "status", run.Status())
}

func runSections(result *tasks.CurateResult) []models.RunSection {
	sections := make([]models.RunSection, len(result.Sections))
	for i, o := range result.Sections {
		sections[i] = models.RunSection{
			Name:    o.Name,
			Status:  string(o.Status),
			Reason:  string(o.Reason),
			Scanned: o.Scanned,
			Matched: len(o.Matches),
		}
	}
	return sections
}

func (r *Runner) writeSummary(result *tasks.CurateResult) error {
	count := result.MatchCount()
	items := shared.Pluralize(count, "item", "items")

	switch {
	case result.DryRun:
		return r.writePlain("%s\n", ui.Styles.Warn(fmt.Sprintf("Dry run: %d matching %s, %q was not changed", count, items, result.Playlist)))
	case result.Update != nil && result.Update.Created:
		return r.writePlain("%s\n", ui.Styles.OK(fmt.Sprintf("✓ %q created with %d %s", result.Playlist, count, items)))
	default:
		return r.writePlain("%s\n", ui.Styles.OK(fmt.Sprintf("✓ %q updated with %d %s", result.Playlist, count, items)))
	}
}
