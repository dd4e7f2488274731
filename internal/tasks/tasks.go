package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/services"
	"github.com/desertthunder/plexlist/internal/shared"
)

// OutcomeStatus classifies how a requested section was handled.
type OutcomeStatus string

const (
	OutcomeMatched   OutcomeStatus = "matched"    // scanned, at least one match
	OutcomeNoMatches OutcomeStatus = "no_matches" // scanned, nothing matched
	OutcomeSkipped   OutcomeStatus = "skipped"    // not scanned, see SkipReason
)

// SkipReason explains a skipped section.
type SkipReason string

const (
	ReasonNone            SkipReason = ""
	ReasonNotFound        SkipReason = "not_found"
	ReasonUnsupportedKind SkipReason = "unsupported_kind"
	ReasonEmpty           SkipReason = "empty"
)

// SectionOutcome is the result of processing one requested section.
//
// Skipped sections are diagnostics, never errors: the run continues with the next section.
type SectionOutcome struct {
	Name        string        // Requested section name
	Kind        models.Kind   // Kind of the resolved section, empty when not found
	Status      OutcomeStatus // How the section was handled
	Reason      SkipReason    // Why the section was skipped
	Err         error         // Underlying error for a skipped section, if any
	Scanned     int           // Items tested against the filter
	Shows       int           // Shows enumerated in a show section
	FailedShows int           // Shows whose episodes could not be listed
	Matches     []models.Item // Items that matched
}

// Skipped reports whether the section was not scanned.
func (o SectionOutcome) Skipped() bool {
	return o.Status == OutcomeSkipped
}

// Message renders the operator-facing diagnostic for the outcome.
func (o SectionOutcome) Message() string {
	switch {
	case o.Reason == ReasonNotFound:
		return fmt.Sprintf("Could not find section %q", o.Name)
	case o.Reason == ReasonUnsupportedKind:
		return fmt.Sprintf("Only movie and show sections can be curated. %q is a(n) %s section.", o.Name, o.Kind)
	case o.Reason == ReasonEmpty:
		return fmt.Sprintf("Could not get any items from section %q", o.Name)
	case o.Status == OutcomeNoMatches:
		return fmt.Sprintf("Did not find any matching items in %q", o.Name)
	default:
		return fmt.Sprintf("Found %d matching %s in %q", len(o.Matches), shared.Pluralize(len(o.Matches), "item", "items"), o.Name)
	}
}

// CurateOpts contains the inputs of a curate run.
type CurateOpts struct {
	Playlist string        // Target playlist name, created when absent
	Sections []string      // Section names, processed in order
	Filter   models.Filter // Keyword filter
	DryRun   bool          // Skip the playlist write
}

// Validate checks the options before any remote call is made.
func (o CurateOpts) Validate() error {
	if strings.TrimSpace(o.Playlist) == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	if len(o.Sections) == 0 {
		return fmt.Errorf("%w: at least one section", shared.ErrMissingArgument)
	}
	if err := o.Filter.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return nil
}

// CurateResult contains all data from a curate run.
type CurateResult struct {
	Playlist string                 // Target playlist name
	Filter   models.Filter          // Filter the items were tested against
	Sections []SectionOutcome       // One outcome per requested section, in request order
	Matches  []models.Item          // Run-wide matches in section order, duplicates kept
	Update   *models.PlaylistUpdate // Result of the playlist write, nil for dry runs and failures
	DryRun   bool                   // The playlist write was skipped
}

// MatchCount returns the size of the run-wide match set.
func (r *CurateResult) MatchCount() int {
	return len(r.Matches)
}

// Skipped returns the outcomes of sections that were not scanned.
func (r *CurateResult) Skipped() []SectionOutcome {
	var skipped []SectionOutcome
	for _, o := range r.Sections {
		if o.Skipped() {
			skipped = append(skipped, o)
		}
	}
	return skipped
}

// Curator defines the curate operation.
type Curator interface {
	// Run scans each requested section, then adds all matches to the playlist in a single write.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts CurateOpts) (*CurateResult, error)
}

// CurateEngine implements Curator on top of a [services.Catalog].
type CurateEngine struct {
	catalog services.Catalog
}

// NewCurateEngine creates a new CurateEngine reading from and writing to catalog.
func NewCurateEngine(catalog services.Catalog) *CurateEngine {
	return &CurateEngine{catalog: catalog}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CurateEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs a curate run.
//
// Per-section problems become skipped outcomes. The playlist write is attempted even when nothing matched;
// its failure is the only error returned once the options are valid, and the partial result is returned with it.
func (e *CurateEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts CurateOpts) (*CurateResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &CurateResult{
		Playlist: opts.Playlist,
		Filter:   opts.Filter,
		Sections: make([]SectionOutcome, 0, len(opts.Sections)),
		Matches:  []models.Item{},
		DryRun:   opts.DryRun,
	}

	total := len(opts.Sections)
	for i, name := range opts.Sections {
		outcome := e.ScanSection(ctx, progress, name, opts.Filter)
		result.Sections = append(result.Sections, outcome)
		result.Matches = append(result.Matches, outcome.Matches...)
		e.sendProgress(progress, sectionDoneUpdate(i+1, total, outcome))
	}

	if opts.DryRun {
		return result, nil
	}

	e.sendProgress(progress, writePlaylistUpdate(opts.Playlist, len(result.Matches)))

	update, err := e.catalog.AddToPlaylist(ctx, opts.Playlist, result.Matches, true)
	if err != nil {
		if len(result.Matches) == 0 && errors.Is(err, shared.ErrEmptyPlaylist) {
			return result, fmt.Errorf("%w: no items matched %s, so %q was not created: %w",
				shared.ErrPlaylistWrite, opts.Filter, opts.Playlist, err)
		}
		return result, fmt.Errorf("%w: %q: %w", shared.ErrPlaylistWrite, opts.Playlist, err)
	}

	result.Update = update
	e.sendProgress(progress, playlistWrittenUpdate(update))
	return result, nil
}

// ScanSection resolves a section by name and tests its matchable items against filter.
//
// Movies are tested directly. Shows are expanded into their episodes and never tested themselves.
func (e *CurateEngine) ScanSection(ctx context.Context, progress chan<- ProgressUpdate, name string, filter models.Filter) SectionOutcome {
	outcome := SectionOutcome{Name: name, Status: OutcomeSkipped}

	e.sendProgress(progress, resolveSectionUpdate(1, 1, name))
	section, err := services.FindSection(ctx, e.catalog, name)
	if err != nil {
		outcome.Reason = ReasonNotFound
		outcome.Err = err
		return outcome
	}
	outcome.Kind = section.Kind

	if !section.Kind.Scannable() {
		outcome.Reason = ReasonUnsupportedKind
		outcome.Err = fmt.Errorf("%w: %s", shared.ErrUnsupportedKind, section.Kind)
		return outcome
	}

	e.sendProgress(progress, loadItemsUpdate(name))
	items, err := e.catalog.ListItems(ctx, *section)
	if err != nil || len(items) == 0 {
		outcome.Reason = ReasonEmpty
		outcome.Err = errors.Join(shared.ErrEmptySection, err)
		return outcome
	}

	total := len(items)
	e.sendProgress(progress, scanItemsUpdate(0, total, *section))

	for i, item := range items {
		if section.Kind == models.KindShow {
			outcome.Shows++
			episodes, err := e.catalog.ListEpisodes(ctx, item)
			if err != nil {
				outcome.FailedShows++
			}
			for _, ep := range episodes {
				outcome.Scanned++
				if Matches(ep, filter) {
					outcome.Matches = append(outcome.Matches, ep)
				}
			}
		} else {
			outcome.Scanned++
			if Matches(item, filter) {
				outcome.Matches = append(outcome.Matches, item)
			}
		}
		e.sendProgress(progress, scanItemsUpdate(i+1, total, *section))
	}

	outcome.Status = OutcomeNoMatches
	if len(outcome.Matches) > 0 {
		outcome.Status = OutcomeMatched
	}
	return outcome
}
