package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/shared"
	tu "github.com/desertthunder/plexlist/internal/testing"
)

// newLibrary builds a catalog with a "Movies" section and a "TV Shows" section holding one show.
func newLibrary() *tu.FakeCatalog {
	catalog := tu.NewFakeCatalog()
	catalog.AddSection("1", "Movies", models.KindMovie,
		tu.Movie("m1", "The Score", "An aging thief plans one last heist."),
		tu.Movie("m2", "Quiet Days", "A retired teacher tends her garden."),
	)
	catalog.AddSection("2", "TV Shows", models.KindShow)
	catalog.AddShow("2", tu.Show("s1", "Crew"),
		tu.Episode("e1", "Crew", "Pilot", "The crew gathers for a museum heist."),
		tu.Episode("e2", "Crew", "Aftermath", "Nobody trusts anybody."),
	)
	catalog.AddSection("3", "Music", models.KindArtist, models.Item{ID: "a1", Title: "Heist Band", Kind: models.KindArtist})
	return catalog
}

func heistOpts(sections ...string) CurateOpts {
	return CurateOpts{
		Playlist: "Heists",
		Sections: sections,
		Filter:   models.NewFilter([]string{"heist"}, false),
	}
}

func itemIDs(items []models.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestCurateEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Run", func(t *testing.T) {
		t.Run("creates missing playlist with matches in section order", func(t *testing.T) {
			catalog := newLibrary()
			engine := NewCurateEngine(catalog)

			result, err := engine.Run(ctx, nil, heistOpts("Movies", "TV Shows"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := strings.Join(itemIDs(result.Matches), ","); got != "m1,e1" {
				t.Errorf("expected matches m1,e1, got %s", got)
			}
			if result.Update == nil || !result.Update.Created {
				t.Fatalf("expected playlist to be created, got %+v", result.Update)
			}
			if result.Update.Added != 2 {
				t.Errorf("expected 2 items added, got %d", result.Update.Added)
			}
			if got := strings.Join(itemIDs(catalog.PlaylistItems("Heists")), ","); got != "m1,e1" {
				t.Errorf("expected playlist to hold m1,e1, got %s", got)
			}
			if catalog.AddCalls != 1 {
				t.Errorf("expected a single playlist write, got %d", catalog.AddCalls)
			}
		})

		t.Run("appends to existing playlist", func(t *testing.T) {
			catalog := newLibrary()
			catalog.AddPlaylist("Heists", false, tu.Movie("m9", "Old Entry", ""))
			engine := NewCurateEngine(catalog)

			result, err := engine.Run(ctx, nil, heistOpts("Movies"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Update.Created {
				t.Error("expected existing playlist to be reused")
			}
			if got := strings.Join(itemIDs(catalog.PlaylistItems("Heists")), ","); got != "m9,m1" {
				t.Errorf("expected m9,m1, got %s", got)
			}
			if n := catalog.PlaylistCount("Heists"); n != 1 {
				t.Errorf("expected one playlist, got %d", n)
			}
		})

		t.Run("repeated runs append duplicates", func(t *testing.T) {
			catalog := newLibrary()
			engine := NewCurateEngine(catalog)

			for range 2 {
				if _, err := engine.Run(ctx, nil, heistOpts("Movies", "TV Shows")); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			if n := catalog.PlaylistCount("Heists"); n != 1 {
				t.Errorf("expected playlist to be created once, got %d", n)
			}
			if got := strings.Join(itemIDs(catalog.PlaylistItems("Heists")), ","); got != "m1,e1,m1,e1" {
				t.Errorf("expected duplicated entries, got %s", got)
			}
		})

		t.Run("skips missing section and continues", func(t *testing.T) {
			catalog := newLibrary()
			engine := NewCurateEngine(catalog)

			result, err := engine.Run(ctx, nil, heistOpts("Nope", "Movies"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result.Sections) != 2 {
				t.Fatalf("expected 2 outcomes, got %d", len(result.Sections))
			}
			missing := result.Sections[0]
			if missing.Status != OutcomeSkipped || missing.Reason != ReasonNotFound {
				t.Errorf("expected not_found skip, got %s/%s", missing.Status, missing.Reason)
			}
			if !errors.Is(missing.Err, shared.ErrSectionNotFound) {
				t.Errorf("expected ErrSectionNotFound, got %v", missing.Err)
			}
			if result.Sections[1].Status != OutcomeMatched {
				t.Errorf("expected Movies to match, got %s", result.Sections[1].Status)
			}
			if len(result.Skipped()) != 1 {
				t.Errorf("expected 1 skipped section, got %d", len(result.Skipped()))
			}
		})

		t.Run("skips unsupported section kind", func(t *testing.T) {
			catalog := newLibrary()
			engine := NewCurateEngine(catalog)

			result, err := engine.Run(ctx, nil, heistOpts("Music", "Movies"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			music := result.Sections[0]
			if music.Reason != ReasonUnsupportedKind {
				t.Errorf("expected unsupported_kind, got %q", music.Reason)
			}
			if !errors.Is(music.Err, shared.ErrUnsupportedKind) {
				t.Errorf("expected ErrUnsupportedKind, got %v", music.Err)
			}
			if music.Scanned != 0 {
				t.Errorf("expected nothing scanned, got %d", music.Scanned)
			}
			if got := strings.Join(itemIDs(result.Matches), ","); got != "m1" {
				t.Errorf("expected only m1, got %s", got)
			}
		})

		t.Run("skips empty and unreadable sections", func(t *testing.T) {
			catalog := newLibrary()
			catalog.AddSection("4", "Empty", models.KindMovie)
			catalog.AddSection("5", "Broken", models.KindMovie, tu.Movie("b1", "Heist", ""))
			listErr := errors.New("connection reset")
			catalog.ItemsErr["5"] = listErr
			engine := NewCurateEngine(catalog)

			result, err := engine.Run(ctx, nil, heistOpts("Empty", "Broken", "Movies"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, o := range result.Sections[:2] {
				if o.Reason != ReasonEmpty {
					t.Errorf("%s: expected empty skip, got %q", o.Name, o.Reason)
				}
				if !errors.Is(o.Err, shared.ErrEmptySection) {
					t.Errorf("%s: expected ErrEmptySection, got %v", o.Name, o.Err)
				}
			}
			if !errors.Is(result.Sections[1].Err, listErr) {
				t.Errorf("expected listing error to be kept, got %v", result.Sections[1].Err)
			}
			if result.MatchCount() != 1 {
				t.Errorf("expected 1 match, got %d", result.MatchCount())
			}
		})

		t.Run("write failure is fatal", func(t *testing.T) {
			catalog := newLibrary()
			writeErr := errors.New("server exploded")
			catalog.AddErr = writeErr
			engine := NewCurateEngine(catalog)

			result, err := engine.Run(ctx, nil, heistOpts("Movies"))
			if !errors.Is(err, shared.ErrPlaylistWrite) {
				t.Fatalf("expected ErrPlaylistWrite, got %v", err)
			}
			if !errors.Is(err, writeErr) {
				t.Errorf("expected underlying error to be wrapped, got %v", err)
			}
			if result == nil || result.MatchCount() != 1 {
				t.Fatalf("expected partial result with 1 match, got %+v", result)
			}
			if result.Update != nil {
				t.Error("expected no playlist update")
			}
		})

		t.Run("zero matches still writes", func(t *testing.T) {
			t.Run("missing playlist fails", func(t *testing.T) {
				catalog := newLibrary()
				engine := NewCurateEngine(catalog)
				opts := heistOpts("Movies")
				opts.Filter = models.NewFilter([]string{"zeppelin"}, false)

				_, err := engine.Run(ctx, nil, opts)
				if !errors.Is(err, shared.ErrEmptyPlaylist) {
					t.Errorf("expected ErrEmptyPlaylist, got %v", err)
				}
				if !errors.Is(err, shared.ErrPlaylistWrite) {
					t.Errorf("expected ErrPlaylistWrite, got %v", err)
				}
				if !strings.Contains(err.Error(), "no items matched") || !strings.Contains(err.Error(), "zeppelin") {
					t.Errorf("expected error to explain that nothing matched, got %q", err.Error())
				}
				if catalog.AddCalls != 1 {
					t.Errorf("expected write to be attempted, got %d calls", catalog.AddCalls)
				}
				if catalog.PlaylistCount("Heists") != 0 {
					t.Error("expected no playlist to be created")
				}
			})

			t.Run("existing playlist is unchanged", func(t *testing.T) {
				catalog := newLibrary()
				catalog.AddPlaylist("Heists", false, tu.Movie("m9", "Old Entry", ""))
				engine := NewCurateEngine(catalog)
				opts := heistOpts("Movies")
				opts.Filter = models.NewFilter([]string{"zeppelin"}, false)

				result, err := engine.Run(ctx, nil, opts)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.Update.Added != 0 {
					t.Errorf("expected nothing added, got %d", result.Update.Added)
				}
				if len(catalog.PlaylistItems("Heists")) != 1 {
					t.Error("expected playlist contents to be unchanged")
				}
			})
		})

		t.Run("dry run skips the write", func(t *testing.T) {
			catalog := newLibrary()
			engine := NewCurateEngine(catalog)
			opts := heistOpts("Movies", "TV Shows")
			opts.DryRun = true

			result, err := engine.Run(ctx, nil, opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.DryRun || result.Update != nil {
				t.Errorf("expected dry run result without update, got %+v", result)
			}
			if result.MatchCount() != 2 {
				t.Errorf("expected 2 matches, got %d", result.MatchCount())
			}
			if catalog.AddCalls != 0 {
				t.Errorf("expected no writes, got %d", catalog.AddCalls)
			}
		})

		t.Run("rejects invalid options", func(t *testing.T) {
			tc := []struct {
				name string
				opts CurateOpts
				want error
			}{
				{name: "missing playlist", opts: CurateOpts{Sections: []string{"Movies"}, Filter: models.NewFilter([]string{"heist"}, false)}, want: shared.ErrMissingArgument},
				{name: "missing sections", opts: CurateOpts{Playlist: "Heists", Filter: models.NewFilter([]string{"heist"}, false)}, want: shared.ErrMissingArgument},
				{name: "no keywords", opts: CurateOpts{Playlist: "Heists", Sections: []string{"Movies"}}, want: shared.ErrInvalidArgument},
				{name: "blank keyword", opts: CurateOpts{Playlist: "Heists", Sections: []string{"Movies"}, Filter: models.NewFilter([]string{" "}, true)}, want: shared.ErrInvalidArgument},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					catalog := newLibrary()
					_, err := NewCurateEngine(catalog).Run(ctx, nil, tt.opts)
					if !errors.Is(err, tt.want) {
						t.Errorf("expected %v, got %v", tt.want, err)
					}
					if catalog.AddCalls != 0 {
						t.Error("expected no writes")
					}
				})
			}
		})

		t.Run("requires catalog", func(t *testing.T) {
			_, err := NewCurateEngine(nil).Run(ctx, nil, heistOpts("Movies"))
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("ScanSection", func(t *testing.T) {
		t.Run("evaluates every episode of every show", func(t *testing.T) {
			catalog := tu.NewFakeCatalog()
			catalog.AddSection("2", "TV Shows", models.KindShow)
			catalog.AddShow("2", tu.Show("s1", "Heist Show"),
				tu.Episode("a1", "Heist Show", "One", ""),
				tu.Episode("a2", "Heist Show", "Two", ""),
				tu.Episode("a3", "Heist Show", "Three", ""),
			)
			catalog.AddShow("2", tu.Show("s2", "Other"),
				tu.Episode("b1", "Other", "One", ""),
				tu.Episode("b2", "Other", "Two", ""),
				tu.Episode("b3", "Other", "Three", ""),
			)
			engine := NewCurateEngine(catalog)

			outcome := engine.ScanSection(ctx, nil, "TV Shows", models.NewFilter([]string{"heist"}, false))

			if outcome.Scanned != 6 {
				t.Errorf("expected 6 evaluated episodes, got %d", outcome.Scanned)
			}
			if outcome.Shows != 2 || catalog.EpisodeCalls != 2 {
				t.Errorf("expected 2 shows expanded, got %d (%d calls)", outcome.Shows, catalog.EpisodeCalls)
			}
			if outcome.Status != OutcomeNoMatches {
				t.Errorf("expected show title not to be matched, got %s", outcome.Status)
			}
		})

		t.Run("continues past a failed show", func(t *testing.T) {
			catalog := newLibrary()
			catalog.AddShow("2", tu.Show("s2", "Broken"))
			catalog.AddShow("2", tu.Show("s3", "Later"), tu.Episode("e9", "Later", "Heist Night", ""))
			catalog.EpisodesErr["s2"] = errors.New("timeout")
			engine := NewCurateEngine(catalog)

			outcome := engine.ScanSection(ctx, nil, "TV Shows", models.NewFilter([]string{"heist"}, false))

			if outcome.FailedShows != 1 {
				t.Errorf("expected 1 failed show, got %d", outcome.FailedShows)
			}
			if got := strings.Join(itemIDs(outcome.Matches), ","); got != "e1,e9" {
				t.Errorf("expected e1,e9, got %s", got)
			}
		})

		t.Run("all mode requires every keyword", func(t *testing.T) {
			engine := NewCurateEngine(newLibrary())

			outcome := engine.ScanSection(ctx, nil, "Movies", models.NewFilter([]string{"heist", "thief"}, true))
			if got := strings.Join(itemIDs(outcome.Matches), ","); got != "m1" {
				t.Errorf("expected m1, got %s", got)
			}

			outcome = engine.ScanSection(ctx, nil, "Movies", models.NewFilter([]string{"heist", "garden"}, true))
			if outcome.Status != OutcomeNoMatches {
				t.Errorf("expected no matches, got %s", outcome.Status)
			}
		})

		t.Run("section lookup failure is a skip", func(t *testing.T) {
			catalog := newLibrary()
			catalog.SectionsErr = errors.New("unreachable")
			outcome := NewCurateEngine(catalog).ScanSection(ctx, nil, "Movies", models.NewFilter([]string{"heist"}, false))

			if !outcome.Skipped() || outcome.Reason != ReasonNotFound {
				t.Errorf("expected not_found skip, got %s/%s", outcome.Status, outcome.Reason)
			}
		})
	})

	t.Run("Progress", func(t *testing.T) {
		t.Run("reports each section and the write", func(t *testing.T) {
			progress := make(chan ProgressUpdate, 100)
			engine := NewCurateEngine(newLibrary())

			if _, err := engine.Run(ctx, progress, heistOpts("Movies", "Nope")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(progress)

			var done []ProgressUpdate
			var last ProgressUpdate
			for update := range progress {
				if update.Phase == SectionDone {
					done = append(done, update)
				}
				last = update
			}

			if len(done) != 2 {
				t.Fatalf("expected 2 section updates, got %d", len(done))
			}
			if done[1].Step != 2 || done[1].Total != 2 {
				t.Errorf("expected step 2/2, got %d/%d", done[1].Step, done[1].Total)
			}
			if _, ok := done[0].Data.(SectionOutcome); !ok {
				t.Errorf("expected SectionOutcome data, got %T", done[0].Data)
			}
			if last.Phase != PlaylistWritten {
				t.Errorf("expected final phase %s, got %s", PlaylistWritten, last.Phase)
			}
			if !strings.Contains(last.Message, "created") {
				t.Errorf("expected creation message, got %q", last.Message)
			}
		})

		t.Run("never blocks on a full channel", func(t *testing.T) {
			progress := make(chan ProgressUpdate)
			engine := NewCurateEngine(newLibrary())

			if _, err := engine.Run(ctx, progress, heistOpts("Movies", "TV Shows")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})
}

func TestSectionOutcome(t *testing.T) {
	tc := []struct {
		name    string
		outcome SectionOutcome
		want    string
	}{
		{name: "not found", outcome: SectionOutcome{Name: "Nope", Status: OutcomeSkipped, Reason: ReasonNotFound}, want: `Could not find section "Nope"`},
		{name: "unsupported", outcome: SectionOutcome{Name: "Music", Kind: models.KindArtist, Status: OutcomeSkipped, Reason: ReasonUnsupportedKind}, want: "is a(n) artist section"},
		{name: "empty", outcome: SectionOutcome{Name: "Empty", Status: OutcomeSkipped, Reason: ReasonEmpty}, want: `Could not get any items from section "Empty"`},
		{name: "no matches", outcome: SectionOutcome{Name: "Movies", Status: OutcomeNoMatches}, want: `Did not find any matching items in "Movies"`},
		{name: "one match", outcome: SectionOutcome{Name: "Movies", Status: OutcomeMatched, Matches: []models.Item{{ID: "1"}}}, want: `Found 1 matching item in "Movies"`},
		{name: "many matches", outcome: SectionOutcome{Name: "Movies", Status: OutcomeMatched, Matches: []models.Item{{ID: "1"}, {ID: "2"}}}, want: `Found 2 matching items in "Movies"`},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Message(); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q to contain %q", got, tt.want)
			}
		})
	}
}
