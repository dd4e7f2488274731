// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/shared"
)

// FakeCatalog is an in-memory test double for [services.Catalog].
//
// Playlist writes follow the Plex adapter: existing playlists are appended to (duplicates kept),
// missing playlists are created once, and creating an empty playlist fails.
type FakeCatalog struct {
	mu sync.Mutex

	sections      []models.Section
	items         map[string][]models.Item // by section key
	episodes      map[string][]models.Item // by show ID
	playlists     []models.Playlist
	playlistItems map[string][]models.Item // by playlist ID
	nextID        int

	SectionsErr  error            // returned by ListSections
	PlaylistsErr error            // returned by ListPlaylists
	ItemsErr     map[string]error // returned by ListItems, by section key
	EpisodesErr  map[string]error // returned by ListEpisodes, by show ID
	AddErr       error            // returned by AddToPlaylist

	EpisodeCalls int // ListEpisodes invocations
	AddCalls     int // AddToPlaylist invocations
}

// NewFakeCatalog creates an empty catalog.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		items:         map[string][]models.Item{},
		episodes:      map[string][]models.Item{},
		playlistItems: map[string][]models.Item{},
		ItemsErr:      map[string]error{},
		EpisodesErr:   map[string]error{},
	}
}

// Movie builds a movie item.
func Movie(id, title, summary string) models.Item {
	return models.Item{ID: id, Title: title, Summary: summary, Kind: models.KindMovie}
}

// Show builds a show item.
func Show(id, title string) models.Item {
	return models.Item{ID: id, Title: title, Kind: models.KindShow}
}

// Episode builds an episode item of show.
func Episode(id, show, title, summary string) models.Item {
	return models.Item{ID: id, Title: title, Summary: summary, Kind: models.KindEpisode, ShowTitle: show}
}

// AddSection registers a section with its top-level items.
func (f *FakeCatalog) AddSection(key, name string, kind models.Kind, items ...models.Item) models.Section {
	f.mu.Lock()
	defer f.mu.Unlock()

	section := models.Section{Key: key, Name: name, Kind: kind}
	f.sections = append(f.sections, section)
	f.items[key] = append(f.items[key], items...)
	return section
}

// AddShow registers a show in a section together with its episodes.
func (f *FakeCatalog) AddShow(sectionKey string, show models.Item, episodes ...models.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[sectionKey] = append(f.items[sectionKey], show)
	f.episodes[show.ID] = append(f.episodes[show.ID], episodes...)
}

// AddPlaylist registers an existing playlist holding items.
func (f *FakeCatalog) AddPlaylist(name string, smart bool, items ...models.Item) models.Playlist {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(name, smart, items)
}

func (f *FakeCatalog) createLocked(name string, smart bool, items []models.Item) models.Playlist {
	f.nextID++
	pl := models.Playlist{ID: fmt.Sprintf("pl-%d", f.nextID), Name: name, ItemCount: len(items), Smart: smart}
	f.playlists = append(f.playlists, pl)
	f.playlistItems[pl.ID] = append([]models.Item(nil), items...)
	return pl
}

// PlaylistItems returns the items of the first playlist called name.
func (f *FakeCatalog) PlaylistItems(name string) []models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pl := range f.playlists {
		if pl.Name == name {
			return append([]models.Item(nil), f.playlistItems[pl.ID]...)
		}
	}
	return nil
}

// PlaylistCount returns the number of playlists called name.
func (f *FakeCatalog) PlaylistCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, pl := range f.playlists {
		if pl.Name == name {
			n++
		}
	}
	return n
}

func (f *FakeCatalog) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PlaylistsErr != nil {
		return nil, f.PlaylistsErr
	}
	playlists := make([]models.Playlist, len(f.playlists))
	for i, pl := range f.playlists {
		pl.ItemCount = len(f.playlistItems[pl.ID])
		playlists[i] = pl
	}
	return playlists, nil
}

func (f *FakeCatalog) ListSections(ctx context.Context) ([]models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SectionsErr != nil {
		return nil, f.SectionsErr
	}
	return append([]models.Section(nil), f.sections...), nil
}

func (f *FakeCatalog) ListItems(ctx context.Context, section models.Section) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ItemsErr[section.Key]; err != nil {
		return nil, err
	}
	return append([]models.Item(nil), f.items[section.Key]...), nil
}

func (f *FakeCatalog) ListEpisodes(ctx context.Context, show models.Item) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.EpisodeCalls++
	if err := f.EpisodesErr[show.ID]; err != nil {
		return nil, err
	}
	return append([]models.Item(nil), f.episodes[show.ID]...), nil
}

func (f *FakeCatalog) AddToPlaylist(ctx context.Context, name string, items []models.Item, createIfAbsent bool) (*models.PlaylistUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AddCalls++
	if f.AddErr != nil {
		return nil, f.AddErr
	}

	for _, pl := range f.playlists {
		if pl.Name != name {
			continue
		}
		if pl.Smart {
			return nil, fmt.Errorf("%w: %q is a smart playlist", shared.ErrInvalidArgument, name)
		}
		f.playlistItems[pl.ID] = append(f.playlistItems[pl.ID], items...)
		pl.ItemCount = len(f.playlistItems[pl.ID])
		return &models.PlaylistUpdate{Playlist: pl, Added: len(items)}, nil
	}

	switch {
	case !createIfAbsent:
		return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
	case len(items) == 0:
		return nil, fmt.Errorf("%w: no items to add, %q was not created", shared.ErrEmptyPlaylist, name)
	}

	pl := f.createLocked(name, false, items)
	return &models.PlaylistUpdate{Playlist: pl, Created: true, Added: len(items)}, nil
}

func (f *FakeCatalog) Name() string { return "fake" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
