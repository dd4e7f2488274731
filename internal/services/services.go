package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/shared"
)

// Catalog defines the operations a media server must support for playlist curation.
type Catalog interface {
	// ListPlaylists retrieves every playlist on the server.
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)

	// ListSections retrieves every library section on the server.
	ListSections(ctx context.Context) ([]models.Section, error)

	// ListItems retrieves the top-level items of a section: movies, or shows for show sections.
	// An empty slice means there is nothing to scan.
	ListItems(ctx context.Context, section models.Section) ([]models.Item, error)

	// ListEpisodes retrieves every episode of a show across all of its seasons.
	ListEpisodes(ctx context.Context, show models.Item) ([]models.Item, error)

	// AddToPlaylist appends items to the playlist called name.
	// When no such playlist exists it is created with items if createIfAbsent is set,
	// otherwise [shared.ErrPlaylistNotFound] is returned.
	AddToPlaylist(ctx context.Context, name string, items []models.Item, createIfAbsent bool) (*models.PlaylistUpdate, error)

	// Name returns the name of the catalog (e.g., "Plex")
	Name() string
}

// FindPlaylist returns the first playlist whose name equals name exactly.
func FindPlaylist(ctx context.Context, c Catalog, name string) (*models.Playlist, error) {
	playlists, err := c.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	for _, pl := range playlists {
		if pl.Name == name {
			return &pl, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

// FindSection returns the first library section whose name equals name exactly.
func FindSection(ctx context.Context, c Catalog, name string) (*models.Section, error) {
	sections, err := c.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	for _, s := range sections {
		if s.Name == name {
			return &s, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", shared.ErrSectionNotFound, name)
}
