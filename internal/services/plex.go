// Plex Media Server [Catalog] implementation
//
// Response types follow the JSON rendering of the PMS API (Accept: application/json).
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/shared"
	"golang.org/x/time/rate"
)

const (
	plexProduct = "plexlist"

	// maxItemsPerRequest bounds the number of rating keys in a single server:// URI.
	maxItemsPerRequest = 100
)

// PlexDirectory is a library section entry from /library/sections.
type PlexDirectory struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// PlexMetadata is a movie, show, episode or playlist entry.
type PlexMetadata struct {
	RatingKey        string `json:"ratingKey"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Summary          string `json:"summary"`
	Year             int    `json:"year"`
	GrandparentTitle string `json:"grandparentTitle"`
	PlaylistType     string `json:"playlistType"`
	Smart            bool   `json:"smart"`
	LeafCount        int    `json:"leafCount"`
}

// PlexMediaContainer is the envelope around every PMS response.
type PlexMediaContainer struct {
	Size              int             `json:"size"`
	MachineIdentifier string          `json:"machineIdentifier"`
	LeafCountAdded    int             `json:"leafCountAdded"`
	Directory         []PlexDirectory `json:"Directory"`
	Metadata          []PlexMetadata  `json:"Metadata"`
}

type plexResponse struct {
	MediaContainer PlexMediaContainer `json:"MediaContainer"`
}

// PlexOpts contains the settings for a [PlexService].
type PlexOpts struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64 // zero or less disables pacing
	HTTPClient        *http.Client
}

// PlexService implements the [Catalog] interface for a Plex Media Server.
type PlexService struct {
	baseURL    string
	token      string
	clientID   string
	machineID  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewPlexService creates a new Plex service instance.
func NewPlexService(opts PlexOpts) (*PlexService, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: server url", shared.ErrMissingCredentials)
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("%w: plex token", shared.ErrMissingCredentials)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &PlexService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		clientID:   shared.GenerateID(),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// Name returns the service name.
func (p *PlexService) Name() string {
	return "Plex"
}

func (p *PlexService) doRequest(ctx context.Context, method, endpoint string, query url.Values) (*PlexMediaContainer, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	apiURL := p.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", p.token)
	req.Header.Set("X-Plex-Product", plexProduct)
	req.Header.Set("X-Plex-Client-Identifier", p.clientID)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var decoded plexResponse
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return &decoded.MediaContainer, nil
}

// machineIdentifier fetches and caches the server's machine identifier from /identity.
func (p *PlexService) machineIdentifier(ctx context.Context) (string, error) {
	if p.machineID != "" {
		return p.machineID, nil
	}

	mc, err := p.doRequest(ctx, http.MethodGet, "/identity", nil)
	if err != nil {
		return "", err
	}
	if mc.MachineIdentifier == "" {
		return "", fmt.Errorf("%w: server did not report a machine identifier", shared.ErrAPIRequest)
	}

	p.machineID = mc.MachineIdentifier
	return p.machineID, nil
}

// itemsURI builds the server:// URI the playlist endpoints use to reference library items.
func (p *PlexService) itemsURI(ctx context.Context, items []models.Item) (string, error) {
	machineID, err := p.machineIdentifier(ctx)
	if err != nil {
		return "", err
	}

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.ID
	}

	return fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s", machineID, strings.Join(keys, ",")), nil
}

// ListPlaylists retrieves all playlists on the server.
//
// Calls GET /playlists.
func (p *PlexService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	mc, err := p.doRequest(ctx, http.MethodGet, "/playlists", nil)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(mc.Metadata))
	for i, m := range mc.Metadata {
		playlists[i] = toPlaylist(m)
	}

	return playlists, nil
}

// ListSections retrieves all library sections.
//
// Calls GET /library/sections.
func (p *PlexService) ListSections(ctx context.Context) ([]models.Section, error) {
	mc, err := p.doRequest(ctx, http.MethodGet, "/library/sections", nil)
	if err != nil {
		return nil, err
	}

	sections := make([]models.Section, len(mc.Directory))
	for i, d := range mc.Directory {
		sections[i] = models.Section{
			Key:  d.Key,
			Name: d.Title,
			Kind: models.Kind(d.Type),
		}
	}

	return sections, nil
}

// ListItems retrieves the top-level items of a section.
//
// Calls GET /library/sections/{key}/all.
func (p *PlexService) ListItems(ctx context.Context, section models.Section) ([]models.Item, error) {
	endpoint := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(section.Key))
	mc, err := p.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return toItems(mc.Metadata), nil
}

// ListEpisodes retrieves every episode of a show.
//
// Calls GET /library/metadata/{ratingKey}/allLeaves.
func (p *PlexService) ListEpisodes(ctx context.Context, show models.Item) ([]models.Item, error) {
	endpoint := fmt.Sprintf("/library/metadata/%s/allLeaves", url.PathEscape(show.ID))
	mc, err := p.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	episodes := toItems(mc.Metadata)
	for i := range episodes {
		if episodes[i].ShowTitle == "" {
			episodes[i].ShowTitle = show.Title
		}
	}

	return episodes, nil
}

// AddToPlaylist appends items to an existing playlist or creates it.
//
// Appends via PUT /playlists/{ratingKey}/items; creates via POST /playlists.
// Batches larger than [maxItemsPerRequest] are split, the first batch creating the playlist.
func (p *PlexService) AddToPlaylist(ctx context.Context, name string, items []models.Item, createIfAbsent bool) (*models.PlaylistUpdate, error) {
	existing, err := FindPlaylist(ctx, p, name)
	switch {
	case err == nil:
		if existing.Smart {
			return nil, fmt.Errorf("%w: %q is a smart playlist", shared.ErrInvalidArgument, name)
		}
		if err := p.appendItems(ctx, existing.ID, items); err != nil {
			return nil, err
		}
		existing.ItemCount += len(items)
		return &models.PlaylistUpdate{Playlist: *existing, Added: len(items)}, nil
	case !errors.Is(err, shared.ErrPlaylistNotFound):
		return nil, err
	case !createIfAbsent:
		return nil, err
	case len(items) == 0:
		return nil, fmt.Errorf("%w: no items to add, %q was not created", shared.ErrEmptyPlaylist, name)
	}

	first, rest := splitBatch(items)
	created, err := p.createPlaylist(ctx, name, first)
	if err != nil {
		return nil, err
	}

	if err := p.appendItems(ctx, created.ID, rest); err != nil {
		return nil, err
	}

	created.ItemCount = len(items)
	return &models.PlaylistUpdate{Playlist: *created, Created: true, Added: len(items)}, nil
}

func (p *PlexService) createPlaylist(ctx context.Context, name string, items []models.Item) (*models.Playlist, error) {
	uri, err := p.itemsURI(ctx, items)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("type", "video")
	query.Set("title", name)
	query.Set("smart", "0")
	query.Set("uri", uri)

	mc, err := p.doRequest(ctx, http.MethodPost, "/playlists", query)
	if err != nil {
		return nil, err
	}
	if len(mc.Metadata) == 0 {
		return nil, fmt.Errorf("%w: create playlist returned no playlist", shared.ErrAPIRequest)
	}

	pl := toPlaylist(mc.Metadata[0])
	return &pl, nil
}

func (p *PlexService) appendItems(ctx context.Context, playlistID string, items []models.Item) error {
	for len(items) > 0 {
		var batch []models.Item
		batch, items = splitBatch(items)

		uri, err := p.itemsURI(ctx, batch)
		if err != nil {
			return err
		}

		query := url.Values{}
		query.Set("uri", uri)

		endpoint := fmt.Sprintf("/playlists/%s/items", url.PathEscape(playlistID))
		if _, err := p.doRequest(ctx, http.MethodPut, endpoint, query); err != nil {
			return err
		}
	}
	return nil
}

func splitBatch(items []models.Item) (batch, rest []models.Item) {
	if len(items) <= maxItemsPerRequest {
		return items, nil
	}
	return items[:maxItemsPerRequest], items[maxItemsPerRequest:]
}

func toPlaylist(m PlexMetadata) models.Playlist {
	return models.Playlist{
		ID:        m.RatingKey,
		Name:      m.Title,
		ItemCount: m.LeafCount,
		Smart:     m.Smart,
	}
}

func toItems(metadata []PlexMetadata) []models.Item {
	items := make([]models.Item, len(metadata))
	for i, m := range metadata {
		items[i] = models.Item{
			ID:        m.RatingKey,
			Title:     m.Title,
			Summary:   m.Summary,
			Kind:      models.Kind(m.Type),
			ShowTitle: m.GrandparentTitle,
			Year:      m.Year,
		}
	}
	return items
}
