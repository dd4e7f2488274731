package models

// Kind is the media type of a [Section] or [Item].
type Kind string

const (
	KindMovie   Kind = "movie"
	KindShow    Kind = "show"
	KindEpisode Kind = "episode"
	KindArtist  Kind = "artist"
	KindPhoto   Kind = "photo"
)

// Scannable reports whether sections of this kind can be curated.
func (k Kind) Scannable() bool {
	return k == KindMovie || k == KindShow
}

// Section is a library section on the media server.
type Section struct {
	Key  string
	Name string
	Kind Kind
}

// Item is a movie, show or episode.
//
// Only movies and episodes are matched; a show is a container for its episodes.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Kind      Kind   `json:"kind"`
	ShowTitle string `json:"show_title,omitempty"`
	Year      int    `json:"year,omitempty"`
}

// DisplayTitle prefixes episodes with their show title.
func (i Item) DisplayTitle() string {
	if i.Kind == KindEpisode && i.ShowTitle != "" {
		return i.ShowTitle + " - " + i.Title
	}
	return i.Title
}

// Playlist is a named playlist on the media server.
type Playlist struct {
	ID        string
	Name      string
	ItemCount int
	Smart     bool
}

// PlaylistUpdate describes the result of adding items to a playlist.
type PlaylistUpdate struct {
	Playlist Playlist
	Created  bool // true when the playlist did not exist before the call
	Added    int
}
