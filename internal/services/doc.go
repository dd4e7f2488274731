// Package services defines the [Catalog] interface for media servers and implements it for Plex.
//
// # Catalog Interface
//
// The curation engine only needs to list playlists and library sections, enumerate a section's items
// (and a show's episodes), and append items to a playlist. [FindPlaylist] and [FindSection] resolve
// names with a linear exact-match search over the full listings.
//
// # Plex Implementation
//
// [PlexService] talks to a Plex Media Server over HTTP with JSON responses.
//
// Every request carries the X-Plex-Token header plus product and client identifier headers.
// Requests are paced client-side with a [rate.Limiter]; nothing is retried.
//
// Playlists are created and extended with a server:// URI built from the server's machine identifier
// (fetched once from /identity) and the rating keys of the items. Large batches are split across
// several requests.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no server URL or token
//   - [shared.ErrAuthFailed] : the server rejected the token (401/403)
//   - [shared.ErrAPIRequest] : any other non-2xx response or transport failure
//   - [shared.ErrPlaylistNotFound] : no playlist with the requested name
//   - [shared.ErrSectionNotFound] : no section with the requested name
//   - [shared.ErrEmptyPlaylist] : a playlist cannot be created without items
package services
