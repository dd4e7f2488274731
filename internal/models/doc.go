// Package models defines the domain entities for keyword-curated playlists.
//
// The package contains two categories of types:
//
// 1. Catalog views: read-only values fetched fresh from the media server on every run
//   - [Section] : a named library section restricted to one media [Kind]
//   - [Item] : a movie, show or episode with the title and summary used for matching
//   - [Playlist] : a named, ordered collection of items on the server
//   - [PlaylistUpdate] : the outcome of appending to (or creating) a playlist
//
// 2. Persistent entities: records written to the local history database
//   - [Run] : one curate invocation with its filter, target playlist and result
//   - [RunSection] : the per-section outcome of a [Run]
//
// [Filter] pairs a keyword list with a [MatchMode] and is the input to the matcher in package tasks.
package models
