package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrSectionNotFound    = fmt.Errorf("section not found")
	ErrRunNotFound        = fmt.Errorf("run not found")

	// Curation errors
	ErrUnsupportedKind = fmt.Errorf("unsupported section kind")
	ErrEmptySection    = fmt.Errorf("section has no items")
	ErrEmptyPlaylist   = fmt.Errorf("cannot create a playlist without items")
	ErrPlaylistWrite   = fmt.Errorf("playlist could not be updated")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
