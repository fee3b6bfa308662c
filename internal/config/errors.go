package config

import "errors"

// Configuration validation errors.
// Each error names exactly one problem so callers can report it precisely.
var (
	// ErrNoLocation is returned when no location was given to fetch.
	ErrNoLocation = errors.New("no location specified")

	// ErrInvalidTimeout is returned when the timeout is zero or negative.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidMaxSize is returned when the response size limit is zero or negative.
	ErrInvalidMaxSize = errors.New("maximum response size must be positive")

	// ErrConflictingFormats is returned when both JSON and Markdown output are requested.
	ErrConflictingFormats = errors.New("--json and --markdown cannot be used together")

	// ErrConflictingProxy is returned when both the embedded Tor daemon and
	// an external SOCKS5 proxy are requested.
	ErrConflictingProxy = errors.New("--tor and --socks cannot be used together")

	// ErrInvalidHistoryLimit is returned when the history listing limit is negative.
	ErrInvalidHistoryLimit = errors.New("history limit must not be negative")
)
