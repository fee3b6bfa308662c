package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds the TCP connect and each read. Gopher servers
	// answer in one burst, so a stall longer than this means the server is
	// not going to finish.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxResponseSize limits how much of a response is buffered.
	// 8MB is far above any real menu or text file while still protecting
	// against a server that never stops sending.
	DefaultMaxResponseSize = 8 * 1024 * 1024

	// DefaultCharset is the response encoding. Responses that are not valid
	// UTF-8 are reported as errors unless another charset is configured.
	DefaultCharset = "utf-8"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultHistoryLimit is how many visits the history command lists.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "burrow"
)

// Config holds all configuration options for burrow.
// It is populated from defaults, the .burrow file, the environment and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Locations are the Gopher locations (or bookmark names) to fetch.
	Locations []string

	// Timeout is the connect and per-read timeout.
	Timeout time.Duration

	// MaxResponseSize is the largest response buffered, in bytes.
	MaxResponseSize int64

	// Charset is the response character encoding label.
	Charset string

	// ProxyAddress is an external SOCKS5 proxy in "host:port" form.
	// Empty means connect directly.
	ProxyAddress string

	// UseEmbeddedTor starts a Tor daemon and routes requests through it.
	// Needed for .onion gopher holes when no Tor proxy is running.
	UseEmbeddedTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// JSONOutput writes pages as JSON instead of formatted text.
	JSONOutput bool

	// MarkdownOutput writes pages as Markdown instead of formatted text.
	MarkdownOutput bool

	// OutputFile is where pages are written. Empty means stdout.
	OutputFile string

	// ConfigFilePath is the explicit path of the .burrow file, if any.
	ConfigFilePath string

	// File holds the loaded .burrow file. Never nil after loading.
	File *File

	// HistoryDir is the directory of the history database.
	HistoryDir string

	// SaveHistory records each successful fetch in the history database.
	SaveHistory bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxResponseSize:   DefaultMaxResponseSize,
		Charset:           DefaultCharset,
		TorStartupTimeout: DefaultTorStartupTimeout,
		HistoryDir:        XDGDataDir(),
		SaveHistory:       true,
		File:              NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for burrow.
// On Linux: ~/.local/share/burrow
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for burrow.
// On Linux: ~/.config/burrow
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the options shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxResponseSize <= 0 {
		return ErrInvalidMaxSize
	}

	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingFormats
	}

	if c.UseEmbeddedTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}

	return nil
}

// ValidateFetch checks the options and requires at least one location.
func (c *Config) ValidateFetch() error {
	if len(c.Locations) == 0 {
		return ErrNoLocation
	}
	return c.Validate()
}

// ResolveLocations expands bookmark names in Locations to their targets.
// Entries that are not bookmarks are returned unchanged.
func (c *Config) ResolveLocations() []string {
	resolved := make([]string, len(c.Locations))
	for i, loc := range c.Locations {
		resolved[i] = c.File.Resolve(loc)
	}
	return resolved
}
