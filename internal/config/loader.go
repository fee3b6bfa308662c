package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".burrow"

// Environment variables that override the configuration file.
const (
	EnvProxy      = "BURROW_SOCKS"
	EnvTimeout    = "BURROW_TIMEOUT"
	EnvCharset    = "BURROW_CHARSET"
	EnvHistoryDir = "BURROW_HISTORY_DIR"
	EnvNoHistory  = "BURROW_NO_HISTORY"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Settings are connection defaults that can be set in the .burrow file.
// Zero values leave the built-in default in place.
type Settings struct {
	// Timeout overrides DefaultTimeout, e.g. "10s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Charset overrides DefaultCharset, e.g. "iso-8859-1".
	Charset string `yaml:"charset,omitempty"`

	// Proxy is a SOCKS5 proxy address, e.g. "127.0.0.1:9050".
	Proxy string `yaml:"proxy,omitempty"`

	// MaxResponseSize overrides DefaultMaxResponseSize, in bytes.
	MaxResponseSize int64 `yaml:"maxResponseSize,omitempty"`
}

// File represents the structure of the .burrow configuration file.
type File struct {
	// Defaults are applied before environment variables and flags.
	Defaults Settings `yaml:"defaults,omitempty"`

	// Bookmarks maps short names to locations, e.g.
	// "floodgap: gopher.floodgap.com/1/world".
	Bookmarks map[string]string `yaml:"bookmarks,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Bookmarks: make(map[string]string)}
}

// Resolve returns the location bookmarked as name, or name itself.
func (f *File) Resolve(name string) string {
	if f == nil {
		return name
	}
	if loc, ok := f.Bookmarks[name]; ok {
		return loc
	}
	return name
}

// Apply copies the non-zero defaults of the file into cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Defaults.Timeout != 0 {
		cfg.Timeout = f.Defaults.Timeout
	}
	if f.Defaults.Charset != "" {
		cfg.Charset = f.Defaults.Charset
	}
	if f.Defaults.Proxy != "" {
		cfg.ProxyAddress = f.Defaults.Proxy
	}
	if f.Defaults.MaxResponseSize != 0 {
		cfg.MaxResponseSize = f.Defaults.MaxResponseSize
	}
	cfg.File = f
}

// LoadConfigFile loads a .burrow YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Bookmarks == nil {
		cf.Bookmarks = make(map[string]string)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .burrow in the current directory
// 3. Look for .burrow in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// LoadEnvFiles loads KEY=value pairs from the given .env files (or ".env"
// when none are given) into the process environment. Variables that are
// already set win. Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with BURROW_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvProxy); v != "" {
		cfg.ProxyAddress = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(EnvCharset); v != "" {
		cfg.Charset = v
	}

	if v := os.Getenv(EnvHistoryDir); v != "" {
		cfg.HistoryDir = v
	}

	if v := os.Getenv(EnvNoHistory); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvNoHistory, v, err)
		}
		cfg.SaveHistory = !disabled
	}

	return nil
}
