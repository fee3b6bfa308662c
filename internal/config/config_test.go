package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional: these tests fail when they drift.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected Timeout to be 5s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxResponseSize is 8MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxResponseSize != 8*1024*1024 {
			t.Errorf("expected MaxResponseSize to be 8MB, got %d", cfg.MaxResponseSize)
		}
	})

	t.Run("default Charset is utf-8", func(t *testing.T) {
		t.Parallel()
		if cfg.Charset != "utf-8" {
			t.Errorf("expected Charset to be 'utf-8', got %q", cfg.Charset)
		}
	})

	t.Run("default connects directly", func(t *testing.T) {
		t.Parallel()
		if cfg.ProxyAddress != "" || cfg.UseEmbeddedTor {
			t.Error("expected no proxy by default")
		}
	})

	t.Run("default TorStartupTimeout is 3 minutes", func(t *testing.T) {
		t.Parallel()
		if cfg.TorStartupTimeout != 3*time.Minute {
			t.Errorf("expected TorStartupTimeout to be 3m, got %v", cfg.TorStartupTimeout)
		}
	})

	t.Run("history is saved to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
		if cfg.HistoryDir != XDGDataDir() {
			t.Errorf("expected HistoryDir %q, got %q", XDGDataDir(), cfg.HistoryDir)
		}
	})

	t.Run("file is never nil", func(t *testing.T) {
		t.Parallel()
		if cfg.File == nil || cfg.File.Bookmarks == nil {
			t.Error("expected an empty File with initialized bookmarks")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Locations = []string{"gopher.floodgap.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().ValidateFetch(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty locations returns ErrNoLocation", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Locations = nil

		if err := cfg.ValidateFetch(); !errors.Is(err, ErrNoLocation) {
			t.Errorf("expected ErrNoLocation, got %v", err)
		}
	})

	t.Run("empty locations is fine without fetching", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Locations = nil

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = -1 * time.Second

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("zero max size returns ErrInvalidMaxSize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxResponseSize = 0

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxSize) {
			t.Errorf("expected ErrInvalidMaxSize, got %v", err)
		}
	})

	t.Run("json and markdown both enabled returns ErrConflictingFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONOutput = true
		cfg.MarkdownOutput = true

		if err := cfg.Validate(); !errors.Is(err, ErrConflictingFormats) {
			t.Errorf("expected ErrConflictingFormats, got %v", err)
		}
	})

	t.Run("embedded tor and socks proxy returns ErrConflictingProxy", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.UseEmbeddedTor = true
		cfg.ProxyAddress = "127.0.0.1:9050"

		if err := cfg.Validate(); !errors.Is(err, ErrConflictingProxy) {
			t.Errorf("expected ErrConflictingProxy, got %v", err)
		}
	})
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("Resolve expands bookmarks", func(t *testing.T) {
		t.Parallel()

		f := NewFile()
		f.Bookmarks["fg"] = "gopher.floodgap.com/1/world"

		if got := f.Resolve("fg"); got != "gopher.floodgap.com/1/world" {
			t.Errorf("expected bookmark target, got %q", got)
		}
		if got := f.Resolve("sdf.org"); got != "sdf.org" {
			t.Errorf("expected non-bookmark unchanged, got %q", got)
		}
	})

	t.Run("Resolve on nil file is identity", func(t *testing.T) {
		t.Parallel()

		var f *File
		if got := f.Resolve("fg"); got != "fg" {
			t.Errorf("expected 'fg', got %q", got)
		}
	})

	t.Run("Apply copies only non-zero defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{Defaults: Settings{Charset: "iso-8859-1", Timeout: 10 * time.Second}}
		f.Apply(cfg)

		if cfg.Charset != "iso-8859-1" {
			t.Errorf("expected charset from file, got %q", cfg.Charset)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected timeout from file, got %v", cfg.Timeout)
		}
		if cfg.MaxResponseSize != DefaultMaxResponseSize {
			t.Errorf("expected default max size to survive, got %d", cfg.MaxResponseSize)
		}
		if cfg.ProxyAddress != "" {
			t.Errorf("expected no proxy, got %q", cfg.ProxyAddress)
		}
		if cfg.File != f {
			t.Error("expected cfg.File to be set")
		}
	})

	t.Run("ResolveLocations expands every entry", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.File.Bookmarks["home"] = "example.org/1/home"
		cfg.Locations = []string{"home", "other.org"}

		got := cfg.ResolveLocations()
		if len(got) != 2 || got[0] != "example.org/1/home" || got[1] != "other.org" {
			t.Errorf("unexpected locations %v", got)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and bookmarks", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".burrow")
		content := `defaults:
  timeout: 12s
  charset: iso-8859-1
  proxy: 127.0.0.1:9050
  maxResponseSize: 1024
bookmarks:
  fg: gopher.floodgap.com
  sdf: sdf.org/1/users
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Defaults.Timeout != 12*time.Second {
			t.Errorf("expected 12s, got %v", f.Defaults.Timeout)
		}
		if f.Defaults.Charset != "iso-8859-1" {
			t.Errorf("expected iso-8859-1, got %q", f.Defaults.Charset)
		}
		if f.Defaults.Proxy != "127.0.0.1:9050" {
			t.Errorf("expected proxy, got %q", f.Defaults.Proxy)
		}
		if f.Defaults.MaxResponseSize != 1024 {
			t.Errorf("expected 1024, got %d", f.Defaults.MaxResponseSize)
		}
		if f.Bookmarks["sdf"] != "sdf.org/1/users" {
			t.Errorf("unexpected bookmarks %v", f.Bookmarks)
		}
	})

	t.Run("empty file has initialized bookmarks", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".burrow")
		if err := os.WriteFile(path, []byte("defaults:\n  charset: utf-8\n"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Bookmarks == nil {
			t.Error("expected Bookmarks to be initialized")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".burrow")
		if err := os.WriteFile(path, []byte("bookmarks: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("invalid duration returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".burrow")
		if err := os.WriteFile(path, []byte("defaults:\n  timeout: soon\n"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte(""), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("expected config dir to end with %q, got %q", AppName, XDGConfigDir())
	}
}

// TestApplyEnv modifies the process environment and therefore does not run in parallel.
func TestApplyEnv(t *testing.T) {
	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv(EnvProxy, "127.0.0.1:9150")
		t.Setenv(EnvTimeout, "30s")
		t.Setenv(EnvCharset, "latin1")
		t.Setenv(EnvHistoryDir, "/tmp/burrow-history")
		t.Setenv(EnvNoHistory, "true")

		cfg := NewConfig()
		if err := ApplyEnv(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ProxyAddress != "127.0.0.1:9150" {
			t.Errorf("unexpected proxy %q", cfg.ProxyAddress)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("unexpected timeout %v", cfg.Timeout)
		}
		if cfg.Charset != "latin1" {
			t.Errorf("unexpected charset %q", cfg.Charset)
		}
		if cfg.HistoryDir != "/tmp/burrow-history" {
			t.Errorf("unexpected history dir %q", cfg.HistoryDir)
		}
		if cfg.SaveHistory {
			t.Error("expected history to be disabled")
		}
	})

	t.Run("invalid timeout is an error", func(t *testing.T) {
		t.Setenv(EnvTimeout, "forever")

		if err := ApplyEnv(NewConfig()); err == nil {
			t.Error("expected error for invalid timeout")
		}
	})

	t.Run("invalid boolean is an error", func(t *testing.T) {
		t.Setenv(EnvNoHistory, "maybe")

		if err := ApplyEnv(NewConfig()); err == nil {
			t.Error("expected error for invalid boolean")
		}
	})

	t.Run("env file values are loaded", func(t *testing.T) {
		t.Setenv(EnvCharset, "")

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte(EnvCharset+"=koi8-r\n"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		// godotenv does not override variables that are already set, even
		// to the empty string, so clear it first.
		if err := os.Unsetenv(EnvCharset); err != nil {
			t.Fatalf("failed to unset: %v", err)
		}

		if err := LoadEnvFiles(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		if err := ApplyEnv(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Charset != "koi8-r" {
			t.Errorf("expected charset from env file, got %q", cfg.Charset)
		}
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		if err := LoadEnvFiles(filepath.Join(t.TempDir(), "nope.env")); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}
