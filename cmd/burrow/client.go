package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/burrow/internal/config"
	"github.com/nao1215/burrow/internal/gopher"
	"github.com/nao1215/burrow/internal/history"
	"github.com/nao1215/burrow/internal/location"
	burrowlog "github.com/nao1215/burrow/internal/log"
	"github.com/nao1215/burrow/internal/tor"
)

// addConnectionFlags adds the flags shared by every command that talks to
// gopher servers.
func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connect and per-read timeout")
	cmd.Flags().StringP("socks", "s", "",
		"Connect through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and connect through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().String("charset", config.DefaultCharset,
		"Character encoding of server responses (e.g., iso-8859-1)")
	cmd.Flags().Int64("max-size", config.DefaultMaxResponseSize,
		"Largest response accepted, in bytes")
	cmd.Flags().Bool("no-history", false,
		"Do not record visits in the history database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .burrow in current or home directory)")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the logger for a command run. Logs go to stderr so
// they never mix with page output.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	return burrowlog.NewLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from defaults, the configuration file, the
// environment and finally the flags the user actually set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; the default locations
	// are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := config.LoadEnvFiles(); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("socks") {
		if cfg.ProxyAddress, err = flags.GetString("socks"); err != nil {
			return nil, err
		}
	}
	if cfg.UseEmbeddedTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	// --tor replaces a proxy configured in the file or environment, but
	// not one given on the command line.
	if cfg.UseEmbeddedTor && !flags.Changed("socks") {
		cfg.ProxyAddress = ""
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if flags.Changed("charset") {
		if cfg.Charset, err = flags.GetString("charset"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-size") {
		if cfg.MaxResponseSize, err = flags.GetInt64("max-size"); err != nil {
			return nil, err
		}
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	// Output flags exist on get only.
	if flags.Lookup("json") != nil {
		if cfg.JSONOutput, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownOutput, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.OutputFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	cfg.Locations = args

	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// client bundles a gopher session with the transport and history store
// configured for it.
type client struct {
	session *gopher.Session

	// embedded is the Tor daemon started for --tor, nil otherwise.
	embedded *tor.Embedded

	// store records visits, nil when history is disabled.
	store *history.Store

	// proxied is true when requests go through SOCKS5, which is required
	// for onion hosts.
	proxied bool

	logger *slog.Logger
}

// newClient sets up the transport described by cfg and returns a client
// ready to fetch. Progress messages for slow steps go to status.
func newClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, status io.Writer) (*client, error) {
	enc, err := gopher.LookupCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}

	opts := []gopher.SessionOption{
		gopher.WithTimeout(cfg.Timeout),
		gopher.WithMaxResponseSize(cfg.MaxResponseSize),
		gopher.WithEncoding(enc),
		gopher.WithLogger(logger),
	}

	c := &client{logger: logger}

	switch {
	case cfg.UseEmbeddedTor:
		fmt.Fprintln(status, "Starting embedded Tor daemon (this can take a few minutes)...")

		embedded := tor.NewEmbedded(
			tor.WithStartupTimeout(cfg.TorStartupTimeout),
			tor.WithEmbeddedLogger(logger),
		)
		if err := embedded.Start(ctx); err != nil {
			return nil, err
		}
		p, err := embedded.Proxy()
		if err != nil {
			_ = embedded.Stop()
			return nil, err
		}

		c.embedded = embedded
		c.proxied = true
		opts = append(opts, gopher.WithDialer(p.Dialer()))

	case cfg.ProxyAddress != "":
		p, err := tor.NewProxy(cfg.ProxyAddress)
		if err != nil {
			return nil, err
		}
		if s := p.CheckConnection(ctx); s != tor.ProxyStatusOK {
			return nil, fmt.Errorf("SOCKS5 proxy check failed: %w (make sure a proxy is running at %s)",
				s.Err(), cfg.ProxyAddress)
		}
		logger.Info("SOCKS5 proxy verified", "address", cfg.ProxyAddress)

		c.proxied = true
		opts = append(opts, gopher.WithDialer(p.Dialer()))
	}

	if cfg.SaveHistory {
		store, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
		if err != nil {
			// History is a convenience; fetching still works without it.
			logger.Warn("history disabled", "dir", cfg.HistoryDir, "error", err)
		} else {
			c.store = store
		}
	}

	c.session = gopher.NewSession(opts...)
	return c, nil
}

// fetch requests loc, refusing onion hosts on a direct connection, and
// records the visit.
func (c *client) fetch(ctx context.Context, loc string) (*gopher.Page, error) {
	target, err := location.Resolve(loc)
	if err != nil {
		return nil, err
	}
	if !c.proxied && tor.IsOnionHost(target.Host) {
		return nil, fmt.Errorf("%s: %w", target.Host, tor.ErrOnionWithoutProxy)
	}

	page, err := c.session.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if _, err := c.store.Record(ctx, page); err != nil {
			c.logger.Warn("failed to record visit", "location", page.Target.String(), "error", err)
		}
	}

	return page, nil
}

// Close releases the history store and stops an embedded Tor daemon.
func (c *client) Close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	if c.embedded != nil {
		c.logger.Info("stopping embedded Tor daemon...")
		errs = append(errs, c.embedded.Stop())
	}
	return errors.Join(errs...)
}
