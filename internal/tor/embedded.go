package tor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout is how long Start waits for Tor to bootstrap.
const DefaultStartupTimeout = 3 * time.Minute

// Embedded is a Tor daemon started and owned by this process. Once
// running it exposes its SOCKS port as a Proxy.
//
// Bootstrapping takes from a few seconds to a few minutes: Tor has to fetch
// directory information and build circuits before the SOCKS port is usable.
type Embedded struct {
	// process is the running daemon, nil until Start succeeds.
	process *tornago.TorProcess

	// proxy wraps the daemon's SOCKS port.
	proxy *Proxy

	startupTimeout time.Duration
	logger         *slog.Logger
}

// EmbeddedOption configures an Embedded daemon.
type EmbeddedOption func(*Embedded)

// WithStartupTimeout sets the bootstrap timeout.
func WithStartupTimeout(timeout time.Duration) EmbeddedOption {
	return func(e *Embedded) {
		e.startupTimeout = timeout
	}
}

// WithEmbeddedLogger sets the logger used for daemon lifecycle messages.
func WithEmbeddedLogger(logger *slog.Logger) EmbeddedOption {
	return func(e *Embedded) {
		e.logger = logger
	}
}

// NewEmbedded prepares an embedded daemon. Call Start to launch it.
func NewEmbedded(opts ...EmbeddedOption) *Embedded {
	e := &Embedded{
		startupTimeout: DefaultStartupTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches Tor on OS-assigned ports and blocks until it has
// bootstrapped or the startup timeout expires.
func (e *Embedded) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	e.logger.Info("starting embedded Tor daemon", "timeout", e.startupTimeout)

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	// StartTorDaemon does not take a context; honour cancellation that
	// happened while it was bootstrapping.
	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	p, err := NewProxy(process.SocksAddr())
	if err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return fmt.Errorf("embedded Tor returned unusable SOCKS address: %w", err)
	}

	e.process = process
	e.proxy = p
	e.logger.Info("embedded Tor daemon ready", "socks", process.SocksAddr())

	return nil
}

// Stop shuts the daemon down. It is safe to call on a daemon that was
// never started or is already stopped.
func (e *Embedded) Stop() error {
	if e.process == nil {
		return nil
	}

	err := e.process.Stop()
	e.process = nil
	e.proxy = nil
	return err
}

// IsRunning reports whether the daemon has started and not been stopped.
func (e *Embedded) IsRunning() bool {
	return e.process != nil
}

// Proxy returns the daemon's SOCKS proxy.
func (e *Embedded) Proxy() (*Proxy, error) {
	if !e.IsRunning() {
		return nil, ErrNotRunning
	}
	return e.proxy, nil
}
