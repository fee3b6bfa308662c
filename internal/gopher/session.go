package gopher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/nao1215/burrow/internal/location"
	"golang.org/x/net/proxy"
	"golang.org/x/text/encoding"
)

const (
	// DefaultTimeout bounds the TCP connect and each read.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxResponseSize caps how much of a response is buffered.
	DefaultMaxResponseSize = 8 * 1024 * 1024

	// readChunkSize is the size of each socket read.
	readChunkSize = 1024
)

// Session performs Gopher requests and formats the responses.
// It owns the FileIndex shared by every request it makes.
//
// A Session issues one request at a time; callers wait for Request to
// return before calling it again.
type Session struct {
	// dialer opens the TCP connection. proxy.Direct unless a SOCKS5 proxy
	// (e.g. Tor) is configured.
	dialer proxy.Dialer

	// timeout bounds the connect and every individual read.
	timeout time.Duration

	// maxResponseSize is the largest response buffered, in bytes.
	maxResponseSize int64

	// index is the per-host file selector cache.
	index *FileIndex

	// enc is the response charset, nil for strict UTF-8.
	enc encoding.Encoding

	// formatter classifies responses against index.
	formatter *Formatter

	logger *slog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDialer routes connections through d, typically a SOCKS5 dialer.
func WithDialer(d proxy.Dialer) SessionOption {
	return func(s *Session) {
		s.dialer = d
	}
}

// WithTimeout sets the connect and read timeout.
func WithTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.timeout = timeout
	}
}

// WithMaxResponseSize sets the response size limit in bytes.
func WithMaxResponseSize(n int64) SessionOption {
	return func(s *Session) {
		s.maxResponseSize = n
	}
}

// WithFileIndex shares an existing file index with the session.
func WithFileIndex(index *FileIndex) SessionOption {
	return func(s *Session) {
		s.index = index
	}
}

// WithEncoding decodes responses with enc instead of strict UTF-8.
func WithEncoding(enc encoding.Encoding) SessionOption {
	return func(s *Session) {
		s.enc = enc
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session with an empty file index.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		dialer:          proxy.Direct,
		timeout:         DefaultTimeout,
		maxResponseSize: DefaultMaxResponseSize,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.index == nil {
		s.index = NewFileIndex()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.formatter = NewFormatter(s.index, WithFormatterEncoding(s.enc))

	return s
}

// Index returns the session's file index.
func (s *Session) Index() *FileIndex {
	return s.index
}

// Request fetches loc and returns the formatted response text.
func (s *Session) Request(ctx context.Context, loc string) (string, error) {
	page, err := s.Fetch(ctx, loc)
	if err != nil {
		return "", err
	}
	return page.Text, nil
}

// Fetch resolves loc, sends the request, reads the full response and
// classifies it. Nothing is returned on failure: a response that breaks
// off mid-stream is an error, not a partial page.
func (s *Session) Fetch(ctx context.Context, loc string) (*Page, error) {
	target, err := location.Resolve(loc)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("host", target.Host, "port", target.Port, "selector", target.Selector)
	logger.Debug("sending request")

	start := s.now()
	raw, err := s.roundTrip(ctx, target)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return nil, err
	}

	s.index.Touch(target.Host)

	lines, err := s.formatter.Classify(target.Host, target.Selector, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target, err)
	}

	page := &Page{
		Target:    target,
		Lines:     lines,
		Text:      Render(lines),
		Bytes:     len(raw),
		FetchedAt: start,
		Elapsed:   s.now().Sub(start),
	}
	logger.Debug("response received",
		"bytes", page.Bytes,
		"lines", len(lines),
		"elapsed", page.Elapsed,
	)

	return page, nil
}

// roundTrip dials target, writes the selector line and reads until the
// server closes the connection.
func (s *Session) roundTrip(ctx context.Context, target location.Target) ([]byte, error) {
	addr := target.Address()

	conn, err := s.dial(ctx, addr)
	if err != nil {
		return nil, newNetworkError("dial", addr, err)
	}
	defer conn.Close()

	// Unblock any pending read or write if ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now()) //nolint:errcheck // best effort
	})
	defer stop()

	if err := conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return nil, newNetworkError("write", addr, err)
	}
	if _, err := io.WriteString(conn, target.Selector+"\r\n"); err != nil {
		return nil, newNetworkError("write", addr, contextCause(ctx, err))
	}

	raw, err := s.readAll(conn)
	if err != nil {
		return nil, newNetworkError("read", addr, contextCause(ctx, err))
	}
	return raw, nil
}

// readAll reads fixed-size chunks until EOF. Each read must make progress
// within the session timeout, so a server that accepts the connection and
// then stalls cannot hang the session.
func (s *Session) readAll(conn net.Conn) ([]byte, error) {
	var response []byte
	chunk := make([]byte, readChunkSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			return nil, err
		}

		n, err := conn.Read(chunk)
		response = append(response, chunk[:n]...)
		if int64(len(response)) > s.maxResponseSize {
			return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, s.maxResponseSize)
		}

		if errors.Is(err, io.EOF) {
			return response, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// dial opens a TCP connection bounded by the session timeout and ctx.
// It prefers the dialer's own DialContext and otherwise races a plain
// Dial against the context.
func (s *Session) dial(ctx context.Context, addr string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if cd, ok := s.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}

	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := s.dialer.Dial("tcp", addr)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.conn != nil {
				_ = r.conn.Close() //nolint:errcheck // abandoned connection
			}
		}()
		return nil, ctx.Err()
	case result := <-resultCh:
		return result.conn, result.err
	}
}

// contextCause prefers the context error when ctx was cancelled, since the
// I/O error in that case is just the forced deadline.
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
