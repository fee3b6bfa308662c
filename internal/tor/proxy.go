package tor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 handshake in CheckConnection.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 method negotiation (RFC 1928).
const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// Proxy is a SOCKS5 proxy, usually Tor's SOCKS port.
type Proxy struct {
	// address is the proxy in "host:port" format.
	address string

	// dialer connects through the proxy.
	dialer proxy.Dialer
}

// NewProxy validates address and creates a SOCKS5 dialer for it.
// It does not contact the proxy; call CheckConnection for that.
func NewProxy(address string) (*Proxy, error) {
	if !isValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}

	// Tor's SOCKS port does not use authentication.
	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Proxy{
		address: address,
		dialer:  dialer,
	}, nil
}

// Address returns the proxy address.
func (p *Proxy) Address() string {
	return p.address
}

// Dialer returns the dialer that connects through the proxy.
func (p *Proxy) Dialer() proxy.Dialer {
	return p.dialer
}

// isValidProxyAddress checks for "host:port" with a non-empty host and a
// port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}

	n, err := strconv.Atoi(port)
	if err != nil || strings.HasPrefix(port, "+") {
		return false
	}
	return n >= 1 && n <= 65535
}

// CheckConnection verifies that the proxy accepts a SOCKS5 greeting
// offering no authentication.
func (p *Proxy) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	// 0xFF (no acceptable method) or any auth requirement is not usable.
	if resp[0] != socks5Version || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}
