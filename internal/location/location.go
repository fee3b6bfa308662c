// Package location parses user-entered Gopher locations into a connection
// target and a request selector.
//
// Locations are free-form: the scheme, port, and path may all be missing.
// The parser splits the string directly on "://", the first "/", and the
// port colon instead of going through net/url, whose handling of bare
// hostnames (no scheme) is ambiguous for some top-level domains.
package location

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrMalformedLocation is returned when no host can be extracted.
var ErrMalformedLocation = errors.New("malformed gopher location")

const (
	// DefaultPort is the well-known Gopher port.
	DefaultPort = 70

	// DefaultSelector is requested when nothing follows the authority.
	DefaultSelector = "/"

	// Scheme is the canonical scheme prefix.
	Scheme = "gopher://"

	schemeSeparator = "://"
)

// Target is a resolved Gopher request: where to connect and what to send.
type Target struct {
	// Host is the server name or address, passed through verbatim.
	Host string `json:"host"`

	// Port is the TCP port. DefaultPort when the location has none.
	Port int `json:"port"`

	// Selector is sent as-is, followed by CRLF.
	Selector string `json:"selector"`
}

// Address returns the dialable "host:port" form.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String returns the canonical gopher:// form of the target.
// The port is omitted when it is the default.
func (t Target) String() string {
	host := t.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if t.Port != DefaultPort {
		host += ":" + strconv.Itoa(t.Port)
	}
	return Scheme + host + t.Selector
}

// Resolve parses a location such as "example.org/1/path" or
// "gopher://example.org:7070/1/path".
//
// A location without a scheme resolves exactly like the same location
// prefixed with "gopher://". The selector is whatever follows the authority,
// or "/" when nothing does. No percent-decoding is performed.
func Resolve(location string) (Target, error) {
	rest := strings.TrimSpace(location)
	// A "://" inside the selector (e.g. a URL link) is not a scheme.
	if i := strings.Index(rest, schemeSeparator); i != -1 && strings.IndexByte(rest, '/') == i+1 {
		rest = rest[i+len(schemeSeparator):]
	}

	authority, selector := rest, ""
	if i := strings.IndexByte(rest, '/'); i != -1 {
		authority, selector = rest[:i], rest[i:]
	}
	if selector == "" {
		selector = DefaultSelector
	}

	host, port, err := splitAuthority(authority)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: %w", ErrMalformedLocation, location, err)
	}
	if host == "" {
		return Target{}, fmt.Errorf("%w: %q: empty host", ErrMalformedLocation, location)
	}

	return Target{
		Host:     host,
		Port:     port,
		Selector: selector,
	}, nil
}

// splitAuthority separates "[user@]host[:port]" into host and port.
// Bracketed IPv6 literals are unwrapped.
func splitAuthority(authority string) (string, int, error) {
	if i := strings.LastIndexByte(authority, '@'); i != -1 {
		authority = authority[i+1:]
	}

	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end == -1 {
			return "", 0, errors.New("unterminated IPv6 literal")
		}
		host, tail := authority[1:end], authority[end+1:]
		switch {
		case tail == "":
			return host, DefaultPort, nil
		case strings.HasPrefix(tail, ":"):
			port, err := parsePort(tail[1:])
			return host, port, err
		default:
			return "", 0, fmt.Errorf("unexpected %q after IPv6 literal", tail)
		}
	}

	i := strings.LastIndexByte(authority, ':')
	if i == -1 {
		return authority, DefaultPort, nil
	}
	port, err := parsePort(authority[i+1:])
	return authority[:i], port, err
}

// parsePort accepts an empty string (default port) or a decimal port.
func parsePort(s string) (int, error) {
	if s == "" {
		return DefaultPort, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}
