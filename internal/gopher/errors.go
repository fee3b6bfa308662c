package gopher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	// ErrNetwork matches any *NetworkError.
	ErrNetwork = errors.New("gopher network error")

	// ErrDecode matches any *DecodeError.
	ErrDecode = errors.New("gopher response is not valid text")

	// ErrResponseTooLarge is wrapped by a NetworkError when the server sends
	// more than the configured maximum response size.
	ErrResponseTooLarge = errors.New("response exceeds maximum size")
)

// NetworkErrorKind classifies a network failure.
type NetworkErrorKind int

const (
	// KindIO is any other read/write failure.
	KindIO NetworkErrorKind = iota

	// KindDNS means the host name could not be resolved.
	KindDNS

	// KindRefused means the server actively refused the connection.
	KindRefused

	// KindTimeout means connecting or reading took too long.
	KindTimeout
)

// String returns the short name of the kind.
func (k NetworkErrorKind) String() string {
	switch k {
	case KindDNS:
		return "dns"
	case KindRefused:
		return "refused"
	case KindTimeout:
		return "timeout"
	default:
		return "io"
	}
}

// NetworkError describes a failed connect, send, or receive.
type NetworkError struct {
	// Kind classifies the failure.
	Kind NetworkErrorKind

	// Op is the operation that failed: "dial", "write" or "read".
	Op string

	// Addr is the "host:port" the session was talking to.
	Addr string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Addr, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// newNetworkError wraps err and classifies it.
func newNetworkError(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Kind: classifyNetworkError(err),
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}

// classifyNetworkError maps an error returned by the net package (or a
// proxy dialer) to a NetworkErrorKind.
func classifyNetworkError(err error) NetworkErrorKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	return KindIO
}

// DecodeError is returned when a response is not valid UTF-8.
type DecodeError struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 sequence at byte %d", e.Offset)
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
