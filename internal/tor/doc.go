// Package tor provides the proxied transport for burrow.
//
// Gopher holes published as onion services can only be reached through
// Tor. This package supplies a proxy.Dialer for the gopher session, either
// from an existing SOCKS5 proxy (Proxy) or from a Tor daemon started and
// owned by the process (Embedded, backed by tornago).
//
// The package is designed to be used with dependency injection: create a
// Proxy and hand its Dialer to gopher.NewSession rather than using global
// state.
package tor
