// Package gopher implements the client side of the Gopher protocol
// (RFC 1436): a single request/response exchange per location and the
// classification of menu responses into display text.
//
// # Exchange
//
// A request is the selector followed by CRLF, with no other framing. The
// response is everything the server sends until it closes the connection.
//
//	session := gopher.NewSession(gopher.WithTimeout(5 * time.Second))
//	text, err := session.Request(ctx, "gopher.floodgap.com/1/world")
//
// # Classification
//
// Each response line becomes a MenuLine:
//
//	<file> Display /selector host port   type 0 link
//	<dir>  Display /selector host port   type 1 link
//	  text                               type i info line
//	anything else                        unchanged
//
// Type 0 selectors are remembered per host in a FileIndex owned by the
// Session. When a later request targets one of those selectors the body is
// treated as a file and its "i" lines are left as they are.
//
// # Errors
//
// Failures are typed: location.ErrMalformedLocation for unusable input,
// *NetworkError (matching ErrNetwork) for dial, write and read failures,
// and *DecodeError (matching ErrDecode) for responses that are not valid
// UTF-8. Nothing is retried.
package gopher
