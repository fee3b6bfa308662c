// Package main provides the entry point for the burrow CLI.
//
// burrow is a client for the Gopher protocol (RFC 1436). It fetches menus
// and text files from gopher holes and shows them with file and directory
// links marked.
//
// Usage:
//
//	burrow get gopher.floodgap.com
//	burrow browse
//
// See --help for all available options.
package main

// main is the entry point for burrow.
func main() {
	Execute()
}
