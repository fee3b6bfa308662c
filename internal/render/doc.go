// Package render writes fetched gopher pages and visit history in the
// output formats burrow supports.
//
// Three formats are available:
//   - text: the formatted display text, byte for byte as the session
//     produced it
//   - json: structured menu lines for scripts and other tools
//   - markdown: a summary and link table for notes and sharing
package render
