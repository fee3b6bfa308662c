// Package history records the locations burrow has fetched.
//
// Visits are kept in a single SQLite file (via modernc.org/sqlite, so no
// cgo is needed) under the user's data directory. Each row holds the
// canonical location, its host, port and selector, the fetch time, the
// response size and how many lines of each kind the page had.
//
// The store is a log of what was requested. The file selector index that
// steers menu classification is deliberately not written here; it lives
// only as long as the process that built it.
package history
