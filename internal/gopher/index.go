package gopher

import (
	"sort"
	"sync"
)

// FileIndex remembers, per host, the selectors that menus have linked to as
// files (item type 0).
//
// The formatter uses it to recognise a page that was itself reached through
// a file link: such a page is a file body, so lines that happen to start
// with "i" are left untouched instead of being rendered as info text.
//
// Entries are never evicted. The index lives as long as the Session that
// owns it and grows with every distinct file link seen, which is acceptable
// for an interactive single-user session and keeps classification
// deterministic. It is not persisted.
//
// FileIndex is safe for concurrent use.
type FileIndex struct {
	mu    sync.RWMutex
	hosts map[string]map[string]struct{}
}

// NewFileIndex creates an empty index.
func NewFileIndex() *FileIndex {
	return &FileIndex{
		hosts: make(map[string]map[string]struct{}),
	}
}

// Touch creates the entry for host if this is the first contact.
func (x *FileIndex) Touch(host string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.ensure(host)
}

// Add records selector as a file selector on host.
func (x *FileIndex) Add(host, selector string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.ensure(host)[selector] = struct{}{}
}

// Contains reports whether selector is a known file selector on host.
func (x *FileIndex) Contains(host, selector string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.hosts[host][selector]
	return ok
}

// Known reports whether host has been contacted or indexed.
func (x *FileIndex) Known(host string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.hosts[host]
	return ok
}

// Selectors returns the sorted file selectors known for host.
func (x *FileIndex) Selectors(host string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	set := x.hosts[host]
	selectors := make([]string, 0, len(set))
	for s := range set {
		selectors = append(selectors, s)
	}
	sort.Strings(selectors)
	return selectors
}

// Len returns the total number of file selectors across all hosts.
func (x *FileIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := 0
	for _, set := range x.hosts {
		n += len(set)
	}
	return n
}

// ensure must be called with mu held for writing.
func (x *FileIndex) ensure(host string) map[string]struct{} {
	set, ok := x.hosts[host]
	if !ok {
		set = make(map[string]struct{})
		x.hosts[host] = set
	}
	return set
}
