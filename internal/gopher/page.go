package gopher

import (
	"time"

	"github.com/nao1215/burrow/internal/location"
)

// Page is a fetched and classified response.
type Page struct {
	// Target is what was requested.
	Target location.Target `json:"target"`

	// Lines holds one entry per response line, in order.
	Lines []MenuLine `json:"lines"`

	// Text is the formatted display text, identical to Render(Lines).
	Text string `json:"-"`

	// Bytes is the size of the raw response.
	Bytes int `json:"bytes"`

	// FetchedAt is when the request started.
	FetchedAt time.Time `json:"fetched_at"`

	// Elapsed is the time taken by the round trip and formatting.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Count returns the number of lines of the given kind.
func (p *Page) Count(kind LineKind) int {
	n := 0
	for _, l := range p.Lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// Links returns the file and directory links, in order.
func (p *Page) Links() []MenuLine {
	links := make([]MenuLine, 0)
	for _, l := range p.Lines {
		if l.IsLink() {
			links = append(links, l)
		}
	}
	return links
}
