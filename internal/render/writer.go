package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/burrow/internal/gopher"
	"github.com/nao1215/burrow/internal/history"
)

// Format names an output format.
type Format string

const (
	// FormatText writes the display text unchanged.
	FormatText Format = "text"

	// FormatJSON writes structured JSON.
	FormatJSON Format = "json"

	// FormatMarkdown writes a Markdown document.
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer outputs pages and visit history.
type Writer interface {
	// Write outputs a fetched page.
	// Returns the number of bytes written and any error encountered.
	Write(page *gopher.Page) (int, error)

	// WriteVisits outputs a list of recorded visits.
	WriteVisits(visits []history.Visit) (int, error)
}

// New returns the Writer for format, writing to output.
func New(format Format, output io.Writer) (Writer, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
