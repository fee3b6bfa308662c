package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/burrow/internal/gopher"
	"github.com/nao1215/burrow/internal/history"
)

// visitTimeLayout is how visit times are shown in text and Markdown.
const visitTimeLayout = "2006-01-02 15:04:05"

// TextWriter writes a page's display text exactly as the session
// formatted it, and visit history as aligned columns.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs page.Text.
func (w *TextWriter) Write(page *gopher.Page) (int, error) {
	return io.WriteString(w.output, page.Text)
}

// WriteVisits outputs one line per visit, newest first as given.
func (w *TextWriter) WriteVisits(visits []history.Visit) (int, error) {
	if len(visits) == 0 {
		return io.WriteString(w.output, "No visits recorded.\n")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-19s  %8s  %5s  %5s  %5s  %s\n", "TIME", "BYTES", "FILES", "DIRS", "INFO", "LOCATION")
	for _, v := range visits {
		fmt.Fprintf(&sb, "%-19s  %8d  %5d  %5d  %5d  %s\n",
			v.Timestamp.Local().Format(visitTimeLayout),
			v.Bytes,
			v.FileLinks,
			v.DirLinks,
			v.InfoLines,
			v.Location,
		)
	}

	return io.WriteString(w.output, sb.String())
}
