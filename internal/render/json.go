package render

import (
	"encoding/json"
	"io"

	"github.com/nao1215/burrow/internal/gopher"
	"github.com/nao1215/burrow/internal/history"
)

// JSONWriter outputs pages and visits as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is compact unless an indent option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonPage adds the canonical location and the display text to a Page,
// whose own Text field is not serialized.
type jsonPage struct {
	Location string `json:"location"`
	*gopher.Page
	Text string `json:"text"`
}

// Write outputs the page as a single JSON object.
func (w *JSONWriter) Write(page *gopher.Page) (int, error) {
	return w.writeJSON(jsonPage{
		Location: page.Target.String(),
		Page:     page,
		Text:     page.Text,
	})
}

// WriteVisits outputs the visits as a JSON array.
func (w *JSONWriter) WriteVisits(visits []history.Visit) (int, error) {
	if visits == nil {
		visits = []history.Visit{}
	}
	return w.writeJSON(visits)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
