package gopher

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

// Display prefixes. "<dir>" carries an extra space so link text lines up
// with "<file>" in a monospaced column.
const (
	filePrefix = "<file> "
	dirPrefix  = "<dir>  "
	infoPrefix = "  "
)

// Synthetic fields some servers append to info lines in place of a real
// host and port. They are stripped from rendered info text.
var infoSentinels = []string{"error.host\t1", "null.host\t1"}

// linkPattern matches a type 0 or type 1 menu line: two or three
// tab-terminated fields (display string, selector and, usually, host)
// followed by a numeric port. Servers that drop the host field or the
// leading slash of the selector still match. The character class includes
// the range ")-_" and must not be "tidied up": it is what decides which real
// world menu lines count as links.
var linkPattern = regexp.MustCompile("^[01](?:[a-zA-Z0-9 ~`!@#$%^&*()-_=+\\[\\]{}|'\";:,./?<>]+\\t+){2,3}\\d+\\r?")

// LineKind is the classification of a single response line.
type LineKind int

const (
	// LineRaw is passed through unchanged.
	LineRaw LineKind = iota

	// LineFile is a link to a file (item type 0).
	LineFile

	// LineDir is a link to a menu (item type 1).
	LineDir

	// LineInfo is informational text (item type i).
	LineInfo
)

// String returns the short name of the kind.
func (k LineKind) String() string {
	switch k {
	case LineFile:
		return "file"
	case LineDir:
		return "dir"
	case LineInfo:
		return "info"
	default:
		return "raw"
	}
}

// MarshalText lets LineKind appear by name in JSON output.
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MenuLine is one classified line of a response.
type MenuLine struct {
	// Kind is the classification.
	Kind LineKind `json:"kind"`

	// Raw is the line as received, without the trailing "\n".
	Raw string `json:"raw"`

	// Display is the user-visible text of a link, or the text of an info line.
	Display string `json:"display,omitempty"`

	// Selector is the link target selector. Links only.
	Selector string `json:"selector,omitempty"`

	// Host is the link target host, empty when the server omitted it.
	Host string `json:"host,omitempty"`

	// Port is the link target port field as sent. Links only.
	Port string `json:"port,omitempty"`

	// Rendered is the display form, without the trailing "\n".
	Rendered string `json:"rendered"`
}

// IsLink reports whether the line is a file or directory link.
func (l MenuLine) IsLink() bool {
	return l.Kind == LineFile || l.Kind == LineDir
}

// Formatter turns raw menu responses into display text, recording file
// links it discovers in a FileIndex.
type Formatter struct {
	// index is shared with the owning Session.
	index *FileIndex

	// enc transcodes responses to UTF-8 before classification.
	// nil means the response must already be valid UTF-8.
	enc encoding.Encoding
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithFormatterEncoding sets the character encoding of responses.
// nil keeps strict UTF-8.
func WithFormatterEncoding(enc encoding.Encoding) FormatterOption {
	return func(f *Formatter) {
		f.enc = enc
	}
}

// NewFormatter creates a formatter that reads and updates index.
// A nil index gets a fresh one.
func NewFormatter(index *FileIndex, opts ...FormatterOption) *Formatter {
	if index == nil {
		index = NewFileIndex()
	}

	f := &Formatter{index: index}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Index returns the file index the formatter records into.
func (f *Formatter) Index() *FileIndex {
	return f.index
}

// Format classifies raw, the response to selector on host, and returns the
// display text: one rendered line per input line, each followed by "\n".
func (f *Formatter) Format(host, selector string, raw []byte) (string, error) {
	lines, err := f.Classify(host, selector, raw)
	if err != nil {
		return "", err
	}
	return Render(lines), nil
}

// Classify decodes raw and classifies every line. File links found are
// added to the index for host.
//
// Precedence, first match wins:
//  1. type 0 link: recorded in the index, rendered as "<file> ..."
//  2. type 1 link: rendered as "<dir>  ..."
//  3. "i" line, unless selector is a known file selector on host: rendered
//     indented with the error.host/null.host sentinels removed
//  4. anything else: unchanged
//
// Rule 3 keeps the body of a text file whose lines start with "i" intact
// when the file was reached through a link seen earlier. It keys on the
// selector only, so a menu that shares a selector with an unrelated file
// link on the same host is rendered raw too.
func (f *Formatter) Classify(host, selector string, raw []byte) ([]MenuLine, error) {
	text, err := f.decode(raw)
	if err != nil {
		return nil, err
	}

	rawLines := strings.Split(text, "\n")
	lines := make([]MenuLine, 0, len(rawLines))
	for _, line := range rawLines {
		lines = append(lines, f.classifyLine(host, selector, line))
	}
	return lines, nil
}

// classifyLine applies the precedence rules to a single line.
func (f *Formatter) classifyLine(host, selector, line string) MenuLine {
	if linkPattern.MatchString(line) {
		ml := parseLink(line)
		if line[0] == '0' {
			ml.Kind = LineFile
			ml.Rendered = filePrefix + strings.ReplaceAll(line[1:], "\t", " ")
			f.index.Add(host, ml.Selector)
		} else {
			ml.Kind = LineDir
			ml.Rendered = dirPrefix + strings.ReplaceAll(line[1:], "\t", " ")
		}
		return ml
	}

	if strings.HasPrefix(line, "i") && !f.index.Contains(host, selector) {
		text := stripSentinels(line[1:])
		return MenuLine{
			Kind:     LineInfo,
			Raw:      line,
			Display:  text,
			Rendered: infoPrefix + text,
		}
	}

	return MenuLine{
		Kind:     LineRaw,
		Raw:      line,
		Rendered: line,
	}
}

// parseLink splits the fields of a line already matched by linkPattern.
// The selector is always the second field; host and port depend on
// whether the server sent three or four fields.
func parseLink(line string) MenuLine {
	fields := strings.Split(line[1:], "\t")
	ml := MenuLine{
		Raw:      line,
		Display:  fields[0],
		Selector: fields[1],
	}

	switch {
	case len(fields) >= 4:
		ml.Host = fields[2]
		ml.Port = strings.TrimRight(fields[3], "\r")
	case len(fields) == 3:
		ml.Port = strings.TrimRight(fields[2], "\r")
	}
	return ml
}

// stripSentinels removes every error.host/null.host sentinel from s.
func stripSentinels(s string) string {
	for _, sentinel := range infoSentinels {
		s = strings.ReplaceAll(s, sentinel, "")
	}
	return s
}

// decode returns raw as a UTF-8 string, transcoding first when an encoding
// is configured.
func (f *Formatter) decode(raw []byte) (string, error) {
	if f.enc != nil {
		decoded, err := f.enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		raw = decoded
	}

	if !utf8.Valid(raw) {
		return "", &DecodeError{Offset: firstInvalid(raw)}
	}
	return string(raw), nil
}

// firstInvalid returns the offset of the first invalid UTF-8 sequence in b.
func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// Render joins rendered lines, terminating each with "\n".
func Render(lines []MenuLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Rendered)
		sb.WriteByte('\n')
	}
	return sb.String()
}
