package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/burrow/internal/gopher"
	"github.com/nao1215/burrow/internal/history"
)

// MarkdownWriter outputs pages as Markdown: a summary table, a table of
// links and the menu's informational text.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the page in Markdown format.
func (w *MarkdownWriter) Write(page *gopher.Page) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, page)
	w.writeLinks(md, page)
	w.writeInfo(md, page)

	return len(md.String()), md.Build()
}

// writeHeader writes the page title and summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, page *gopher.Page) {
	md.H1(page.Target.String())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Host", "`" + page.Target.Host + "`"},
			{"Port", strconv.Itoa(page.Target.Port)},
			{"Selector", "`" + page.Target.Selector + "`"},
			{"Fetched", page.FetchedAt.Format("2006-01-02 15:04:05 MST")},
			{"Bytes", strconv.Itoa(page.Bytes)},
			{"Lines", strconv.Itoa(len(page.Lines))},
		},
	})
	md.PlainText("")
}

// writeLinks writes the file and directory links as a table.
func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, page *gopher.Page) {
	md.H2("Links")
	md.PlainText("")

	links := page.Links()
	if len(links) == 0 {
		md.PlainText("No links found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(links))
	for i, l := range links {
		rows[i] = []string{
			l.Kind.String(),
			escapeCell(l.Display),
			"`" + escapeCell(l.Selector) + "`",
			orDash(escapeCell(l.Host)),
			orDash(l.Port),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Display", "Selector", "Host", "Port"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeInfo writes the informational lines as a plain code block.
func (w *MarkdownWriter) writeInfo(md *markdown.Markdown, page *gopher.Page) {
	var info []string
	for _, l := range page.Lines {
		if l.Kind == gopher.LineInfo {
			info = append(info, strings.TrimRight(l.Display, "\r"))
		}
	}
	if len(info) == 0 {
		return
	}

	md.H2("Text")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlight("text"), strings.Join(info, "\n"))
	md.PlainText("")
}

// WriteVisits outputs the visits as a Markdown table.
func (w *MarkdownWriter) WriteVisits(visits []history.Visit) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("History")
	md.PlainText("")

	if len(visits) == 0 {
		md.Note("No visits recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(visits))
	for i, v := range visits {
		rows[i] = []string{
			v.Timestamp.Local().Format(visitTimeLayout),
			"`" + escapeCell(v.Location) + "`",
			strconv.Itoa(v.Bytes),
			strconv.Itoa(v.FileLinks),
			strconv.Itoa(v.DirLinks),
			strconv.Itoa(v.InfoLines),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Time", "Location", "Bytes", "Files", "Dirs", "Info"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// escapeCell keeps pipes in server text from splitting table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// orDash returns "-" for empty values.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
