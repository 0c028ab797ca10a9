// Package report accumulates markdown fragments and flushes them to a document.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// DefaultName is the file name reports are flushed to.
const DefaultName = "README.md"

// Writer is a markdown report under construction. Links are written relative to
// the directory the report is flushed to.
type Writer struct {
	base string
	buf  bytes.Buffer
}

// New creates a report whose links resolve relative to base.
func New(base string) *Writer {
	return &Writer{base: base}
}

// Line appends a formatted line.
func (w *Writer) Line(format string, args ...any) *Writer {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')

	return w
}

// NewLine appends an empty line.
func (w *Writer) NewLine() *Writer {
	w.buf.WriteByte('\n')

	return w
}

// Heading appends a markdown heading followed by an empty line.
func (w *Writer) Heading(level int, text string) *Writer {
	level = min(max(level, 1), 6)

	return w.Line("%s %s", strings.Repeat("#", level), text).NewLine()
}

// Chart appends a link to a chart artifact.
func (w *Writer) Chart(title, path string) *Writer {
	return w.Line("[%s](%s)", title, w.rel(path)).NewLine()
}

// Image appends an inline image reference.
func (w *Writer) Image(alt, path string) *Writer {
	return w.Line(`<img src="%s" alt="%s">`, w.rel(path), alt).NewLine()
}

// Table appends a markdown table.
func (w *Writer) Table(header []string, rows [][]string) *Writer {
	tw := table.NewWriter()
	tw.AppendHeader(toRow(header))

	for _, row := range rows {
		tw.AppendRow(toRow(row))
	}

	return w.Line("%s", tw.RenderMarkdown()).NewLine()
}

// String returns the accumulated markdown.
func (w *Writer) String() string {
	return w.buf.String()
}

// WriteTo implements io.WriterTo.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(w.buf.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("write report: %w", err)
	}

	return int64(n), nil
}

// Write flushes the report to {base}/{name}, DefaultName when name is empty,
// and returns the written path.
func (w *Writer) Write(name string) (string, error) {
	if name == "" {
		name = DefaultName
	}

	err := os.MkdirAll(w.base, 0o755)
	if err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(w.base, name)

	err = os.WriteFile(path, w.buf.Bytes(), 0o644) //nolint:gosec // reports are public artifacts
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

func (w *Writer) rel(path string) string {
	if w.base != "" {
		rel, err := filepath.Rel(w.base, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(path)
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}

	return row
}
