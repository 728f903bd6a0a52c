package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nao1215/walinks/internal/model"
)

// LinkColumn is the single column header used by the table, CSV and
// spreadsheet outputs.
const LinkColumn = "WhatsApp Group Link"

// Format names accepted by NewWriter.
const (
	FormatTable    = "table"
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatXLSX     = "xlsx"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats returns the supported format names.
func Formats() []string {
	return []string{FormatTable, FormatText, FormatCSV, FormatJSON, FormatMarkdown, FormatXLSX}
}

// Writer defines the interface for report output.
type Writer interface {
	// Write renders one crawl report and returns the number of bytes written.
	Write(report *model.CrawlReport) (int, error)
}

// NewWriter returns the Writer for format, writing to output.
// Format names are case-insensitive; "md" is accepted for markdown.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTable:
		return NewTableWriter(output), nil
	case FormatText:
		return NewSimpleWriter(output), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	case FormatXLSX:
		return NewXLSXWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

// ValidFormat reports whether NewWriter accepts format.
func ValidFormat(format string) bool {
	f := strings.ToLower(strings.TrimSpace(format))
	return f == "md" || slices.Contains(Formats(), f)
}

// Extension returns the file extension (without dot) for format.
func Extension(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatMarkdown, "md":
		return "md"
	case FormatTable, FormatText:
		return "txt"
	default:
		return f
	}
}

// DefaultFileName returns the export file name for a crawl of domain, e.g.
// "whatsapp_links_example.com.csv". Characters that are awkward in file
// names, such as the port separator, are replaced with underscores.
func DefaultFileName(domain, format string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, domain)
	if safe == "" {
		safe = "unknown"
	}
	return "whatsapp_links_" + safe + "." + Extension(format)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts bytes written through it, for writers whose
// underlying library does not report a count.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// sortedLinks returns the report's links in lexicographic order without
// modifying the report.
func sortedLinks(report *model.CrawlReport) []string {
	links := slices.Clone(report.Links)
	slices.Sort(links)
	return links
}
