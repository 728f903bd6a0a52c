package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/walinks/internal/model"
)

// TableWriter renders the links as a one-column terminal table.
// The crawl summary is not part of the table; the CLI prints it with the
// crawl events.
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the links table. A report without links writes nothing.
func (w *TableWriter) Write(report *model.CrawlReport) (int, error) {
	if len(report.Links) == 0 {
		return 0, nil
	}

	cw := &countingWriter{w: w.output}
	table := tablewriter.NewWriter(cw)
	table.Header(LinkColumn)
	for _, link := range sortedLinks(report) {
		if err := table.Append([]string{link}); err != nil {
			return cw.n, fmt.Errorf("failed to add table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return cw.n, fmt.Errorf("failed to render table: %w", err)
	}
	return cw.n, nil
}
