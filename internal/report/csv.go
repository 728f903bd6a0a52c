package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nao1215/walinks/internal/model"
)

// CSVWriter exports the links as UTF-8 CSV: a header row followed by one
// link per row, sorted.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the CSV export. An empty report still gets the header row.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)

	if err := out.Write([]string{LinkColumn}); err != nil {
		return cw.n, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, link := range sortedLinks(report) {
		if err := out.Write([]string{link}); err != nil {
			return cw.n, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	out.Flush()
	return cw.n, out.Error()
}
