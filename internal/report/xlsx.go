package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/walinks/internal/model"
)

// XLSXSheet is the worksheet name used for the link list.
const XLSXSheet = "Links"

// XLSXWriter exports the links as an Excel workbook with a bold header cell
// and one link per row in column A.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write builds the workbook in memory and writes it to the output.
func (w *XLSXWriter) Write(report *model.CrawlReport) (n int, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return 0, fmt.Errorf("failed to name worksheet: %w", err)
	}
	if err := f.SetCellValue(XLSXSheet, "A1", LinkColumn); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(XLSXSheet, "A1", "A1", bold); err != nil {
		return 0, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(XLSXSheet, "A", "A", 60); err != nil {
		return 0, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, link := range sortedLinks(report) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(XLSXSheet, cell, link); err != nil {
			return 0, fmt.Errorf("failed to write link row: %w", err)
		}
	}

	cw := &countingWriter{w: w.output}
	if err := f.Write(cw); err != nil {
		return cw.n, fmt.Errorf("failed to write workbook: %w", err)
	}
	return cw.n, nil
}
