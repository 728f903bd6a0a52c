package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/walinks/internal/model"
)

// createTestReport creates a report with sample data for testing.
// Links are deliberately unsorted.
func createTestReport() *model.CrawlReport {
	started := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	return &model.CrawlReport{
		StartURL:     "https://example.com/",
		Domain:       "example.com",
		MaxDepth:     2,
		PagesCrawled: 7,
		Links: []string{
			"https://chat.whatsapp.com/Zeta",
			"https://chat.whatsapp.com/Alpha",
			"https://chat.whatsapp.com/Mid_1",
		},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func emptyReport() *model.CrawlReport {
	r := createTestReport()
	r.Links = []string{}
	r.PagesCrawled = 4
	return r
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{format: "table", want: "*report.TableWriter"},
		{format: "TEXT", want: "*report.SimpleWriter"},
		{format: "csv", want: "*report.CSVWriter"},
		{format: "json", want: "*report.JSONWriter"},
		{format: "markdown", want: "*report.MarkdownWriter"},
		{format: "md", want: "*report.MarkdownWriter"},
		{format: " xlsx ", want: "*report.XLSXWriter"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			w, err := NewWriter(tt.format, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("NewWriter(%q) error = %v", tt.format, err)
			}
			if got := fmt.Sprintf("%T", w); got != tt.want {
				t.Errorf("NewWriter(%q) = %s, want %s", tt.format, got, tt.want)
			}
			if !ValidFormat(tt.format) {
				t.Errorf("ValidFormat(%q) = false", tt.format)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := NewWriter("pdf", &bytes.Buffer{})
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
		if ValidFormat("pdf") {
			t.Error("ValidFormat(pdf) = true")
		}
	})
}

func TestDefaultFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain string
		format string
		want   string
	}{
		{domain: "example.com", format: "csv", want: "whatsapp_links_example.com.csv"},
		{domain: "127.0.0.1:8080", format: "json", want: "whatsapp_links_127.0.0.1_8080.json"},
		{domain: "example.com", format: "markdown", want: "whatsapp_links_example.com.md"},
		{domain: "example.com", format: "table", want: "whatsapp_links_example.com.txt"},
		{domain: "example.com", format: "xlsx", want: "whatsapp_links_example.com.xlsx"},
		{domain: "", format: "csv", want: "whatsapp_links_unknown.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := DefaultFileName(tt.domain, tt.format); got != tt.want {
				t.Errorf("DefaultFileName(%q, %q) = %q, want %q", tt.domain, tt.format, got, tt.want)
			}
		})
	}
}

func TestTableWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sorted links under header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTableWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
		}

		output := buf.String()
		if !strings.Contains(strings.ToUpper(output), strings.ToUpper(LinkColumn)) {
			t.Error("expected output to contain column header")
		}
		alpha := strings.Index(output, "https://chat.whatsapp.com/Alpha")
		mid := strings.Index(output, "https://chat.whatsapp.com/Mid_1")
		zeta := strings.Index(output, "https://chat.whatsapp.com/Zeta")
		if alpha < 0 || mid < 0 || zeta < 0 {
			t.Fatalf("missing links in output:\n%s", output)
		}
		if alpha >= mid || mid >= zeta {
			t.Errorf("links not sorted:\n%s", output)
		}
		if strings.Contains(output, "Crawling complete") {
			t.Errorf("table should not contain the summary:\n%s", output)
		}
	})

	t.Run("empty report writes nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTableWriter(&buf).Write(emptyReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 || buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"WHATSAPP GROUP LINK REPORT",
			"Start URL:      https://example.com/",
			"Pages Crawled:  7",
			"Status:         Complete",
			"[+] https://chat.whatsapp.com/Alpha",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "Duration:") {
			t.Error("duration should only appear in verbose mode")
		}
	})

	t.Run("verbose adds timing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Duration:       3s") {
			t.Errorf("expected duration in output:\n%s", buf.String())
		}
	})

	t.Run("shows error status and empty list", func(t *testing.T) {
		t.Parallel()

		report := emptyReport()
		report.Error = "context canceled"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "ERROR - context canceled") {
			t.Error("expected error status")
		}
		if !strings.Contains(output, "No links found") {
			t.Error("expected empty marker")
		}
	})
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("header then sorted links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		want := [][]string{
			{LinkColumn},
			{"https://chat.whatsapp.com/Alpha"},
			{"https://chat.whatsapp.com/Mid_1"},
			{"https://chat.whatsapp.com/Zeta"},
		}
		if len(records) != len(want) {
			t.Fatalf("got %d records, want %d", len(records), len(want))
		}
		for i := range want {
			if len(records[i]) != 1 || records[i][0] != want[i][0] {
				t.Errorf("record %d = %v, want %v", i, records[i], want[i])
			}
		}
	})

	t.Run("empty report has header only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(emptyReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := buf.String(); got != LinkColumn+"\n" {
			t.Errorf("got %q, want header only", got)
		}
	})

	t.Run("does not reorder report links", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		if _, err := NewCSVWriter(&bytes.Buffer{}).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Links[0] != "https://chat.whatsapp.com/Zeta" {
			t.Error("writer modified the report's link order")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if result["domain"] != "example.com" {
			t.Errorf("domain = %v", result["domain"])
		}
		if result["pages_crawled"] != float64(7) {
			t.Errorf("pages_crawled = %v", result["pages_crawled"])
		}
		links, ok := result["links"].([]any)
		if !ok || len(links) != 3 || links[0] != "https://chat.whatsapp.com/Alpha" {
			t.Errorf("links = %v", result["links"])
		}
		if !strings.HasPrefix(result["summary"].(string), "Crawling complete!") {
			t.Errorf("summary = %v", result["summary"])
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("empty links are an array", func(t *testing.T) {
		t.Parallel()

		report := emptyReport()
		report.Links = nil

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"links":[]`) {
			t.Errorf("expected empty links array, got %s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes table of links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"# WhatsApp Group Links",
			"## Links",
			LinkColumn,
			"https://chat.whatsapp.com/Alpha",
			"`example.com`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("notes empty result and error", func(t *testing.T) {
		t.Parallel()

		report := emptyReport()
		report.Error = "context deadline exceeded"

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!NOTE]") {
			t.Error("expected note alert for empty result")
		}
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected warning alert for error")
		}
	})
}

func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewXLSXWriter(&buf).Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 || n != buf.Len() {
		t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("invalid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(XLSXSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := []string{
		LinkColumn,
		"https://chat.whatsapp.com/Alpha",
		"https://chat.whatsapp.com/Mid_1",
		"https://chat.whatsapp.com/Zeta",
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if len(rows[i]) == 0 || rows[i][0] != want[i] {
			t.Errorf("row %d = %v, want %q", i, rows[i], want[i])
		}
	}
}
