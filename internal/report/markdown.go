package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/walinks/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	cw := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(cw)

	w.writeHeader(md, report)
	w.writeLinks(md, report)
	w.writeFooter(md)

	err := md.Build()
	return cw.n, err
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("WhatsApp Group Links")
	md.PlainText("")

	rows := [][]string{
		{"Start URL", "`" + report.StartURL + "`"},
		{"Domain", "`" + report.Domain + "`"},
		{"Max Depth", strconv.Itoa(report.MaxDepth)},
		{"Pages Crawled", strconv.Itoa(report.PagesCrawled)},
	}
	if !report.StartedAt.IsZero() {
		rows = append(rows, []string{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	rows = append(rows, []string{"Status", statusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Error != "" {
		md.Warningf("The crawl did not finish: %s. Results may be partial.", report.Error)
		md.PlainText("")
	}
}

func statusText(report *model.CrawlReport) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Links")
	md.PlainText("")

	if len(report.Links) == 0 {
		md.Note(report.Summary())
		md.PlainText("")
		return
	}

	links := sortedLinks(report)
	rows := make([][]string, len(links))
	for i, link := range links {
		rows[i] = []string{strconv.Itoa(i + 1), link}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", LinkColumn},
		Rows:   rows,
	})
	md.PlainText("")
	md.Tip(report.Summary())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [walinks](https://github.com/nao1215/walinks)*")
}
