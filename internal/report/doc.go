// Package report renders crawl reports.
//
// Every format implements Writer and is selected by name with NewWriter:
//   - table: one-column terminal table (default)
//   - text: plain text with a header block
//   - csv: UTF-8 CSV with a "WhatsApp Group Link" header row
//   - json: the report as a JSON document
//   - markdown: GitHub-flavored Markdown
//   - xlsx: an Excel workbook
//
// Links are always written in lexicographic order.
package report
