package model

import (
	"time"
)

// CrawlReport describes one finished crawl.
// It is what report writers render and what the archive stores.
type CrawlReport struct {
	// ID is the archive row id. Zero until the report has been saved.
	ID int64 `json:"id,omitempty"`

	// StartURL is the URL the crawl started from, as given by the user.
	StartURL string `json:"start_url"`

	// Domain is the host the crawl was scoped to.
	Domain string `json:"domain"`

	// MaxDepth is the depth limit the crawl ran with.
	MaxDepth int `json:"max_depth"`

	// PagesCrawled is the number of pages attempted.
	PagesCrawled int `json:"pages_crawled"`

	// Links holds the invite links, sorted.
	Links []string `json:"links"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl returned.
	FinishedAt time.Time `json:"finished_at"`

	// Error is set when the crawl was interrupted or rejected its input.
	// A report with an error may still carry partial links.
	Error string `json:"error,omitempty"`
}

// NewCrawlReport builds a report from a crawl result.
// A nil result yields a report with no links and zero pages.
func NewCrawlReport(startURL, domain string, maxDepth int, result *CrawlResult) *CrawlReport {
	r := &CrawlReport{
		StartURL:  startURL,
		Domain:    domain,
		MaxDepth:  maxDepth,
		Links:     []string{},
		StartedAt: time.Now(),
	}
	if result != nil {
		r.PagesCrawled = result.PagesCrawled
		r.Links = result.Links()
	}
	return r
}

// Duration returns how long the crawl took, or zero if it has not finished.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns the end-of-crawl message for this report.
func (r *CrawlReport) Summary() string {
	return SummaryMessage(len(r.Links), r.PagesCrawled)
}
