package model

import (
	"fmt"
	"slices"
)

// CrawlResult is the output of a single crawl invocation.
// It is owned by the caller once returned; the crawler keeps no reference.
type CrawlResult struct {
	// links is the set of reconstructed invite URLs.
	links map[string]struct{}

	// PagesCrawled counts every page that was dequeued and attempted,
	// including pages that failed to fetch or were skipped as non-HTML.
	PagesCrawled int
}

// NewCrawlResult returns an empty result.
func NewCrawlResult() *CrawlResult {
	return &CrawlResult{links: make(map[string]struct{})}
}

// AddLink records link and reports whether it was new.
func (r *CrawlResult) AddLink(link string) bool {
	if r.links == nil {
		r.links = make(map[string]struct{})
	}
	if _, ok := r.links[link]; ok {
		return false
	}
	r.links[link] = struct{}{}
	return true
}

// HasLink reports whether link has been recorded.
func (r *CrawlResult) HasLink(link string) bool {
	_, ok := r.links[link]
	return ok
}

// Len returns the number of distinct links.
func (r *CrawlResult) Len() int {
	return len(r.links)
}

// Links returns the links sorted lexicographically.
func (r *CrawlResult) Links() []string {
	out := make([]string, 0, len(r.links))
	for link := range r.links {
		out = append(out, link)
	}
	slices.Sort(out)
	return out
}

// Summary returns the human readable end-of-crawl message.
func (r *CrawlResult) Summary() string {
	return SummaryMessage(r.Len(), r.PagesCrawled)
}

// SummaryMessage distinguishes a crawl that found links from one that found
// none.
func SummaryMessage(links, pages int) string {
	if links == 0 {
		return fmt.Sprintf("Crawling complete. No WhatsApp links found after checking %d pages.", pages)
	}
	return fmt.Sprintf("Crawling complete! Found %d WhatsApp links across %d pages.", links, pages)
}
