// Package crawler walks a single website breadth-first and collects the
// WhatsApp group invite links its pages contain.
//
// # Architecture
//
// The Spider type coordinates one crawl at a time through an explicit FIFO
// frontier of (url, depth) entries. It composes three leaf packages:
//
//   - urlnorm validates, resolves and canonicalizes URLs
//   - fetch performs the paced GET and classifies the response
//   - invite mines invite codes from raw page text
//
// Anchors are read from HTML with goquery. The visited set is keyed by the
// canonical URL, so "/page#top" and "/page?x=1" are one page.
//
// # Scoping
//
// Only links whose host equals the start URL's host (port included) are
// followed. Subdomains are different hosts.
//
// # Politeness
//
// A crawl is strictly sequential. Every request, the first one included,
// waits for the configured delay after the previous response, and each crawl
// owns its own pacer.
//
// # Events
//
// Progress is reported through a Sink as info, warning, error and progress
// events. Sinks are observational only.
//
// # Usage
//
//	spider := crawler.NewSpider(crawler.WithDelay(time.Second))
//	result, err := spider.Crawl(ctx, "https://example.com", 1, crawler.LogSink(logger))
package crawler
