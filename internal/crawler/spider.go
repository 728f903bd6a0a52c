package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/walinks/internal/fetch"
	"github.com/nao1215/walinks/internal/invite"
	"github.com/nao1215/walinks/internal/model"
	"github.com/nao1215/walinks/internal/urlnorm"
)

// Fetcher retrieves one page. *fetch.Fetcher is the production
// implementation.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) fetch.Outcome
}

// Spider crawls a single site breadth-first and collects WhatsApp group
// invite links.
//
// A Spider holds configuration only. All traversal state (frontier, visited
// set, discovered links) lives inside one Crawl call, so a Spider can be
// reused and even shared between goroutines.
type Spider struct {
	// fetcher, when set, is used for every crawl instead of a fresh one.
	fetcher Fetcher

	// httpClient is the transport for fetchers built per crawl.
	httpClient *http.Client

	delay       time.Duration
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	cookie      string

	// maxPages stops the crawl after this many pages. 0 means no limit.
	maxPages int

	filter pathFilter
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithFetcher makes every crawl use f. The caller is then responsible for
// pacing, since f is shared across crawls.
func WithFetcher(f Fetcher) SpiderOption {
	return func(s *Spider) {
		s.fetcher = f
	}
}

// WithHTTPClient sets the client used by per-crawl fetchers.
func WithHTTPClient(client *http.Client) SpiderOption {
	return func(s *Spider) {
		s.httpClient = client
	}
}

// WithDelay sets the polite delay before each request.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithHeaders adds request headers sent with every fetch.
func WithHeaders(headers map[string]string) SpiderOption {
	return func(s *Spider) {
		s.headers = headers
	}
}

// WithCookie sets the Cookie header sent with every fetch.
func WithCookie(cookie string) SpiderOption {
	return func(s *Spider) {
		s.cookie = cookie
	}
}

// WithMaxPages sets the maximum number of pages to crawl. 0 means no limit.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
// The start URL is always crawled.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.ignore = patterns
	}
}

// WithFollowPatterns restricts expansion to URL paths matching at least one
// pattern. Empty means all paths are allowed, subject to ignore patterns.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.follow = patterns
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider with a 1 second delay, a 10 second timeout
// and the default user agent.
func NewSpider(opts ...SpiderOption) *Spider {
	s := &Spider{
		delay:       fetch.DefaultDelay,
		timeout:     fetch.DefaultTimeout,
		userAgent:   fetch.DefaultUserAgent,
		maxBodySize: fetch.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// queueItem is one frontier entry.
type queueItem struct {
	url   string
	depth int
}

// crawlState is everything one Crawl call owns.
type crawlState struct {
	domain string
	queue  []queueItem

	// seen holds the visit key of every URL ever enqueued, so the frontier
	// never holds the same page twice.
	seen map[string]struct{}

	// visited holds the visit key of every URL already dequeued.
	visited map[string]struct{}

	result   *model.CrawlResult
	progress progressMeter
}

// Crawl walks the site of startURL breadth-first up to maxDepth and returns
// the invite links found together with the number of pages attempted.
//
// maxDepth 0 fetches only the start page. Links leaving the start URL's
// exact host are never enqueued. Callers are expected to bound maxDepth.
//
// An invalid start URL is reported to sink as an error event and yields an
// empty result with ErrInvalidStartURL or ErrNoDomain; no request is made.
// Fetch failures are reported as warnings and never stop the crawl.
// When ctx is cancelled the partial result is returned with ctx.Err().
func (s *Spider) Crawl(ctx context.Context, startURL string, maxDepth int, sink Sink) (*model.CrawlResult, error) {
	if sink == nil {
		sink = Discard
	}

	if !urlnorm.IsValid(startURL) {
		sink.Emit(Event{Kind: EventError, Message: "Invalid starting URL: " + startURL})
		return model.NewCrawlResult(), fmt.Errorf("%w: %q", ErrInvalidStartURL, startURL)
	}
	domain, ok := urlnorm.DomainOf(startURL)
	if !ok {
		sink.Emit(Event{Kind: EventError, Message: "Could not determine domain for URL: " + startURL})
		return model.NewCrawlResult(), fmt.Errorf("%w: %q", ErrNoDomain, startURL)
	}

	fetcher := s.newFetcher()
	st := &crawlState{
		domain:  domain,
		queue:   []queueItem{{url: startURL, depth: 0}},
		seen:    map[string]struct{}{visitKey(startURL): {}},
		visited: make(map[string]struct{}),
		result:  model.NewCrawlResult(),
	}

	s.logger.Debug("crawl started", "url", startURL, "domain", domain, "max_depth", maxDepth)

	for len(st.queue) > 0 {
		select {
		case <-ctx.Done():
			return st.result, ctx.Err()
		default:
		}

		if s.maxPages > 0 && st.result.PagesCrawled >= s.maxPages {
			sink.Emit(Event{
				Kind:    EventWarning,
				Message: fmt.Sprintf("Page limit of %d reached; %d queued pages were not crawled.", s.maxPages, len(st.queue)),
			})
			break
		}

		item := st.queue[0]
		st.queue = st.queue[1:]

		key := visitKey(item.url)
		if _, done := st.visited[key]; done || item.depth > maxDepth {
			continue
		}
		st.visited[key] = struct{}{}
		st.result.PagesCrawled++

		sink.Emit(Event{
			Kind:    EventInfo,
			Message: fmt.Sprintf("Crawling (Depth %d): %s", item.depth, item.url),
			URL:     item.url,
			Depth:   item.depth,
		})

		s.visit(ctx, fetcher, st, item, maxDepth, sink)

		if f, ok := st.progress.update(st.result.PagesCrawled, len(st.queue)); ok {
			sink.Emit(Event{Kind: EventProgress, Fraction: f})
		}
	}

	if f, ok := st.progress.finish(); ok {
		sink.Emit(Event{Kind: EventProgress, Fraction: f})
	}
	sink.Emit(Event{Kind: EventInfo, Message: st.result.Summary()})

	s.logger.Debug("crawl finished",
		"url", startURL,
		"pages", st.result.PagesCrawled,
		"links", st.result.Len(),
	)

	return st.result, nil
}

// visit fetches one frontier entry, records its invite links and, when the
// depth allows, enqueues its unseen same-domain anchors.
func (s *Spider) visit(ctx context.Context, fetcher Fetcher, st *crawlState, item queueItem, maxDepth int, sink Sink) {
	var body string
	switch o := fetcher.Fetch(ctx, item.url).(type) {
	case fetch.Success:
		body = o.Body
	case fetch.SkippedNonHTML:
		ct := o.ContentType
		if ct == "" {
			ct = "unknown"
		}
		sink.Emit(Event{
			Kind:    EventWarning,
			Message: fmt.Sprintf("Skipping non-HTML content at %s (type: %s)", item.url, ct),
			URL:     item.url,
			Depth:   item.depth,
		})
		return
	case fetch.HTTPError, fetch.NetworkError:
		sink.Emit(Event{
			Kind:    EventWarning,
			Message: fmt.Sprintf("Failed to fetch %s: %s", item.url, o.Describe()),
			URL:     item.url,
			Depth:   item.depth,
		})
		return
	default:
		sink.Emit(Event{
			Kind:    EventWarning,
			Message: fmt.Sprintf("Failed to fetch %s: unexpected fetch outcome %T", item.url, o),
			URL:     item.url,
			Depth:   item.depth,
		})
		return
	}

	for _, link := range invite.ExtractLinks(body) {
		if st.result.AddLink(link) {
			s.logger.Debug("invite link found", "link", link, "page", item.url)
		}
	}

	if item.depth >= maxDepth {
		return
	}

	for _, href := range ParseAnchors(body) {
		link, err := urlnorm.Canonicalize(item.url, href)
		if err != nil {
			continue
		}
		if !urlnorm.IsValid(link) || !urlnorm.SameDomain(link, st.domain) {
			continue
		}
		key := visitKey(link)
		if _, ok := st.seen[key]; ok {
			continue
		}
		if !s.filter.allows(link) {
			continue
		}
		st.seen[key] = struct{}{}
		st.queue = append(st.queue, queueItem{url: link, depth: item.depth + 1})
	}
}

// newFetcher returns the injected fetcher or builds a fresh one, so each
// crawl owns its pacer.
func (s *Spider) newFetcher() Fetcher {
	if s.fetcher != nil {
		return s.fetcher
	}

	opts := []fetch.Option{
		fetch.WithDelay(s.delay),
		fetch.WithTimeout(s.timeout),
		fetch.WithUserAgent(s.userAgent),
		fetch.WithMaxBodySize(s.maxBodySize),
		fetch.WithHeaders(s.headers),
		fetch.WithCookie(s.cookie),
		fetch.WithLogger(s.logger),
	}
	if s.httpClient != nil {
		opts = append(opts, fetch.WithHTTPClient(s.httpClient))
	}
	return fetch.New(opts...)
}

// visitKey is the deduplication key of a URL: its canonical form, with an
// empty path written as "/" so that "https://example.com" and
// "https://example.com/" are the same page.
//
// Design decision: query strings are dropped from the key. Pages that
// differ only in tracking or session parameters are fetched once; a site
// that serves distinct content per query is under-crawled.
func visitKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return urlnorm.Strip(u)
}

// progressMeter turns processed/queued counts into a completion estimate
// that never decreases.
type progressMeter struct {
	last float64
}

// update returns processed/(processed+queued), clamped to the previous
// value, and whether it changed.
func (p *progressMeter) update(processed, queued int) (float64, bool) {
	total := processed + queued
	if total == 0 {
		return p.last, false
	}
	f := float64(processed) / float64(total)
	if f <= p.last {
		return p.last, false
	}
	if f > 1 {
		f = 1
	}
	p.last = f
	return f, true
}

// finish moves the estimate to 1.0.
func (p *progressMeter) finish() (float64, bool) {
	if p.last >= 1 {
		return 1, false
	}
	p.last = 1
	return 1, true
}
