// Package robots fetches and evaluates robots.txt for a crawl target.
//
// The result is informational. walinks reports what robots.txt says about
// the start URL but never uses it to filter the crawl.
package robots

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/nao1215/walinks/internal/fetch"
)

// maxRobotsSize caps how much of robots.txt is read. Larger files are
// truncated before parsing.
const maxRobotsSize = 512 * 1024

// Report summarizes robots.txt for one page URL and user agent.
type Report struct {
	// RobotsURL is the robots.txt location that was requested.
	RobotsURL string

	// StatusCode is the HTTP status of the robots.txt response.
	StatusCode int

	// Found is true when robots.txt was served with a 2xx status.
	Found bool

	// Agent is the user agent the rules were evaluated for.
	Agent string

	// Allowed reports whether Agent may fetch the page path.
	Allowed bool

	// CrawlDelay is the Crawl-delay of the matching group, zero if unset.
	CrawlDelay time.Duration

	// Sitemaps lists the Sitemap entries, in file order.
	Sitemaps []string
}

// Checker requests robots.txt files.
type Checker struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets the HTTP client used to fetch robots.txt.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.client = client
		}
	}
}

// WithUserAgent sets the agent sent with the request and matched against
// robots.txt groups.
func WithUserAgent(ua string) Option {
	return func(c *Checker) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker with the fetcher's default user agent and
// timeout.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:    &http.Client{Timeout: fetch.DefaultTimeout},
		userAgent: fetch.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// RobotsURL returns the robots.txt URL for the site serving pageURL.
func RobotsURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no scheme or host", pageURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String(), nil
}

// Check fetches robots.txt for the site of pageURL and evaluates the page
// path. A missing robots.txt (4xx) allows everything and a server error
// (5xx) disallows everything, as robots.txt consumers conventionally treat
// them. Transport failures are returned as errors.
func (c *Checker) Check(ctx context.Context, pageURL string) (*Report, error) {
	robotsURL, err := RobotsURL(pageURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", robotsURL, err)
	}

	c.logger.Debug("fetched robots.txt",
		"url", robotsURL,
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	return Evaluate(robotsURL, resp.StatusCode, body, pageURL, c.userAgent)
}

// Evaluate parses a robots.txt response body and evaluates pageURL for agent.
func Evaluate(robotsURL string, statusCode int, body []byte, pageURL, agent string) (*Report, error) {
	data, err := robotstxt.FromStatusAndBytes(statusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	path := "/"
	if u, err := url.Parse(pageURL); err == nil && u.EscapedPath() != "" {
		path = u.EscapedPath()
	}

	report := &Report{
		RobotsURL:  robotsURL,
		StatusCode: statusCode,
		Found:      statusCode >= 200 && statusCode < 300,
		Agent:      agent,
		Allowed:    data.TestAgent(path, agent),
		Sitemaps:   data.Sitemaps,
	}
	if group := data.FindGroup(agent); group != nil {
		report.CrawlDelay = group.CrawlDelay
	}
	return report, nil
}
