package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent identifies the crawler to the sites it visits.
	DefaultUserAgent = "walinks/1.0 (+https://github.com/nao1215/walinks)"

	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 10 * time.Second

	// DefaultDelay is the polite wait before every request.
	DefaultDelay = 1 * time.Second

	// DefaultMaxBodySize caps how much of an HTML body is read.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024
)

const htmlContentType = "text/html"

// Fetcher performs paced GET requests and classifies the responses.
// A Fetcher is meant for a single crawl; its Pacer is not shared.
type Fetcher struct {
	client      *http.Client
	pacer       *Pacer
	userAgent   string
	headers     map[string]string
	cookie      string
	maxBodySize int64
	timeout     time.Duration
	delay       time.Duration
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client. Its Timeout is overwritten by the
// Fetcher's timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithDelay sets the polite delay waited before each request.
// Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// WithMaxBodySize limits the number of body bytes read from a response.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithLogger sets the logger used for request level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher with the default user agent, a 10 second timeout and
// a 1 second delay, then applies opts.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
		delay:       DefaultDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	} else {
		c := *f.client
		f.client = &c
	}
	f.client.Timeout = f.timeout
	f.pacer = NewPacer(f.delay)

	return f
}

// Fetch waits for the pacer, issues one GET for pageURL and classifies the
// response. Redirects are followed by the HTTP client. The delay before the
// next Fetch starts once the body has been read.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Outcome {
	if err := f.pacer.Wait(ctx); err != nil {
		return NetworkError{Message: err.Error()}
	}
	defer f.pacer.Done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return NetworkError{Message: err.Error()}
	}
	f.setHeaders(req)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("request failed", "url", pageURL, "error", err)
		return NetworkError{Message: err.Error()}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	f.logger.Debug("response received",
		"url", pageURL,
		"status", resp.StatusCode,
		"content_type", contentType,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HTTPError{StatusCode: resp.StatusCode}
	}

	if !IsHTML(contentType) {
		return SkippedNonHTML{ContentType: contentType}
	}

	body, err := f.readBody(resp.Body, contentType)
	if err != nil {
		return NetworkError{Message: err.Error()}
	}

	return Success{Body: body, ContentType: contentType}
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
}

// readBody reads at most maxBodySize bytes and decodes them to UTF-8 using
// the declared or sniffed charset. Undecodable input is returned as is.
func (f *Fetcher) readBody(r io.Reader, contentType string) (string, error) {
	limited := io.LimitReader(r, f.maxBodySize)

	decoded, err := charset.NewReader(limited, contentType)
	if err != nil {
		decoded = limited
	}

	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsHTML reports whether a Content-Type header value denotes an HTML page.
func IsHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), htmlContentType)
}
