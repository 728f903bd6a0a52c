package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRobots = `User-agent: *
Disallow: /private/
Crawl-delay: 2

User-agent: walinks
Disallow: /members/

Sitemap: https://example.com/sitemap.xml
Sitemap: https://example.com/news.xml
`

func TestRobotsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://example.com/a/b?c=d", want: "https://example.com/robots.txt"},
		{in: "http://127.0.0.1:8080/", want: "http://127.0.0.1:8080/robots.txt"},
		{in: "/relative", wantErr: true},
		{in: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := RobotsURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("RobotsURL(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("RobotsURL(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("RobotsURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		page     string
		agent    string
		allowed  bool
		found    bool
		delay    time.Duration
		sitemaps int
	}{
		{
			name: "generic agent allowed path", status: 200, body: sampleRobots,
			page: "https://example.com/blog", agent: "curl", allowed: true, found: true,
			delay: 2 * time.Second, sitemaps: 2,
		},
		{
			name: "generic agent disallowed path", status: 200, body: sampleRobots,
			page: "https://example.com/private/x", agent: "curl", allowed: false, found: true,
			delay: 2 * time.Second, sitemaps: 2,
		},
		{
			name: "specific group applies", status: 200, body: sampleRobots,
			page: "https://example.com/members/", agent: "walinks", allowed: false, found: true,
			sitemaps: 2,
		},
		{
			name: "specific group ignores generic rules", status: 200, body: sampleRobots,
			page: "https://example.com/private/x", agent: "walinks", allowed: true, found: true,
			sitemaps: 2,
		},
		{
			name: "missing robots allows all", status: 404, body: "",
			page: "https://example.com/private/x", agent: "curl", allowed: true,
		},
		{
			name: "server error disallows all", status: 503, body: "",
			page: "https://example.com/", agent: "curl", allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Evaluate("https://example.com/robots.txt", tt.status, []byte(tt.body), tt.page, tt.agent)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.allowed)
			}
			if got.Found != tt.found {
				t.Errorf("Found = %v, want %v", got.Found, tt.found)
			}
			if got.CrawlDelay != tt.delay {
				t.Errorf("CrawlDelay = %v, want %v", got.CrawlDelay, tt.delay)
			}
			if len(got.Sitemaps) != tt.sitemaps {
				t.Errorf("Sitemaps = %v, want %d entries", got.Sitemaps, tt.sitemaps)
			}
		})
	}
}

func TestCheckerCheck(t *testing.T) {
	t.Parallel()

	t.Run("fetches robots.txt with user agent", func(t *testing.T) {
		t.Parallel()

		uaCh := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/robots.txt" {
				http.NotFound(w, r)
				return
			}
			select {
			case uaCh <- r.Header.Get("User-Agent"):
			default:
			}
			_, _ = w.Write([]byte(sampleRobots))
		}))
		defer server.Close()

		c := NewChecker(WithHTTPClient(server.Client()), WithUserAgent("walinks"))
		report, err := c.Check(context.Background(), server.URL+"/members/list?page=2")
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if report.Allowed {
			t.Error("expected /members/ to be disallowed for walinks")
		}
		if !report.Found || report.StatusCode != http.StatusOK {
			t.Errorf("Found = %v, StatusCode = %d", report.Found, report.StatusCode)
		}
		if report.RobotsURL != server.URL+"/robots.txt" {
			t.Errorf("RobotsURL = %q", report.RobotsURL)
		}
		if ua := <-uaCh; ua != "walinks" {
			t.Errorf("User-Agent = %q, want walinks", ua)
		}
	})

	t.Run("missing robots.txt", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		report, err := NewChecker(WithHTTPClient(server.Client())).Check(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if report.Found || !report.Allowed {
			t.Errorf("Found = %v, Allowed = %v, want false/true", report.Found, report.Allowed)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		if _, err := NewChecker().Check(context.Background(), url+"/"); err == nil {
			t.Error("expected error for closed server")
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		if _, err := NewChecker().Check(context.Background(), "not a url"); err == nil {
			t.Error("expected error for invalid url")
		}
	})
}
