package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunRobotsCmd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\nCrawl-delay: 2\n\nSitemap: https://example.com/sitemap.xml\n")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Run("disallowed path", func(t *testing.T) {
		t.Parallel()

		out, _, err := executeCommand(t, "robots", server.URL+"/private/groups")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"robots.txt:   " + server.URL + "/robots.txt (HTTP 200)",
			"(disallowed)",
			"Crawl-delay:  2s",
			"  - https://example.com/sitemap.xml",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("allowed path", func(t *testing.T) {
		t.Parallel()

		out, _, err := executeCommand(t, "robots", "-A", "TestBot/1.0", server.URL+"/groups")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(allowed)") || !strings.Contains(out, "User agent:   TestBot/1.0") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "robots", "-t", "0s", server.URL)
		if err == nil {
			t.Error("expected an error for a zero timeout")
		}
	})
}
