package crawler

import "testing"

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"admin prefix match", "/admin/*", "/admin/dashboard", true},
		{"admin prefix exact", "/admin/*", "/admin", true},
		{"admin prefix no match", "/admin/*", "/user/profile", false},
		{"admin prefix partial no match", "/admin/*", "/administrator", false},
		{"nested admin", "/admin/*", "/admin/users/edit", true},

		{"pdf extension", "*.pdf", "/docs/file.pdf", true},
		{"pdf extension nested", "*.pdf", "/a/b/c/report.pdf", true},
		{"pdf extension no match", "*.pdf", "/docs/file.txt", false},

		{"exact match", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},

		{"wildcard middle", "/api/v?/users", "/api/v1/users", true},
		{"wildcard middle no match", "/api/v?/users", "/api/v10/users", false},

		{"root path", "/", "/", true},
		{"root no match prefix", "/admin/*", "/", false},

		{"segment wildcard", "tag-*", "/blog/tag-go", true},
		{"bad pattern", "[", "/[", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := matchPattern(tt.pattern, tt.path)
			if got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestPathFilter(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows all", func(t *testing.T) {
		t.Parallel()

		var f pathFilter
		if !f.allows("https://example.com/any/path") {
			t.Error("expected all URLs to be allowed when no patterns set")
		}
	})

	t.Run("ignore patterns block matching URLs", func(t *testing.T) {
		t.Parallel()

		f := pathFilter{ignore: []string{"/admin/*", "*.pdf"}}
		tests := []struct {
			url  string
			want bool
		}{
			{"https://example.com/admin/dashboard", false},
			{"https://example.com/docs/file.pdf", false},
			{"https://example.com/public/page", true},
		}
		for _, tt := range tests {
			if got := f.allows(tt.url); got != tt.want {
				t.Errorf("allows(%q) = %v, want %v", tt.url, got, tt.want)
			}
		}
	})

	t.Run("follow patterns restrict to matching URLs", func(t *testing.T) {
		t.Parallel()

		f := pathFilter{follow: []string{"/groups/*", "/community/*"}}
		tests := []struct {
			url  string
			want bool
		}{
			{"https://example.com/groups/go", true},
			{"https://example.com/community/page", true},
			{"https://example.com/shop/item", false},
		}
		for _, tt := range tests {
			if got := f.allows(tt.url); got != tt.want {
				t.Errorf("allows(%q) = %v, want %v", tt.url, got, tt.want)
			}
		}
	})

	t.Run("ignore takes precedence over follow", func(t *testing.T) {
		t.Parallel()

		f := pathFilter{ignore: []string{"/groups/private/*"}, follow: []string{"/groups/*"}}
		if f.allows("https://example.com/groups/private/x") {
			t.Error("ignored path should not be allowed")
		}
		if !f.allows("https://example.com/groups/public") {
			t.Error("followed path should be allowed")
		}
	})

	t.Run("empty path treated as root", func(t *testing.T) {
		t.Parallel()

		f := pathFilter{follow: []string{"/"}}
		if !f.allows("https://example.com") {
			t.Error("expected empty path to match root pattern")
		}
	})

	t.Run("invalid URL is rejected", func(t *testing.T) {
		t.Parallel()

		f := pathFilter{follow: []string{"/*"}}
		if f.allows("http://[::1") {
			t.Error("expected invalid URL to be rejected")
		}
	})
}
