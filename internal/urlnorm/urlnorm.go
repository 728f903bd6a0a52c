// Package urlnorm validates, resolves and canonicalizes URLs for the crawler.
//
// The canonical form of a URL is the absolute URL with its query and
// fragment removed. It is the key used for visited tracking and for the
// crawl frontier, so two URLs that differ only by query or fragment are the
// same page as far as the crawler is concerned.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyHref is returned by Canonicalize when the href is blank.
var ErrEmptyHref = errors.New("empty href")

// IsValid reports whether rawURL parses and has both a scheme and a host.
// Unparseable input is invalid; IsValid never panics.
func IsValid(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// DomainOf returns the host component of rawURL, port included.
// The second return value is false when the URL cannot be parsed or has no host.
func DomainOf(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Host, true
}

// Canonicalize resolves href against baseURL and strips the query and
// fragment. Relative paths, protocol-relative links ("//host/path") and
// absolute URLs are all accepted.
//
// Canonicalize is idempotent: canonicalizing an already canonical URL
// against any base returns it unchanged.
func Canonicalize(baseURL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyHref
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}

	resolved := base.ResolveReference(ref)
	return Strip(resolved), nil
}

// Strip returns u as a string with its query and fragment removed.
// u is not modified.
func Strip(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	clean.ForceQuery = false
	clean.Fragment = ""
	clean.RawFragment = ""
	return clean.String()
}

// SameDomain reports whether rawURL's host equals domain exactly.
// Subdomains do not match: "blog.example.com" is not "example.com".
//
// Design decision: scope is the exact host, port included, with no
// public-suffix or "www." folding. Crawling a sibling host takes an
// explicit second target.
func SameDomain(rawURL, domain string) bool {
	host, ok := DomainOf(rawURL)
	return ok && host == domain
}
