package config

import (
	"fmt"
	"maps"
	"time"
)

// SiteConfig holds host-specific crawl settings.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth. Nil means not set; 0 is a
	// valid override that crawls only the start page.
	Depth *int `yaml:"depth,omitempty"`

	// Delay overrides the global request delay, e.g. "2s".
	Delay *time.Duration `yaml:"delay,omitempty"`

	// IgnorePatterns are URL path globs that are never enqueued.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns, if set, restrict expansion to matching URL paths.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .walinks configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys are hosts as they appear in URLs, port included
	// (e.g., "example.com" or "localhost:8080").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host, merged over the
// defaults. The returned headers map is a fresh copy.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.Depth != nil {
		result.Depth = siteConfig.Depth
	}
	if siteConfig.Delay != nil {
		result.Delay = siteConfig.Delay
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}

// Validate checks every depth and delay override in the file.
func (cf *File) Validate() error {
	if err := cf.Defaults.validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for host, site := range cf.Sites {
		if err := site.validate(); err != nil {
			return fmt.Errorf("site %s: %w", host, err)
		}
	}
	return nil
}

func (sc SiteConfig) validate() error {
	if sc.Depth != nil && !ValidDepth(*sc.Depth) {
		return ErrInvalidCrawlDepth
	}
	if sc.Delay != nil && *sc.Delay < 0 {
		return ErrInvalidCrawlDelay
	}
	return nil
}
