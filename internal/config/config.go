package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/walinks/internal/fetch"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "walinks"

	// DefaultCrawlDepth follows one level of links from the start page.
	DefaultCrawlDepth = 1

	// MinCrawlDepth and MaxCrawlDepth bound the accepted depth range.
	// Depth 0 fetches only the start page.
	MinCrawlDepth = 0
	MaxCrawlDepth = 5

	// DefaultMaxPages of 0 leaves the crawl bounded only by depth.
	DefaultMaxPages = 0

	// DefaultBatchSize is the number of start URLs crawled concurrently.
	// Each crawl still paces its own requests.
	DefaultBatchSize = 4

	// DefaultTimeout bounds one HTTP request.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultCrawlDelay is the polite wait before each request of a crawl.
	DefaultCrawlDelay = fetch.DefaultDelay

	// DefaultUserAgent identifies walinks in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultOutputFormat is the report format used when none is given.
	DefaultOutputFormat = "table"
)

// Config holds all configuration options for walinks.
// It is populated from defaults, environment variables, the site file and
// CLI flags, in that order, and passed down explicitly.
type Config struct {
	// CrawlDepth is the maximum link depth from the start URL.
	// Must be within MinCrawlDepth..MaxCrawlDepth.
	CrawlDepth int

	// MaxPages stops a crawl after this many pages. 0 means no limit.
	MaxPages int

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of start URLs crawled concurrently.
	BatchSize int

	// ConfigFilePath is an explicit path to the site configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds the per-host settings loaded from the config file.
	SiteConfigs *File

	// OutputFormat is one of table, csv, json, markdown or xlsx.
	OutputFormat string

	// ReportFile is the output path for the report. Empty writes to stdout,
	// except for xlsx which always needs a file.
	ReportFile string

	// Targets is the list of start URLs.
	Targets []string

	// DBDir is the directory holding the SQLite result archive.
	// Defaults to the XDG data directory (~/.local/share/walinks on Linux).
	DBDir string

	// SaveToDB stores each finished crawl in the archive.
	SaveToDB bool

	// CheckRobots fetches robots.txt before crawling and warns when the
	// start URL is disallowed. The crawl itself never obeys it.
	CheckRobots bool

	// CrawlDelay is the delay before each HTTP request.
	CrawlDelay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum number of body bytes read per page.
	MaxBodySize int64

	// PinDepth and PinDelay are set when CrawlDepth or CrawlDelay came from
	// a command line flag. Site file overrides are then ignored.
	PinDepth bool
	PinDelay bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		CrawlDepth:   DefaultCrawlDepth,
		MaxPages:     DefaultMaxPages,
		BatchSize:    DefaultBatchSize,
		OutputFormat: DefaultOutputFormat,
		DBDir:        XDGDataDir(),
		SaveToDB:     true,
		CheckRobots:  true,
		CrawlDelay:   DefaultCrawlDelay,
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for walinks.
// On Linux: ~/.local/share/walinks
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for walinks.
// On Linux: ~/.config/walinks
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ValidDepth reports whether depth is within the accepted range.
func ValidDepth(depth int) bool {
	return depth >= MinCrawlDepth && depth <= MaxCrawlDepth
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if !ValidDepth(c.CrawlDepth) {
		return ErrInvalidCrawlDepth
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.SiteConfigs != nil {
		if err := c.SiteConfigs.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// SiteFor returns the merged site configuration for host. Without a
// loaded config file it returns an empty SiteConfig.
func (c *Config) SiteFor(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}

// DepthFor returns the crawl depth for host: the site override if one is
// configured and the depth is not pinned, otherwise CrawlDepth.
func (c *Config) DepthFor(host string) int {
	if c.PinDepth {
		return c.CrawlDepth
	}
	if d := c.SiteFor(host).Depth; d != nil {
		return *d
	}
	return c.CrawlDepth
}

// DelayFor returns the request delay for host: the site override if one is
// configured and the delay is not pinned, otherwise CrawlDelay.
func (c *Config) DelayFor(host string) time.Duration {
	if c.PinDelay {
		return c.CrawlDelay
	}
	if d := c.SiteFor(host).Delay; d != nil {
		return *d
	}
	return c.CrawlDelay
}
