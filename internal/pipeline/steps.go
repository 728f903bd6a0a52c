package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/walinks/internal/config"
	"github.com/nao1215/walinks/internal/crawler"
	"github.com/nao1215/walinks/internal/model"
	"github.com/nao1215/walinks/internal/robots"
	"github.com/nao1215/walinks/internal/urlnorm"
)

// RobotsStep fetches robots.txt for the target and emits a warning event
// when the start URL is disallowed. It never fails the pipeline and never
// changes what gets crawled.
type RobotsStep struct {
	checker *robots.Checker
	sink    crawler.Sink
	logger  *slog.Logger
}

// NewRobotsStep creates a RobotsStep. A nil sink discards the warning.
func NewRobotsStep(checker *robots.Checker, sink crawler.Sink, logger *slog.Logger) *RobotsStep {
	if sink == nil {
		sink = crawler.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsStep{checker: checker, sink: sink, logger: logger}
}

// Name returns the step name.
func (s *RobotsStep) Name() string {
	return "robots"
}

// Do checks robots.txt for report.StartURL.
func (s *RobotsStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if !urlnorm.IsValid(report.StartURL) {
		return nil
	}

	res, err := s.checker.Check(ctx, report.StartURL)
	if err != nil {
		s.logger.Debug("robots.txt unavailable", "target", report.StartURL, "error", err)
		return nil
	}

	if !res.Allowed {
		s.sink.Emit(crawler.Event{
			Kind:    crawler.EventWarning,
			Message: fmt.Sprintf("robots.txt disallows %s for %s; crawling anyway.", report.StartURL, res.Agent),
			URL:     report.StartURL,
		})
	}
	if res.CrawlDelay > 0 {
		s.logger.Info("robots.txt requests a crawl delay",
			"target", report.StartURL,
			"crawl_delay", res.CrawlDelay,
		)
	}
	return nil
}

// CrawlStep runs the crawler over the target and copies the result into
// the report.
type CrawlStep struct {
	spider   *crawler.Spider
	maxDepth int
	sink     crawler.Sink
}

// NewCrawlStep creates a CrawlStep. maxDepth must already be bounded by
// the caller.
func NewCrawlStep(spider *crawler.Spider, maxDepth int, sink crawler.Sink) *CrawlStep {
	return &CrawlStep{spider: spider, maxDepth: maxDepth, sink: sink}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls report.StartURL. Partial results are kept when the crawl is
// cancelled.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	report.MaxDepth = s.maxDepth
	report.StartedAt = time.Now()

	result, err := s.spider.Crawl(ctx, report.StartURL, s.maxDepth, s.sink)

	report.FinishedAt = time.Now()
	if result != nil {
		report.PagesCrawled = result.PagesCrawled
		report.Links = result.Links()
	}
	return err
}

// Archiver stores finished reports. *database.CrawlDB implements it.
type Archiver interface {
	SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error)
}

// ArchiveStep saves the report to the result archive.
type ArchiveStep struct {
	archive Archiver
}

// NewArchiveStep creates an ArchiveStep.
func NewArchiveStep(archive Archiver) *ArchiveStep {
	return &ArchiveStep{archive: archive}
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do saves report and sets report.ID. Reports without a host are skipped
// since the archive is keyed by domain.
func (s *ArchiveStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.Domain == "" {
		return nil
	}
	if _, err := s.archive.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("archive crawl: %w", err)
	}
	return nil
}

// DefaultPipelineConfig holds the collaborators of the default pipeline.
type DefaultPipelineConfig struct {
	// Sink receives crawl events. Nil discards them.
	Sink crawler.Sink

	// Archive, when set, adds an archive step.
	Archive Archiver

	// HTTPClient is the transport for page and robots.txt requests.
	// Nil uses a client with the configured timeout.
	HTTPClient *http.Client

	// Logger is passed to every component.
	Logger *slog.Logger
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineSink sets the event sink.
func WithPipelineSink(sink crawler.Sink) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Sink = sink
	}
}

// WithPipelineArchive enables archiving to archive.
func WithPipelineArchive(archive Archiver) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Archive = archive
	}
}

// WithPipelineHTTPClient sets the HTTP client.
func WithPipelineHTTPClient(client *http.Client) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.HTTPClient = client
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline builds the pipeline for one target from cfg:
// robots (when cfg.CheckRobots), crawl, then archive (when an archive is
// given). The archive step runs even when the crawl fails. Depth, delay, headers, cookie and path patterns come from the
// site configuration of the target's host.
func DefaultPipeline(cfg *config.Config, target string, pipelineOpts []Option, opts ...DefaultPipelineOption) *Pipeline {
	dc := &DefaultPipelineConfig{}
	for _, opt := range opts {
		opt(dc)
	}
	if dc.Logger == nil {
		dc.Logger = slog.Default()
	}
	if dc.Sink == nil {
		dc.Sink = crawler.Discard
	}

	host, _ := urlnorm.DomainOf(target)
	site := cfg.SiteFor(host)

	spiderOpts := []crawler.SpiderOption{
		crawler.WithDelay(cfg.DelayFor(host)),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithHeaders(site.Headers),
		crawler.WithCookie(site.Cookie),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFollowPatterns(site.FollowPatterns),
		crawler.WithLogger(dc.Logger),
	}
	robotsOpts := []robots.Option{
		robots.WithUserAgent(cfg.UserAgent),
		robots.WithLogger(dc.Logger),
	}
	if dc.HTTPClient != nil {
		spiderOpts = append(spiderOpts, crawler.WithHTTPClient(dc.HTTPClient))
		robotsOpts = append(robotsOpts, robots.WithHTTPClient(dc.HTTPClient))
	}

	// A failed crawl is still archived so history shows the attempt.
	base := []Option{WithLogger(dc.Logger), WithContinueOnError(true)}
	p := New(append(base, pipelineOpts...)...)

	if cfg.CheckRobots {
		p.AddStep(NewRobotsStep(robots.NewChecker(robotsOpts...), dc.Sink, dc.Logger))
	}
	steps := []Step{NewCrawlStep(crawler.NewSpider(spiderOpts...), cfg.DepthFor(host), dc.Sink)}
	if dc.Archive != nil {
		steps = append(steps, NewArchiveStep(dc.Archive))
	}
	p.AddSteps(steps...)

	return p
}
