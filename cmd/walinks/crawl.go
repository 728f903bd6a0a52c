package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nao1215/walinks/internal/config"
	"github.com/nao1215/walinks/internal/crawler"
	"github.com/nao1215/walinks/internal/database"
	"github.com/nao1215/walinks/internal/model"
	"github.com/nao1215/walinks/internal/pipeline"
	"github.com/nao1215/walinks/internal/report"
)

// errAllFailed is returned when no target could be crawled.
var errAllFailed = errors.New("every crawl failed")

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl URL...",
		Short: "Crawl websites and collect WhatsApp group invite links",
		Long: `Crawl visits each start URL and follows links on the same host,
breadth-first, up to the given depth. Every page's HTML is searched for
WhatsApp group invite links (https://chat.whatsapp.com/<code>).

Only the exact host of the start URL is crawled: subdomains and other
sites are never visited. Requests within one crawl are sent one at a time
with a polite delay between them.

Examples:
  # Crawl the start page and the pages it links to
  walinks crawl https://example.com

  # Crawl deeper and export the links as CSV
  walinks crawl --depth 3 --format csv -o links.csv https://example.com

  # Crawl several sites, two at a time, writing one report per site
  walinks crawl --batch 2 --format json -o reports/ https://a.example https://b.example

  # Write an Excel workbook (whatsapp_links_example.com.xlsx)
  walinks crawl --format xlsx https://example.com

Configuration file (.walinks) example:
  sites:
    example.com:
      depth: 2
      delay: 2s
      cookie: "session_id=abc123"
      ignorePatterns:
        - "/admin/*"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		fmt.Sprintf("Maximum link depth from the start URL (%d-%d)", config.MinCrawlDepth, config.MaxCrawlDepth))
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site (0 = unlimited)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay before each request within a crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().StringP("user-agent", "A", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of bytes read from each page")
	cmd.Flags().Bool("no-robots", false,
		"Do not fetch robots.txt before crawling")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .walinks in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultOutputFormat,
		"Report format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (a directory when crawling several URLs)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Only print warnings and errors while crawling")

	// Archive flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the crawl to the local archive")
	cmd.Flags().String("db-dir", "",
		"Archive directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if !report.ValidFormat(cfg.OutputFormat) {
		return fmt.Errorf("configuration error: %w: %q", report.ErrUnknownFormat, cfg.OutputFormat)
	}

	logger := newLogger(cmd)
	slog.SetDefault(logger)

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	return runCrawl(commandContext(cmd), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, quiet, logger)
}

// buildConfig creates a Config from defaults, the environment, the site
// file and the command flags. Flags only override when set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var err error

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; otherwise a missing file
	// just means no site settings.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if flags.Changed("depth") {
		if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
			return nil, err
		}
		cfg.PinDepth = true
	}
	if flags.Changed("delay") {
		if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
		cfg.PinDelay = true
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	if cfg.OutputFormat, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	noRobots, err := flags.GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.CheckRobots = !noRobots

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runCrawl crawls every target, writes the reports and returns an error if
// the run was interrupted or any target failed.
func runCrawl(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, quiet bool, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	multiple := len(cfg.Targets) > 1
	console := &sync.Mutex{}

	bp := pipeline.NewBatchProcessor(
		func(target string) *pipeline.Pipeline {
			var sink crawler.Sink = newConsoleSink(stderr, console, target, multiple, quiet)
			if cfg.Verbose {
				sink = crawler.Multi(sink, crawler.LogSink(logger))
			}
			opts := []pipeline.DefaultPipelineOption{
				pipeline.WithPipelineSink(sink),
				pipeline.WithPipelineLogger(logger),
			}
			if db != nil {
				opts = append(opts, pipeline.WithPipelineArchive(db))
			}
			return pipeline.DefaultPipeline(cfg, target, nil, opts...)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	var failed int
	names := reportNames{}
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
		if err := writeReport(stdout, cfg, r, multiple, names); err != nil {
			return err
		}
	}

	if batchErr != nil {
		return batchErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failed > 0 && failed == len(reports) {
		return errAllFailed
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d crawls failed", failed, len(reports))
	}
	return nil
}

// reportNames hands out report file names that are unique within one run.
// Several start URLs on the same host would otherwise share a default name.
type reportNames map[string]int

// unique returns name, or name with a "_N" suffix before the extension when
// name was already handed out.
func (n reportNames) unique(name string) string {
	n[name]++
	count := n[name]
	if count == 1 {
		return name
	}
	ext := filepath.Ext(name)
	candidate := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), count, ext)
	// A suffixed name can collide with a literal default name of another host.
	return n.unique(candidate)
}

// writeReport renders r in the configured format. Reports go to stdout
// unless an output path is set; xlsx always goes to a file. With several
// targets the output path is a directory holding one file per target.
func writeReport(stdout io.Writer, cfg *config.Config, r *model.CrawlReport, multiple bool, names reportNames) error {
	path := cfg.ReportFile
	switch {
	case multiple && path != "":
		path = filepath.Join(path, names.unique(report.DefaultFileName(r.Domain, cfg.OutputFormat)))
	case path == "" && strings.EqualFold(cfg.OutputFormat, report.FormatXLSX):
		path = names.unique(report.DefaultFileName(r.Domain, cfg.OutputFormat))
	}

	if path == "" {
		w, err := report.NewWriter(cfg.OutputFormat, stdout)
		if err != nil {
			return err
		}
		_, err = w.Write(r)
		return err
	}

	if err := writeReportFile(path, cfg.OutputFormat, r); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %d links from %s to %s\n", len(r.Links), r.StartURL, path)
	return nil
}

// writeReportFile writes r to path, creating parent directories.
func writeReportFile(path, format string, r *model.CrawlReport) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := report.NewWriter(format, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// consoleSink prints crawl events for one target. Lines of concurrent
// crawls are serialized through a shared mutex.
type consoleSink struct {
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	quiet  bool

	// percent is the last progress estimate, shown in front of page lines.
	percent int
}

func newConsoleSink(w io.Writer, mu *sync.Mutex, target string, multiple, quiet bool) *consoleSink {
	s := &consoleSink{mu: mu, w: w, quiet: quiet}
	if multiple {
		s.prefix = "[" + target + "] "
	}
	return s
}

// Emit implements crawler.Sink.
func (s *consoleSink) Emit(e crawler.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case crawler.EventProgress:
		s.percent = int(e.Fraction * 100)
	case crawler.EventError:
		fmt.Fprintf(s.w, "%serror: %s\n", s.prefix, e.Message)
	case crawler.EventWarning:
		fmt.Fprintf(s.w, "%swarning: %s\n", s.prefix, e.Message)
	default:
		if s.quiet {
			return
		}
		if e.URL != "" {
			fmt.Fprintf(s.w, "%s[%3d%%] %s\n", s.prefix, s.percent, e.Message)
			return
		}
		fmt.Fprintf(s.w, "%s%s\n", s.prefix, e.Message)
	}
}

