package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/walinks/internal/model"
	"github.com/nao1215/walinks/internal/urlnorm"
)

// DefaultConcurrency is the number of targets processed at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// Factory builds the pipeline for one target.
type Factory func(target string) *Pipeline

// BatchProcessor runs one pipeline per target, several at a time.
//
// Every target gets a fresh pipeline, and therefore its own crawler state,
// fetcher and pacer. The polite delay applies within a crawl; different
// targets are not paced against each other.
type BatchProcessor struct {
	factory     Factory
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent pipelines.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// newReport returns the initial report for target.
func newReport(target string) *model.CrawlReport {
	domain, _ := urlnorm.DomainOf(target)
	return model.NewCrawlReport(target, domain, 0, nil)
}

// ProcessBatch crawls every target and returns one report per target, in
// input order. A failing target records its error in its report and does
// not stop the others. When ctx is cancelled, targets that never started
// get a report carrying the cancellation error, and ctx.Err() is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	results := make([]*model.CrawlReport, len(targets))

	err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.CrawlReport, index int) {
		// Each index is written by exactly one goroutine.
		results[index] = report
	})

	for i, r := range results {
		if r == nil {
			r = newReport(targets[i])
			if err != nil {
				r.Error = err.Error()
			}
			results[i] = r
		}
	}

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback crawls every target and calls callback with each
// finished report and its index in targets. callback runs on the worker
// goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.CrawlReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report := newReport(target)
			if err := bp.factory(target).Execute(ctx, report); err != nil {
				// Recorded in the report; the other targets keep going.
				bp.logger.Warn("target failed",
					"target", target,
					"error", err,
				)
			}

			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}
