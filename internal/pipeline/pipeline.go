package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/walinks/internal/model"
)

// Step is one stage of processing a crawl target.
type Step interface {
	// Do runs the step. It may read and update report. A returned error is
	// recorded in report.Error by the pipeline.
	Do(ctx context.Context, report *model.CrawlReport) error

	// Name returns a short identifier used in logs.
	Name() string
}

// Pipeline runs steps in order over one report.
//
// A Pipeline is built per target, so that per-site settings such as depth,
// delay and headers can differ between targets in the same batch.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError runs the remaining steps after a failure. By default
	// the first failing step stops the pipeline. Either way Execute
	// returns the first step error.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures whether the pipeline should continue
// executing steps after one fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline without steps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step over report.
//
// Cancellation is checked before each step; a cancelled pipeline records
// ctx.Err() in report.Error and returns it.
func (p *Pipeline) Execute(ctx context.Context, report *model.CrawlReport) error {
	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.Error = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", report.StartURL,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", report.StartURL,
				"error", err,
			)

			if firstErr == nil {
				firstErr = err
				report.Error = err.Error()
			}

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"target", report.StartURL,
		)
	}

	return firstErr
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
