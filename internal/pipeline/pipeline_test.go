package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/walinks/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.CrawlReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.CrawlReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	names := p.StepNames()
	want := []string{"first", "second", "third"}
	if len(names) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("step %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.CrawlReport) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New()
		p.AddSteps(record("a"), record("b"), record("c"))

		if err := p.Execute(context.Background(), &model.CrawlReport{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := &mockStep{
			name:   "failing",
			doFunc: func(context.Context, *model.CrawlReport) error { return errBoom },
		}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		report := &model.CrawlReport{}
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected errBoom, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("step after failure should not run")
		}
		if report.Error != "boom" {
			t.Errorf("report.Error = %q, want boom", report.Error)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name:   "failing",
			doFunc: func(context.Context, *model.CrawlReport) error { return errors.New("boom") },
		}
		after := &mockStep{name: "after"}

		second := &mockStep{
			name:   "second failing",
			doFunc: func(context.Context, *model.CrawlReport) error { return errors.New("later") },
		}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after, second)

		report := &model.CrawlReport{}
		err := p.Execute(context.Background(), report)
		if err == nil || err.Error() != "boom" {
			t.Fatalf("expected first step error boom, got %v", err)
		}
		if after.callCount != 1 || second.callCount != 1 {
			t.Errorf("expected steps after failure to run once, ran %d and %d", after.callCount, second.callCount)
		}
		if report.Error != "boom" {
			t.Errorf("report.Error = %q, want boom", report.Error)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		report := &model.CrawlReport{}
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
		if report.Error != context.Canceled.Error() {
			t.Errorf("report.Error = %q", report.Error)
		}
	})
}
