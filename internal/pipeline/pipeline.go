package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/tokhist/internal/model"
)

// Step is one stage of a run.
type Step interface {
	// Do executes the step, reading and updating run. A non-nil error
	// stops the pipeline.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging and run bookkeeping.
	Name() string
}

// Pipeline executes steps in order and stops at the first error.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
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

// Execute runs every step against run. Cancellation is checked between
// steps; a step in progress is responsible for honoring ctx itself.
//
// The returned error is also recorded on run. Elapsed is set in all cases.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	start := time.Now()
	defer func() {
		run.Elapsed = time.Since(start)
	}()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", run.URL,
				"reason", err,
			)
			run.Fail(err)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", run.URL,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"url", run.URL,
				"error", err,
			)
			run.Fail(err)
			return err
		}

		run.AddStep(step.Name())
	}
	return nil
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
