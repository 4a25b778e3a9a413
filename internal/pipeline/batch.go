package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tokhist/internal/model"
)

// DefaultConcurrency is the number of URLs processed at once.
const DefaultConcurrency = 4

// Factory builds the pipeline for one URL. Each URL gets a fresh pipeline
// so that per-source settings and step state never leak between runs.
type Factory func(url string) (*Pipeline, error)

// BatchProcessor runs pipelines for many URLs concurrently.
type BatchProcessor struct {
	factory     Factory
	concurrency int
	logger      *slog.Logger
	newRun      func(url string) *model.Run
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRunFactory sets how the initial Run for a URL is created.
func WithRunFactory(f func(url string) *model.Run) BatchOption {
	return func(b *BatchProcessor) {
		b.newRun = f
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
		newRun:      model.NewRun,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs one pipeline per URL and returns one Run per URL in
// input order. A failing URL does not stop the others; its error is
// recorded on its Run. The returned error is non-nil only when ctx ends
// the batch early.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.Run, error) {
	bp.logger.Debug("starting batch",
		"total", len(urls),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	results := make([]*model.Run, len(urls))
	for i, u := range urls {
		results[i] = bp.newRun(u)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		run := results[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				run.Fail(err)
				return nil
			}

			p, err := bp.factory(u)
			if err != nil {
				run.Fail(err)
				bp.logger.Warn("failed to build pipeline", "url", u, "index", i+1, "error", err)
				return nil
			}

			if err := p.Execute(gctx, run); err != nil {
				bp.logger.Debug("run failed", "url", u, "index", i+1, "error", err)
				return nil
			}
			bp.logger.Debug("run completed", "url", u, "index", i+1, "tokens", run.TotalTokens())
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines record errors on their runs

	bp.logger.Debug("batch complete",
		"total", len(urls),
		"elapsed", time.Since(start),
	)
	return results, ctx.Err()
}
