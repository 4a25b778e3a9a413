package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/tokhist/internal/model"
)

func newCountingFactory(step *mockStep) Factory {
	return func(string) (*Pipeline, error) {
		p := New(WithLogger(discardLogger()))
		p.AddStep(step)
		return p, nil
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	factory := func(string) (*Pipeline, error) { return New(), nil }

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory)
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, WithConcurrency(5))
		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, WithConcurrency(0))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(factory, WithBatchLogger(nil))
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all URLs in input order", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		bp := NewBatchProcessor(func(string) (*Pipeline, error) {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "count", doFunc: func(context.Context, *model.Run) error {
				processed.Add(1)
				return nil
			}})
			return p, nil
		}, WithBatchLogger(discardLogger()))

		urls := []string{"https://a.example/1.js", "https://b.example/2.js", "https://c.example/3.js"}
		runs, err := bp.ProcessBatch(context.Background(), urls)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != len(urls) {
			t.Fatalf("expected %d runs, got %d", len(urls), len(runs))
		}
		for i, run := range runs {
			if run.URL != urls[i] {
				t.Errorf("run %d: expected URL %s, got %s", i, urls[i], run.URL)
			}
		}
		if processed.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processed.Load())
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(func(string) (*Pipeline, error) {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "slow", doFunc: func(context.Context, *model.Run) error {
				n := current.Add(1)
				mu.Lock()
				if n > peak.Load() {
					peak.Store(n)
				}
				mu.Unlock()
				time.Sleep(30 * time.Millisecond)
				current.Add(-1)
				return nil
			}})
			return p, nil
		}, WithConcurrency(2), WithBatchLogger(discardLogger()))

		urls := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
		if _, err := bp.ProcessBatch(context.Background(), urls); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent runs, got %d", peak.Load())
		}
	})

	t.Run("failing URL does not stop the others", func(t *testing.T) {
		t.Parallel()

		errBad := errors.New("bad url")
		bp := NewBatchProcessor(func(url string) (*Pipeline, error) {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "check", doFunc: func(context.Context, *model.Run) error {
				if url == "bad" {
					return errBad
				}
				return nil
			}})
			return p, nil
		}, WithBatchLogger(discardLogger()))

		runs, err := bp.ProcessBatch(context.Background(), []string{"good1", "bad", "good2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if runs[0].Failed() || runs[2].Failed() {
			t.Error("expected good runs to succeed")
		}
		if !errors.Is(runs[1].Error, errBad) {
			t.Errorf("expected errBad on failing run, got %v", runs[1].Error)
		}
	})

	t.Run("factory error is recorded on the run", func(t *testing.T) {
		t.Parallel()

		errFactory := errors.New("no pipeline")
		bp := NewBatchProcessor(func(string) (*Pipeline, error) {
			return nil, errFactory
		}, WithBatchLogger(discardLogger()))

		runs, err := bp.ProcessBatch(context.Background(), []string{"u"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(runs[0].Error, errFactory) {
			t.Errorf("expected factory error, got %v", runs[0].Error)
		}
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		bp := NewBatchProcessor(newCountingFactory(step), WithBatchLogger(discardLogger()))
		runs, err := bp.ProcessBatch(ctx, []string{"u1"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !runs[0].Failed() {
			t.Error("expected run to be marked failed")
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(string) (*Pipeline, error) { return New(), nil })
		runs, err := bp.ProcessBatch(context.Background(), nil)
		if err != nil || len(runs) != 0 {
			t.Errorf("expected no runs and no error, got %d, %v", len(runs), err)
		}
	})

	t.Run("custom run factory", func(t *testing.T) {
		t.Parallel()

		render := model.RenderConfig{BarChar: '#', MaxWidth: 5}
		bp := NewBatchProcessor(func(string) (*Pipeline, error) { return New(), nil },
			WithRunFactory(func(url string) *model.Run {
				r := model.NewRun(url)
				r.Render = render
				return r
			}))
		runs, _ := bp.ProcessBatch(context.Background(), []string{"u"})
		if runs[0].Render != render {
			t.Errorf("expected custom render config, got %+v", runs[0].Render)
		}
	})
}
