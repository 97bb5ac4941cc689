// Package worker runs the pipeline record-parallel over a JSONL stream.
// Records are independent, so the pool is a bounded parallel map: N workers
// pull from a single feed channel and a single writer appends kept records
// in completion order. Output order is not preserved and does not need to
// be; each record's own stage sequence stays strictly sequential inside one
// worker.
package worker

import (
	"context"
	"io"
	"log"
	goruntime "runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/corpusfilter/internal/jsonl"
	"github.com/mohammad-safakhou/corpusfilter/internal/pipeline"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
)

// Summary is the end-of-run accounting.
type Summary struct {
	Total    int            `json:"total"`
	Kept     int            `json:"kept"`
	Rejected map[string]int `json:"rejected"`
	Skipped  int            `json:"skipped"`
}

// Pool fans records out to pipeline workers.
type Pool struct {
	pipe    *pipeline.Pipeline
	workers int
	logger  *log.Logger
	metrics *runtime.Metrics
}

// NewPool sizes the pool; workers <= 0 means one per CPU.
func NewPool(pipe *pipeline.Pipeline, workers int, logger *log.Logger, metrics *runtime.Metrics) *Pool {
	if workers <= 0 {
		workers = goruntime.NumCPU()
	}
	return &Pool{pipe: pipe, workers: workers, logger: logger, metrics: metrics}
}

type outcome struct {
	doc    *record.Document
	keep   bool
	reason pipeline.Reason
}

// Run streams records from r through the pipeline and appends kept records
// to w. Cancellation is honored between records: a canceled ctx stops the
// feed, lets in-flight records finish, and returns ctx.Err(). Per-record
// trouble never aborts the run.
func (p *Pool) Run(ctx context.Context, r *jsonl.Reader, w *jsonl.Writer) (Summary, error) {
	return p.run(ctx, r, w, p.pipe.Process)
}

// RunAnnotate streams records through the enabled stages and writes every
// record back out, annotated, without applying the decision policy. This
// backs the single-stage commands.
func (p *Pool) RunAnnotate(ctx context.Context, r *jsonl.Reader, w *jsonl.Writer) (Summary, error) {
	return p.run(ctx, r, w, func(ctx context.Context, doc *record.Document) (bool, pipeline.Reason) {
		p.pipe.Annotate(ctx, doc)
		return true, pipeline.ReasonNone
	})
}

func (p *Pool) run(ctx context.Context, r *jsonl.Reader, w *jsonl.Writer, apply func(context.Context, *record.Document) (bool, pipeline.Reason)) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := make(chan *record.Document)
	results := make(chan outcome)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(feed)
		for {
			doc, err := r.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if p.metrics != nil {
				p.metrics.RecordsTotal.Inc()
			}
			select {
			case feed <- doc:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	workers, wctx := errgroup.WithContext(gctx)
	for i := 0; i < p.workers; i++ {
		workers.Go(func() error {
			for doc := range feed {
				keep, reason := apply(wctx, doc)
				select {
				case results <- outcome{doc: doc, keep: keep, reason: reason}:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		_ = workers.Wait()
		close(results)
	}()

	summary := Summary{Rejected: make(map[string]int)}
	for out := range results {
		summary.Total++
		if !out.keep {
			summary.Rejected[string(out.reason)]++
			continue
		}
		if err := w.Write(out.doc); err != nil {
			cancel()
			for range results {
			}
			summary.Skipped = r.Skipped()
			if p.metrics != nil {
				p.metrics.RecordsSkipped.Add(float64(summary.Skipped))
			}
			return summary, err
		}
		summary.Kept++
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := workers.Wait(); err != nil {
		return summary, err
	}
	summary.Skipped = r.Skipped()
	if p.metrics != nil {
		p.metrics.RecordsSkipped.Add(float64(summary.Skipped))
	}
	return summary, w.Flush()
}
