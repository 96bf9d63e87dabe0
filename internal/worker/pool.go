package worker

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Pool fetches ingest targets on a bounded number of workers
type Pool struct {
	workers int
}

// NewPool creates a pool of workers; non-positive counts mean one
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes every job and returns exactly one result per job, in
// completion order. Jobs still queued when ctx is cancelled are not
// started; their results carry the cancellation.
func (p *Pool) Run(ctx context.Context, jobs []*IngestJob) []*IngestResult {
	if len(jobs) == 0 {
		return []*IngestResult{}
	}

	queue := make(chan *IngestJob)
	results := make(chan *IngestResult, len(jobs))

	var wg sync.WaitGroup
	for range min(p.workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				results <- p.run(ctx, job)
			}
		}()
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	wg.Wait()
	close(results)

	out := make([]*IngestResult, 0, len(jobs))
	for r := range results {
		out = append(out, r)
	}
	return out
}

func (p *Pool) run(ctx context.Context, job *IngestJob) *IngestResult {
	if err := ctx.Err(); err != nil {
		return &IngestResult{Target: job.Target, Error: errors.Wrapf(err, "skip %s", job.Target.Source)}
	}
	return job.Execute(ctx)
}

// Errors returns the failures among results
func Errors(results []*IngestResult) []error {
	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	return errs
}
