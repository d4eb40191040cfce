package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mavwarf/imaging/internal/paths"
	"github.com/Mavwarf/imaging/internal/transform"
)

// Failure is a job that did not produce its output. Failures never abort
// sibling jobs.
type Failure struct {
	Job transform.Job
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Job.Destination, f.Err)
}

// Event reports the completion of one job.
type Event struct {
	Job      transform.Job
	Err      error
	Duration time.Duration
}

// Options controls a stage run.
type Options struct {
	// Concurrency limits jobs in flight. 0 runs every job at once.
	Concurrency int
	// OnJob is called after each job, possibly from several goroutines.
	OnJob func(Event)
}

// StageResult summarizes one generation stage.
type StageResult struct {
	Category transform.Category
	Jobs     int
	Failures []Failure
	Duration time.Duration
}

// OK reports whether every job succeeded.
func (r StageResult) OK() bool { return len(r.Failures) == 0 }

// Succeeded returns the number of jobs that produced output.
func (r StageResult) Succeeded() int { return r.Jobs - len(r.Failures) }

// Execute runs all jobs concurrently and waits for every one of them.
// Each job's destination directory is created first. Failed jobs are
// collected, not retried.
func Execute(ctx context.Context, b transform.Backend, cat transform.Category, jobs []transform.Job, opts Options) StageResult {
	start := time.Now()
	res := StageResult{Category: cat, Jobs: len(jobs)}

	var mu sync.Mutex
	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for _, job := range jobs {
		g.Go(func() error {
			t0 := time.Now()
			err := run(ctx, b, job)
			if err != nil {
				mu.Lock()
				res.Failures = append(res.Failures, Failure{Job: job, Err: err})
				mu.Unlock()
			}
			if opts.OnJob != nil {
				opts.OnJob(Event{Job: job, Err: err, Duration: time.Since(t0)})
			}
			// Never stop siblings.
			return nil
		})
	}
	g.Wait()

	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Job.Destination < res.Failures[j].Job.Destination
	})
	res.Duration = time.Since(start)
	return res
}

func run(ctx context.Context, b transform.Backend, job transform.Job) error {
	if err := paths.EnsureDir(filepath.Dir(job.Destination)); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return transform.Apply(ctx, b, job)
}
