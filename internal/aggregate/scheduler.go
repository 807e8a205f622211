// Package aggregate fans category scrapes out across a bounded worker pool
// and collects their results under a hard global deadline.
package aggregate

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/metrics"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
)

// Scraper is the per-category work the scheduler runs.
type Scraper interface {
	Scrape(ctx context.Context, req scraper.Request) scraper.CategoryResult
}

// Options tunes the scheduler. Zero values take conservative defaults.
type Options struct {
	MaxConcurrency     int
	PerCategoryTimeout time.Duration
	GlobalTimeout      time.Duration
	// Grace bounds how long Run waits past the global timeout for workers
	// that are mid-handoff before abandoning them.
	Grace   time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Result is the outcome of one aggregation run. Results holds exactly the
// attempted categories, never more and never fewer.
type Result struct {
	Results    map[string]scraper.CategoryResult
	Categories []string
	Successful int
	Failed     int
	Elapsed    time.Duration
}

// Scheduler runs category scrapes concurrently. A category that exceeds its
// per-category timeout is abandoned and reported as timed out; its worker
// slot is released immediately so a hung page fetch never stalls the batch.
type Scheduler struct {
	scraper Scraper
	opts    Options
}

func NewScheduler(sc Scraper, opts Options) *Scheduler {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 3
	}
	if opts.PerCategoryTimeout <= 0 {
		opts.PerCategoryTimeout = 25 * time.Second
	}
	if opts.GlobalTimeout <= 0 {
		opts.GlobalTimeout = 60 * time.Second
	}
	if opts.Grace <= 0 {
		opts.Grace = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	return &Scheduler{scraper: sc, opts: opts}
}

// Run scrapes every requested category and returns once all have resolved
// or the global deadline plus grace has passed, whichever comes first.
// Categories still unresolved at that point are reported as timed out and
// their late results discarded.
func (s *Scheduler) Run(ctx context.Context, reqs []scraper.Request) Result {
	start := time.Now()
	out := Result{Results: make(map[string]scraper.CategoryResult, len(reqs))}
	if len(reqs) == 0 {
		return out
	}
	for _, req := range reqs {
		out.Categories = append(out.Categories, req.Category)
	}

	globalCtx, cancel := context.WithTimeout(ctx, s.opts.GlobalTimeout)
	defer cancel()

	// Buffered to len(reqs) so abandoned workers can always deliver their
	// late result without blocking, even after the collector has moved on.
	resultCh := make(chan scraper.CategoryResult, len(reqs))

	go func() {
		var g errgroup.Group
		g.SetLimit(s.opts.MaxConcurrency)
		for _, req := range reqs {
			if globalCtx.Err() != nil {
				resultCh <- scraper.CategoryResult{Category: req.Category, Status: scraper.StatusTimedOut}
				continue
			}
			req := req
			g.Go(func() error {
				resultCh <- s.runOne(globalCtx, req)
				return nil
			})
		}
		g.Wait()
	}()

	deadline := time.NewTimer(s.opts.GlobalTimeout + s.opts.Grace)
	defer deadline.Stop()

collect:
	for range reqs {
		select {
		case r := <-resultCh:
			out.Results[r.Category] = r
		case <-deadline.C:
			s.log().Warn("aggregation deadline reached, abandoning unresolved categories")
			break collect
		}
	}

	for _, req := range reqs {
		if _, ok := out.Results[req.Category]; !ok {
			out.Results[req.Category] = scraper.CategoryResult{
				Category: req.Category,
				Status:   scraper.StatusTimedOut,
			}
		}
	}

	for _, r := range out.Results {
		switch r.Status {
		case scraper.StatusSuccess, scraper.StatusPartialFailure:
			out.Successful++
		default:
			out.Failed++
		}
	}
	out.Elapsed = time.Since(start)

	s.opts.Metrics.ObserveAggregation(out.Elapsed)
	s.log().Info("aggregation complete",
		zap.Int("categories", len(reqs)),
		zap.Int("successful", out.Successful),
		zap.Int("failed", out.Failed),
		zap.Duration("elapsed", out.Elapsed))
	return out
}

// runOne executes a single category with its own timeout and one retry. The
// retry applies only to genuine failures: a timed out attempt already spent
// the category's whole time slice, so retrying it would starve the batch.
func (s *Scheduler) runOne(ctx context.Context, req scraper.Request) scraper.CategoryResult {
	result := s.attempt(ctx, req)
	if result.Status == scraper.StatusFailed && ctx.Err() == nil {
		s.log().Info("retrying failed category", zap.String("category", req.Category))
		result = s.attempt(ctx, req)
	}
	return result
}

// attempt runs one scrape under the per-category timeout. If the scraper
// does not return in time it is abandoned: the worker slot frees and the
// eventual result is dropped.
func (s *Scheduler) attempt(ctx context.Context, req scraper.Request) scraper.CategoryResult {
	attemptCtx, cancel := context.WithTimeout(ctx, s.opts.PerCategoryTimeout)
	defer cancel()

	ch := make(chan scraper.CategoryResult, 1)
	go func() {
		ch <- s.scraper.Scrape(attemptCtx, req)
	}()

	select {
	case r := <-ch:
		if r.Status == scraper.StatusFailed && attemptCtx.Err() != nil {
			return scraper.CategoryResult{Category: req.Category, Status: scraper.StatusTimedOut}
		}
		return r
	case <-attemptCtx.Done():
		return scraper.CategoryResult{Category: req.Category, Status: scraper.StatusTimedOut}
	}
}

func (s *Scheduler) log() *zap.Logger { return s.opts.Logger }
