package aggregate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
)

// fakeScraper scripts per-category behavior and records attempt counts.
type fakeScraper struct {
	mu       sync.Mutex
	attempts map[string]int
	behavior func(ctx context.Context, req scraper.Request, attempt int) scraper.CategoryResult
}

func newFakeScraper(behavior func(ctx context.Context, req scraper.Request, attempt int) scraper.CategoryResult) *fakeScraper {
	return &fakeScraper{attempts: map[string]int{}, behavior: behavior}
}

func (f *fakeScraper) Scrape(ctx context.Context, req scraper.Request) scraper.CategoryResult {
	f.mu.Lock()
	f.attempts[req.Category]++
	attempt := f.attempts[req.Category]
	f.mu.Unlock()
	return f.behavior(ctx, req, attempt)
}

func (f *fakeScraper) attemptCount(category string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[category]
}

func success(category string) scraper.CategoryResult {
	return scraper.CategoryResult{
		Category:   category,
		Status:     scraper.StatusSuccess,
		Candidates: []scraper.Candidate{{Title: category + " pick", URL: "https://www.amazon.com/dp/B0"}},
	}
}

func requests(categories ...string) []scraper.Request {
	reqs := make([]scraper.Request, 0, len(categories))
	for _, c := range categories {
		reqs = append(reqs, scraper.Request{Category: c, Domain: "amazon.com"})
	}
	return reqs
}

func TestRunCollectsAllCategories(t *testing.T) {
	fake := newFakeScraper(func(_ context.Context, req scraper.Request, _ int) scraper.CategoryResult {
		return success(req.Category)
	})
	s := NewScheduler(fake, Options{MaxConcurrency: 2})

	out := s.Run(context.Background(), requests("headphones", "keyboards", "monitors"))

	require.Len(t, out.Results, 3)
	assert.Equal(t, []string{"headphones", "keyboards", "monitors"}, out.Categories)
	assert.Equal(t, 3, out.Successful)
	assert.Equal(t, 0, out.Failed)
	for _, category := range out.Categories {
		r, ok := out.Results[category]
		require.True(t, ok, "missing result for %s", category)
		assert.Equal(t, scraper.StatusSuccess, r.Status)
	}
}

func TestRunEmptyRequestList(t *testing.T) {
	s := NewScheduler(newFakeScraper(nil), Options{})
	out := s.Run(context.Background(), nil)
	assert.Empty(t, out.Results)
	assert.Empty(t, out.Categories)
}

func TestRunAbandonsSlowCategory(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	fake := newFakeScraper(func(_ context.Context, req scraper.Request, _ int) scraper.CategoryResult {
		if req.Category == "stuck" {
			<-block
		}
		return success(req.Category)
	})
	s := NewScheduler(fake, Options{
		MaxConcurrency:     2,
		PerCategoryTimeout: 50 * time.Millisecond,
		GlobalTimeout:      5 * time.Second,
	})

	start := time.Now()
	out := s.Run(context.Background(), requests("stuck", "fast"))

	require.Less(t, time.Since(start), 2*time.Second, "abandoned category should not hold up the run")
	assert.Equal(t, scraper.StatusTimedOut, out.Results["stuck"].Status)
	assert.Equal(t, scraper.StatusSuccess, out.Results["fast"].Status)
	assert.Equal(t, 1, out.Successful)
	assert.Equal(t, 1, out.Failed)
}

func TestRunRetriesFailureOnce(t *testing.T) {
	fake := newFakeScraper(func(_ context.Context, req scraper.Request, attempt int) scraper.CategoryResult {
		if attempt == 1 {
			return scraper.CategoryResult{Category: req.Category, Status: scraper.StatusFailed}
		}
		return success(req.Category)
	})
	s := NewScheduler(fake, Options{})

	out := s.Run(context.Background(), requests("flaky"))

	assert.Equal(t, scraper.StatusSuccess, out.Results["flaky"].Status)
	assert.Equal(t, 2, fake.attemptCount("flaky"))
}

func TestRunDoesNotRetryPersistentFailureTwice(t *testing.T) {
	fake := newFakeScraper(func(_ context.Context, req scraper.Request, _ int) scraper.CategoryResult {
		return scraper.CategoryResult{Category: req.Category, Status: scraper.StatusFailed}
	})
	s := NewScheduler(fake, Options{})

	out := s.Run(context.Background(), requests("hopeless"))

	assert.Equal(t, scraper.StatusFailed, out.Results["hopeless"].Status)
	assert.Equal(t, 2, fake.attemptCount("hopeless"))
	assert.Equal(t, 1, out.Failed)
}

func TestRunDoesNotRetryTimedOutCategory(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	fake := newFakeScraper(func(_ context.Context, _ scraper.Request, _ int) scraper.CategoryResult {
		<-block
		return scraper.CategoryResult{}
	})
	s := NewScheduler(fake, Options{
		PerCategoryTimeout: 30 * time.Millisecond,
		GlobalTimeout:      5 * time.Second,
	})

	out := s.Run(context.Background(), requests("slow"))

	assert.Equal(t, scraper.StatusTimedOut, out.Results["slow"].Status)
	assert.Equal(t, 1, fake.attemptCount("slow"), "a timed out attempt must not be retried")
}

func TestRunRespectsGlobalDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	fake := newFakeScraper(func(_ context.Context, _ scraper.Request, _ int) scraper.CategoryResult {
		<-block
		return scraper.CategoryResult{}
	})
	s := NewScheduler(fake, Options{
		MaxConcurrency:     1,
		PerCategoryTimeout: 10 * time.Second,
		GlobalTimeout:      100 * time.Millisecond,
		Grace:              50 * time.Millisecond,
	})

	start := time.Now()
	out := s.Run(context.Background(), requests("a", "b", "c"))
	elapsed := time.Since(start)

	require.Less(t, elapsed, 2*time.Second, "run must return shortly after the global deadline")
	require.Len(t, out.Results, 3, "every attempted category needs an entry")
	for category, r := range out.Results {
		assert.Equal(t, scraper.StatusTimedOut, r.Status, "category %s", category)
	}
	assert.Equal(t, 3, out.Failed)
}

func TestRunBoundsConcurrency(t *testing.T) {
	var current, peak int32
	fake := newFakeScraper(func(_ context.Context, req scraper.Request, _ int) scraper.CategoryResult {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return success(req.Category)
	})
	s := NewScheduler(fake, Options{MaxConcurrency: 2})

	out := s.Run(context.Background(), requests("a", "b", "c", "d", "e"))

	assert.Equal(t, 5, out.Successful)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}
