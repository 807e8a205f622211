package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/metrics"
)

// Outcome classifies a single fetch attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBotWall
	OutcomeHTTPError
	OutcomeTransport
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBotWall:
		return "bot_wall"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeTransport:
		return "transport_error"
	default:
		return "unknown"
	}
}

// FetchError carries the classification of a failed fetch so callers can
// branch on it without matching error strings. A bot wall is deliberately a
// different outcome than an HTTP error: it should push the caller toward a
// different search strategy rather than an identical retry.
type FetchError struct {
	Outcome    Outcome
	StatusCode int
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Outcome {
	case OutcomeBotWall:
		return fmt.Sprintf("bot wall returned for %s", e.URL)
	case OutcomeHTTPError:
		return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsBotWall reports whether err represents an anti-automation challenge page.
func IsBotWall(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Outcome == OutcomeBotWall
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/120.0.0.0",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.9,en-GB;q=0.8",
	"en-GB,en;q=0.9,en-US;q=0.8",
}

// Strings whose presence in a response body marks a bot challenge page.
var botWallMarkers = []string{"captcha", "robot", "unusual activity", "blocked", "verify you are"}

// Fetcher is the page retrieval dependency of the category scraper.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client issues rate-limited GET requests against the target site with
// header rotation, transient-failure retry and bot-wall detection. The rate
// limiter is shared across every concurrent caller so the aggregate request
// stream never bursts past the configured minimum interval.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	log         *zap.Logger
	metrics     *metrics.Metrics
	maxRetries  int
	backoffBase time.Duration
}

// ClientOptions configures a Client. Zero values take conservative defaults.
type ClientOptions struct {
	Timeout     time.Duration
	MinInterval time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// NewClient creates a fetch client with shared rate limiting and a pool of
// realistic browser identities.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = 1500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	return &Client{
		http:        &http.Client{Timeout: opts.Timeout},
		limiter:     rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		log:         opts.Logger,
		metrics:     opts.Metrics,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
	}
}

// Fetch retrieves url, retrying transient failures (503/429/403, timeouts,
// connection errors) with exponential backoff plus jitter. Bot-wall pages
// wait out a longer pause before the retry; non-retryable HTTP statuses
// return immediately.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleepBackoff(ctx, attempt, lastErr); err != nil {
				return "", err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, err := c.do(ctx, url)
		if err == nil {
			c.metrics.FetchOutcomes.WithLabelValues(OutcomeSuccess.String()).Inc()
			return body, nil
		}
		lastErr = err

		var fe *FetchError
		if errors.As(err, &fe) {
			c.metrics.FetchOutcomes.WithLabelValues(fe.Outcome.String()).Inc()
			if fe.Outcome == OutcomeHTTPError && !retryableStatus(fe.StatusCode) {
				return "", err
			}
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
		c.log.Debug("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Outcome: OutcomeTransport, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgents[int(time.Now().UnixNano())%len(userAgents)])
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &FetchError{Outcome: OutcomeTransport, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Outcome: OutcomeHTTPError, StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Outcome: OutcomeTransport, URL: url, Err: err}
	}

	if isBotWall(body) {
		return "", &FetchError{Outcome: OutcomeBotWall, URL: url}
	}
	return string(body), nil
}

// sleepBackoff waits base*attempt plus jitter, doubled when the previous
// attempt hit a bot wall.
func (c *Client) sleepBackoff(ctx context.Context, attempt int, prev error) error {
	delay := c.backoffBase*time.Duration(attempt) + time.Duration(rand.Int63n(int64(c.backoffBase)/2+1))
	if IsBotWall(prev) {
		delay *= 2
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusServiceUnavailable,
		http.StatusTooManyRequests,
		http.StatusForbidden,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isBotWall(body []byte) bool {
	// Only scan the head of the page: challenge pages are small and a scan of
	// a full product listing would false-positive on review text.
	limit := len(body)
	if limit > 32*1024 {
		limit = 32 * 1024
	}
	head := strings.ToLower(string(body[:limit]))
	for _, marker := range botWallMarkers {
		if strings.Contains(head, marker) {
			return true
		}
	}
	return false
}
