// Package ranking talks to the Gemini generative API: it derives shopping
// categories from a user profile and re-ranks scraped products into a final
// recommendation list.
package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/metrics"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// UserContext carries everything the prompts know about the shopper.
type UserContext struct {
	ShoppingRequest    string
	Occasion           string
	PreferredBrands    []string
	Location           string
	Age                string
	Gender             string
	BudgetRange        string
	FavoriteCategories []string
	Interests          string
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Options configures a Client. BaseURL exists for tests; production use
// leaves it empty.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewClient(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Categories asks the model for product categories matching the shopper and
// returns them as cleaned names, most relevant first.
func (c *Client) Categories(ctx context.Context, user UserContext) ([]string, error) {
	text, err := c.generate(ctx, categoriesPrompt(user))
	c.metrics.RankingCalls.WithLabelValues("categories", callOutcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("derive categories: %w", err)
	}

	var categories []string
	for _, line := range strings.Split(text, "\n") {
		category := strings.Trim(line, "0123456789. \t-")
		if category != "" {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

// Rank sends the scraped candidates through the recommendation prompt and
// returns the model's raw block-formatted answer for parsing.
func (c *Client) Rank(ctx context.Context, user UserContext, products []scraper.Candidate) (string, error) {
	text, err := c.generate(ctx, rankPrompt(user, products))
	c.metrics.RankingCalls.WithLabelValues("rank", callOutcome(err)).Inc()
	if err != nil {
		return "", fmt.Errorf("rank products: %w", err)
	}
	return text, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("generate content: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func callOutcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
