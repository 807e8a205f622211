package recommend

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/aggregate"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/metrics"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/ranking"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/session"
)

// ShoppingInput is the per-request shopping form submitted alongside the
// stored profile.
type ShoppingInput struct {
	Occasion        string `json:"occasion"`
	PreferredBrands string `json:"brandsPreferred"`
	ShoppingRequest string `json:"shoppingInput"`
}

// Response is the final recommendation payload.
type Response struct {
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
	Products   []Item   `json:"products"`
	Note       string   `json:"note,omitempty"`
}

// Ranker is the generative side of the pipeline.
type Ranker interface {
	Categories(ctx context.Context, user ranking.UserContext) ([]string, error)
	Rank(ctx context.Context, user ranking.UserContext, products []scraper.Candidate) (string, error)
}

// Aggregator runs the category scrapes.
type Aggregator interface {
	Run(ctx context.Context, reqs []scraper.Request) aggregate.Result
}

// Options tunes the recommendation pipeline.
type Options struct {
	MaxCategories         int
	CandidatesPerCategory int
	MaxRankedProducts     int
	Logger                *zap.Logger
	Metrics               *metrics.Metrics
}

// Service drives the whole pipeline: derive categories, scrape them
// concurrently, rank the survivors and assemble the response. Every stage
// degrades instead of failing, so the service returns a product list for any
// input.
type Service struct {
	ranker     Ranker
	aggregator Aggregator
	assembler  *Assembler
	opts       Options
}

func NewService(ranker Ranker, aggregator Aggregator, assembler *Assembler, opts Options) *Service {
	if opts.MaxCategories <= 0 {
		opts.MaxCategories = 3
	}
	if opts.CandidatesPerCategory <= 0 {
		opts.CandidatesPerCategory = 3
	}
	if opts.MaxRankedProducts <= 0 {
		opts.MaxRankedProducts = 8
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	return &Service{ranker: ranker, aggregator: aggregator, assembler: assembler, opts: opts}
}

// Recommend produces the recommendation payload for one shopper.
func (s *Service) Recommend(ctx context.Context, profile session.Profile, input ShoppingInput) Response {
	user := userContext(profile, input)
	log := s.opts.Logger.With(zap.String("request", input.ShoppingRequest))

	categories, degraded := s.deriveCategories(ctx, user, log)

	marketplace := scraper.MarketplaceFor(profile.Location)
	budget := scraper.ParseBudgetRange(profile.BudgetRange)

	reqs := make([]scraper.Request, 0, len(categories))
	for _, category := range categories {
		reqs = append(reqs, scraper.Request{
			Category:        category,
			Domain:          marketplace.Domain,
			DesiredCount:    s.opts.CandidatesPerCategory,
			Budget:          budget,
			PreferredBrands: user.PreferredBrands,
		})
	}

	agg := s.aggregator.Run(ctx, reqs)
	candidates := collectCandidates(agg, s.opts.MaxRankedProducts)
	log.Info("aggregation finished",
		zap.Int("categories", len(categories)),
		zap.Int("successful", agg.Successful),
		zap.Int("candidates", len(candidates)))

	rankedText := ""
	if len(candidates) > 0 {
		text, err := s.ranker.Rank(ctx, user, candidates)
		if err != nil {
			log.Warn("ranking unavailable, serving scraped order", zap.Error(err))
			degraded = true
		} else {
			rankedText = text
		}
	}

	items, note := s.assembler.Assemble(rankedText, candidates, user, marketplace.Currency)

	result := "ok"
	if degraded || note != "" {
		result = "degraded"
	}
	s.opts.Metrics.Recommendations.WithLabelValues(result).Inc()

	return Response{
		Status:     "success",
		Categories: categories,
		Products:   items,
		Note:       note,
	}
}

// deriveCategories asks the model for categories and falls back to the
// curated list when the call fails or returns nothing usable. The second
// return reports whether the fallback was taken.
func (s *Service) deriveCategories(ctx context.Context, user ranking.UserContext, log *zap.Logger) ([]string, bool) {
	raw, err := s.ranker.Categories(ctx, user)
	if err != nil {
		log.Warn("category derivation failed, using curated list", zap.Error(err))
		return ranking.DefaultCategories(s.opts.MaxCategories), true
	}
	categories := ranking.Prioritize(ranking.CleanCategories(raw), user.ShoppingRequest, user.PreferredBrands)
	if len(categories) == 0 {
		log.Warn("model returned no usable categories, using curated list")
		return ranking.DefaultCategories(s.opts.MaxCategories), true
	}
	if len(categories) > s.opts.MaxCategories {
		categories = categories[:s.opts.MaxCategories]
	}
	return categories, false
}

// collectCandidates flattens successful category results preserving the
// dispatch order, capped for the ranking prompt.
func collectCandidates(agg aggregate.Result, limit int) []scraper.Candidate {
	var out []scraper.Candidate
	for _, category := range agg.Categories {
		r, ok := agg.Results[category]
		if !ok {
			continue
		}
		for _, cand := range r.Candidates {
			if cand.Title == "" || cand.URL == "" {
				continue
			}
			if len(out) >= limit {
				return out
			}
			out = append(out, cand)
		}
	}
	return out
}

func userContext(profile session.Profile, input ShoppingInput) ranking.UserContext {
	return ranking.UserContext{
		ShoppingRequest:    input.ShoppingRequest,
		Occasion:           input.Occasion,
		PreferredBrands:    splitBrands(input.PreferredBrands),
		Location:           profile.Location,
		Age:                profile.Age,
		Gender:             profile.Gender,
		BudgetRange:        profile.BudgetRange,
		FavoriteCategories: profile.FavoriteCategories,
		Interests:          profile.Interests,
	}
}

func splitBrands(raw string) []string {
	var brands []string
	for _, brand := range strings.Split(raw, ",") {
		if b := strings.TrimSpace(brand); b != "" {
			brands = append(brands, b)
		}
	}
	return brands
}
