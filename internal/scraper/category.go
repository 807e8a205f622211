package scraper

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/metrics"
)

// BudgetRange is an inclusive price window. Candidates with a known price
// outside [Low, High] are excluded; candidates without a parseable price are
// kept so a missing price tag never hides an otherwise good match.
type BudgetRange struct {
	Low  float64
	High float64
}

// Contains reports whether a known price falls inside the window.
func (b BudgetRange) Contains(value float64) bool {
	return value >= b.Low && value <= b.High
}

// ParseBudgetRange parses user budget text such as "£20-100" or "$50 - $200".
// It returns nil for empty or unparseable input rather than an error: a
// malformed budget degrades to an unfiltered search.
func ParseBudgetRange(text string) *BudgetRange {
	cleaned := strings.TrimSpace(text)
	for _, symbol := range []string{"£", "€", "$", ","} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	parts := strings.SplitN(cleaned, "-", 2)
	if len(parts) != 2 {
		return nil
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil
	}
	if high < low {
		low, high = high, low
	}
	return &BudgetRange{Low: low, High: high}
}

// Request describes one category scrape.
type Request struct {
	Category        string
	Domain          string
	DesiredCount    int
	Budget          *BudgetRange
	PreferredBrands []string
}

// CategoryScraper runs the search strategies for a single category against a
// storefront and scores what comes back.
type CategoryScraper struct {
	fetcher Fetcher
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewCategoryScraper(fetcher Fetcher, log *zap.Logger, m *metrics.Metrics) *CategoryScraper {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &CategoryScraper{fetcher: fetcher, log: log, metrics: m}
}

// Scrape tries each search strategy in order until one yields candidates.
// The result is StatusSuccess when the first strategy that produced
// candidates is also the first attempted, StatusPartialFailure when earlier
// strategies errored or came back empty, and StatusFailed when every
// strategy was exhausted.
func (s *CategoryScraper) Scrape(ctx context.Context, req Request) CategoryResult {
	result := CategoryResult{Category: req.Category, Status: StatusFailed}
	degraded := false

	for _, searchURL := range s.searchURLs(req) {
		if ctx.Err() != nil {
			break
		}
		html, err := s.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			s.log.Warn("search strategy failed",
				zap.String("category", req.Category),
				zap.String("url", searchURL),
				zap.Error(err))
			degraded = true
			continue
		}
		candidates := ExtractListings(html, req.Domain, req.Category)
		if len(candidates) == 0 {
			degraded = true
			continue
		}
		kept := s.scoreAndFilter(candidates, req)
		if len(kept) == 0 {
			degraded = true
			continue
		}
		s.enrich(ctx, kept)
		result.Candidates = s.scoreAndFilter(kept, req)
		if len(result.Candidates) == 0 {
			degraded = true
			continue
		}
		if degraded {
			result.Status = StatusPartialFailure
		} else {
			result.Status = StatusSuccess
		}
		break
	}

	s.metrics.CategoryScrapes.WithLabelValues(result.Status.String()).Inc()
	return result
}

// enrich visits the product detail page of selected candidates whose listing
// row carried no price and fills in what the page offers. Errors are ignored;
// an unenriched candidate is still usable. Callers must re-filter afterwards:
// a price learned here can fall outside the budget window.
func (s *CategoryScraper) enrich(ctx context.Context, candidates []Candidate) {
	for i := range candidates {
		if candidates[i].PriceKnown() {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		html, err := s.fetcher.Fetch(ctx, candidates[i].URL)
		if err != nil {
			continue
		}
		page, ok := ExtractProductPage(html)
		if !ok {
			continue
		}
		if page.PriceValue != nil {
			candidates[i].PriceValue = page.PriceValue
			candidates[i].PriceDisplay = page.PriceDisplay
		}
		if candidates[i].ImageURL == "" {
			candidates[i].ImageURL = page.ImageURL
		}
		if candidates[i].Rating == nil && page.Rating != nil {
			candidates[i].Rating = page.Rating
		}
	}
}

// searchURLs builds the strategy list: relevance biased by review rank, then
// best sellers, then the plain query. When the user named brands, the first
// brand is folded into the query text so brand matches surface earlier.
func (s *CategoryScraper) searchURLs(req Request) []string {
	query := req.Category
	if len(req.PreferredBrands) > 0 {
		query = req.PreferredBrands[0] + " " + query
	}

	base := "https://" + CanonicalHost(req.Domain) + "/s?k=" + url.QueryEscape(query)

	var priceFilter string
	if req.Budget != nil {
		priceFilter = fmt.Sprintf("&low-price=%.0f&high-price=%.0f", req.Budget.Low, req.Budget.High)
	}

	return []string{
		base + "&s=review-rank" + priceFilter,
		base + "&s=best-sellers" + priceFilter,
		base + priceFilter,
	}
}

// scoreAndFilter applies the budget window, scores every surviving candidate
// and returns them ordered by score descending, truncated to the requested
// count.
func (s *CategoryScraper) scoreAndFilter(candidates []Candidate, req Request) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if req.Budget != nil && cand.PriceKnown() && !req.Budget.Contains(*cand.PriceValue) {
			continue
		}
		cand.Score = brandScore(cand.Title, req.PreferredBrands) + budgetScore(cand.PriceValue, req.Budget)
		kept = append(kept, cand)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	limit := req.DesiredCount
	if limit <= 0 || limit > len(kept) {
		limit = len(kept)
	}
	return kept[:limit]
}

// brandScore awards the strongest matching tier across the preferred brands:
// 15 when the detected brand equals a preference, 10 when the full brand name
// appears in the title, 5 when any word of the brand does.
func brandScore(title string, brands []string) float64 {
	if len(brands) == 0 {
		return 0
	}
	lowerTitle := strings.ToLower(title)
	titleWords := map[string]struct{}{}
	for _, word := range strings.Fields(lowerTitle) {
		titleWords[strings.Trim(word, ".,()")] = struct{}{}
	}
	detected := strings.ToLower(detectBrand(title))

	best := 0.0
	for _, brand := range brands {
		lowerBrand := strings.ToLower(strings.TrimSpace(brand))
		if lowerBrand == "" {
			continue
		}
		switch {
		case detected != "" && detected == lowerBrand:
			best = max(best, 15)
		case strings.Contains(lowerTitle, lowerBrand):
			best = max(best, 10)
		default:
			for _, word := range strings.Fields(lowerBrand) {
				if _, ok := titleWords[word]; ok {
					best = max(best, 5)
					break
				}
			}
		}
	}
	return best
}

// budgetScore rewards prices near the midpoint of the budget window, scaling
// linearly from 5 at the midpoint to 0 at either edge. Unknown prices score 0.
func budgetScore(value *float64, budget *BudgetRange) float64 {
	if value == nil || budget == nil {
		return 0
	}
	mid := (budget.Low + budget.High) / 2
	halfSpan := (budget.High - budget.Low) / 2
	if halfSpan == 0 {
		if *value == mid {
			return 5
		}
		return 0
	}
	distance := *value - mid
	if distance < 0 {
		distance = -distance
	}
	bonus := 5 * (1 - distance/halfSpan)
	if bonus < 0 {
		return 0
	}
	return bonus
}

// detectBrand guesses a brand from a listing title: the first word that
// starts with an upper-case letter. It is a scoring heuristic only and never
// surfaces in output.
func detectBrand(title string) string {
	for _, word := range strings.Fields(title) {
		runes := []rune(word)
		if len(runes) > 0 && unicode.IsUpper(runes[0]) {
			return strings.Trim(word, ".,()")
		}
	}
	return ""
}
