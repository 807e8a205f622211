// Package recommend assembles the final recommendation payload from scraped
// candidates and the model's ranked answer, degrading through scraped-only
// and sample-catalog fallbacks so a request always yields a product list.
package recommend

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/ranking"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
)

// Item is one product in the final response payload.
type Item struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Image     string  `json:"image"`
	BuyURL    string  `json:"buyUrl"`
	Category  string  `json:"category"`
	Rating    float64 `json:"rating"`
	Reasoning string  `json:"reasoning"`
}

const (
	genericReasoning = "Product recommendation based on your preferences"
	sampleReasoning  = "Sample product based on your interests"
	sampleNote       = "Using sample products due to temporary scraping issues"
)

// Assembler merges AI-ranked entries with scraped candidate data.
type Assembler struct {
	maxItems int
	log      *zap.Logger
}

func NewAssembler(maxItems int, log *zap.Logger) *Assembler {
	if maxItems <= 0 {
		maxItems = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{maxItems: maxItems, log: log}
}

// Assemble builds the final item list. Ranked entries that match a scraped
// candidate take the candidate's fields, since scraped data is authoritative
// over whatever the model asserted; the AI contributes only the reasoning.
// Unmatched entries and leftover candidates pad the list up to the limit,
// and a hand-authored sample set covers the case where nothing survived at
// all. The returned note is non-empty on the sample fallback path.
func (a *Assembler) Assemble(rankedText string, candidates []scraper.Candidate, user ranking.UserContext, currency string) ([]Item, string) {
	ranked := ranking.ParseRecommendations(rankedText)

	index := newCandidateIndex(candidates)
	items := make([]Item, 0, a.maxItems)

	matchedEntry := make([]bool, len(ranked))
	for i, entry := range ranked {
		if len(items) >= a.maxItems {
			break
		}
		if cand, ok := index.match(entry.Title); ok {
			matchedEntry[i] = true
			items = append(items, itemFromCandidate(cand, currency, "Recommended", entry.Reasoning))
		}
	}

	if len(items) < a.maxItems {
		for i, entry := range ranked {
			if len(items) >= a.maxItems {
				break
			}
			if matchedEntry[i] {
				continue
			}
			items = append(items, Item{
				Name:      entry.Title,
				Price:     entry.Price,
				Currency:  currency,
				Image:     orPlaceholder(entry.ImageURL),
				BuyURL:    entry.URL,
				Category:  "Recommended",
				Rating:    entry.Rating,
				Reasoning: entry.Reasoning,
			})
		}
	}

	if len(items) < a.maxItems {
		for _, cand := range candidates {
			if len(items) >= a.maxItems {
				break
			}
			if index.used[cand.URL] {
				continue
			}
			index.used[cand.URL] = true
			items = append(items, itemFromCandidate(cand, currency, "General", genericReasoning))
		}
	}

	note := ""
	if len(items) == 0 {
		a.log.Warn("no products survived assembly, serving sample catalog")
		items = a.sampleItems(user, currency)
		note = sampleNote
	}

	for i := range items {
		items[i].ID = strconv.Itoa(i + 1)
	}
	return items, note
}

func (a *Assembler) sampleItems(user ranking.UserContext, currency string) []Item {
	samples := sampleProducts(user.ShoppingRequest, user.Interests, user.FavoriteCategories)
	items := make([]Item, 0, len(samples))
	for _, s := range samples {
		items = append(items, Item{
			Name:      s.Title,
			Price:     s.Price,
			Currency:  currency,
			Image:     samplePlaceholderImage,
			BuyURL:    sampleStoreURL,
			Category:  "Sample",
			Rating:    s.Rating,
			Reasoning: sampleReasoning,
		})
	}
	return items
}

func itemFromCandidate(cand scraper.Candidate, currency, category, reasoning string) Item {
	item := Item{
		Name:      cand.Title,
		Currency:  currency,
		Image:     orPlaceholder(cand.ImageURL),
		BuyURL:    cand.URL,
		Category:  category,
		Reasoning: reasoning,
	}
	if cand.PriceValue != nil {
		item.Price = *cand.PriceValue
	}
	if cand.Rating != nil {
		item.Rating = clampRating(*cand.Rating)
	}
	return item
}

// candidateIndex resolves ranked titles back to scraped candidates: exact
// case-insensitive match first, then the candidate sharing the most words
// with the ranked title. A candidate matches at most one ranked entry.
type candidateIndex struct {
	byTitle    map[string]scraper.Candidate
	candidates []scraper.Candidate
	used       map[string]bool
}

func newCandidateIndex(candidates []scraper.Candidate) *candidateIndex {
	idx := &candidateIndex{
		byTitle:    make(map[string]scraper.Candidate, len(candidates)),
		candidates: candidates,
		used:       make(map[string]bool, len(candidates)),
	}
	for _, cand := range candidates {
		key := strings.ToLower(strings.TrimSpace(cand.Title))
		if _, exists := idx.byTitle[key]; !exists {
			idx.byTitle[key] = cand
		}
	}
	return idx
}

func (idx *candidateIndex) match(title string) (scraper.Candidate, bool) {
	key := strings.ToLower(strings.TrimSpace(title))
	if key == "" {
		return scraper.Candidate{}, false
	}
	if cand, ok := idx.byTitle[key]; ok && !idx.used[cand.URL] {
		idx.used[cand.URL] = true
		return cand, true
	}

	titleWords := wordSet(key)
	var best scraper.Candidate
	bestOverlap := 0
	for _, cand := range idx.candidates {
		if idx.used[cand.URL] {
			continue
		}
		overlap := 0
		for word := range wordSet(strings.ToLower(cand.Title)) {
			if _, ok := titleWords[word]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = cand, overlap
		}
	}
	if bestOverlap == 0 {
		return scraper.Candidate{}, false
	}
	idx.used[best.URL] = true
	return best, true
}

func wordSet(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(text) {
		words[strings.Trim(w, ".,()-")] = struct{}{}
	}
	return words
}

func orPlaceholder(image string) string {
	if image == "" {
		return samplePlaceholderImage
	}
	return image
}

func clampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}
