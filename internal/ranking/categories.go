package ranking

import (
	"regexp"
	"strings"
)

// requestKeywords maps a request theme to the keywords that signal it in the
// shopper's free-text request. The theme with the most keyword hits drives
// category prioritization.
var requestKeywords = map[string][]string{
	"music":      {"music", "song", "album", "artist", "band", "vinyl", "cd", "headphones", "speaker", "audio"},
	"gaming":     {"game", "gaming", "console", "controller", "headset", "pc gaming", "playstation", "xbox", "nintendo"},
	"sports":     {"sport", "basketball", "football", "cricket", "fitness", "exercise", "workout", "training", "athletic"},
	"tech":       {"tech", "technology", "computer", "laptop", "phone", "tablet", "gadget", "electronic"},
	"fashion":    {"clothes", "fashion", "clothing", "shirt", "dress", "shoes", "sneakers", "outfit", "style"},
	"books":      {"book", "reading", "novel", "textbook", "kindle", "ebook", "literature", "author"},
	"home":       {"home", "kitchen", "furniture", "decor", "appliance", "garden", "outdoor", "household"},
	"automotive": {"car", "automotive", "vehicle", "maintenance", "parts", "tools"},
	"beauty":     {"beauty", "makeup", "skincare", "cosmetic", "perfume", "lotion", "cream"},
	"food":       {"food", "cooking", "recipe", "ingredient", "snack", "beverage", "drink"},
	"pet":        {"pet", "dog", "cat", "animal", "pet food"},
	"baby":       {"baby", "infant", "toddler", "diaper"},
	"office":     {"office", "work", "desk", "stationery", "paper", "pen", "notebook"},
	"travel":     {"travel", "luggage", "backpack", "suitcase", "trip", "vacation"},
	"art":        {"art", "craft", "painting", "drawing", "creative", "diy", "hobby"},
}

// defaultCategories is the curated fallback used when the model cannot be
// reached or returns nothing usable.
var defaultCategories = []string{
	"Audio & Headphones",
	"Smart Home Devices",
	"Fitness Equipment",
	"Books & E-readers",
	"Kitchen & Dining",
	"Outdoor Gear",
	"Video Games",
	"Watches & Jewelry",
	"Art Supplies",
	"Coffee & Tea",
}

var (
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)
	egPattern            = regexp.MustCompile(`\s*e\.g\.,?\s*`)
	spacesPattern        = regexp.MustCompile(`\s{2,}`)
)

// CleanCategories strips bullet noise from model-produced category names:
// markdown emphasis, parenthetical brand examples, "e.g." fragments. Names
// shorter than three characters after cleaning are dropped.
func CleanCategories(raw []string) []string {
	cleaned := make([]string, 0, len(raw))
	for _, category := range raw {
		name := strings.ReplaceAll(category, "*", "")
		name = parentheticalPattern.ReplaceAllString(name, "")
		name = egPattern.ReplaceAllString(name, " ")
		name = spacesPattern.ReplaceAllString(name, " ")
		name = strings.TrimSpace(name)
		if len(name) > 2 {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

// Prioritize reorders categories so the most relevant come first: categories
// naming a preferred brand lead, otherwise categories matching the dominant
// theme of the shopping request lead. Relative order inside each group is
// preserved.
func Prioritize(categories []string, shoppingRequest string, preferredBrands []string) []string {
	if len(categories) == 0 {
		return categories
	}

	if len(preferredBrands) > 0 {
		branded, rest := partition(categories, func(category string) bool {
			lower := strings.ToLower(category)
			for _, brand := range preferredBrands {
				b := strings.ToLower(strings.TrimSpace(brand))
				if b != "" && strings.Contains(lower, b) {
					return true
				}
			}
			return false
		})
		if len(branded) > 0 {
			return append(branded, rest...)
		}
	}

	theme := dominantTheme(shoppingRequest)
	if theme == "" {
		return categories
	}
	keywords := requestKeywords[theme]
	themed, rest := partition(categories, func(category string) bool {
		lower := strings.ToLower(category)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
		return false
	})
	return append(themed, rest...)
}

// DefaultCategories returns a copy of the curated fallback list capped at
// limit.
func DefaultCategories(limit int) []string {
	if limit <= 0 || limit > len(defaultCategories) {
		limit = len(defaultCategories)
	}
	out := make([]string, limit)
	copy(out, defaultCategories[:limit])
	return out
}

// dominantTheme scores every theme by keyword hits in the request text and
// returns the best scorer, empty when nothing matches. Ties break
// alphabetically so the result is stable.
func dominantTheme(shoppingRequest string) string {
	lower := strings.ToLower(shoppingRequest)
	best, bestScore := "", 0
	for theme, keywords := range requestKeywords {
		score := 0
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && theme < best) {
			best, bestScore = theme, score
		}
	}
	return best
}

func partition(items []string, match func(string) bool) (hit, miss []string) {
	for _, item := range items {
		if match(item) {
			hit = append(hit, item)
		} else {
			miss = append(miss, item)
		}
	}
	return hit, miss
}
