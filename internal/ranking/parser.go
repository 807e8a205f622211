package ranking

import (
	"strings"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/price"
)

// RankedItem is one entry parsed from the model's block-formatted answer.
type RankedItem struct {
	Title     string
	URL       string
	Price     float64
	Rating    float64
	ImageURL  string
	Reasoning string
}

const defaultRating = 4.0

// ParseRecommendations turns the model's labeled block output into structured
// items. A block starts at a "Product:" line and ends at the next one or at
// end of text. Blocks missing a title, URL or reasoning are dropped; unknown
// labels inside a block are skipped. Reasoning text may continue over
// multiple lines until the next label or block.
func ParseRecommendations(text string) []RankedItem {
	var items []RankedItem
	var current *RankedItem
	inReasoning := false

	flush := func() {
		if current != nil && current.Title != "" && current.URL != "" && current.Reasoning != "" {
			items = append(items, *current)
		}
		current = nil
		inReasoning = false
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.Trim(strings.TrimSpace(rawLine), "*"))

		label, value, labeled := splitLabel(line)
		if labeled && label == "Product" {
			flush()
			current = &RankedItem{Title: value, Rating: defaultRating}
			continue
		}
		if current == nil {
			continue
		}

		if labeled {
			inReasoning = false
			switch label {
			case "URL":
				current.URL = value
			case "Price":
				if v, ok := price.Parse(value); ok {
					current.Price = v
				}
			case "Rating":
				current.Rating = parseItemRating(value)
			case "Image URL":
				current.ImageURL = value
			case "Reasoning":
				current.Reasoning = value
				inReasoning = true
			default:
				// Labels like "Category Match" or "Selection Type" are
				// ignored without ending the block.
			}
			continue
		}

		if inReasoning && line != "" {
			current.Reasoning = strings.TrimSpace(current.Reasoning + " " + line)
		}
	}
	flush()
	return items
}

// splitLabel parses "Label: value" lines. Only known single-word labels plus
// "Image URL" and the block metadata labels qualify, so reasoning sentences
// containing colons stay part of the reasoning. Markdown bold around the label
// leaves stray asterisks on both sides of the colon, so each side sheds them.
func splitLabel(line string) (label, value string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", false
	}
	label = strings.TrimSpace(strings.Trim(strings.TrimSpace(line[:i]), "*"))
	switch label {
	case "Product", "URL", "Price", "Rating", "Image URL", "Reasoning",
		"Category Match", "Selection Type":
		value = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line[i+1:]), "*"))
		return label, value, true
	}
	return "", "", false
}

// parseItemRating reads a rating value, clamps it into [0, 5] and falls back
// to a neutral default when the text is unparseable.
func parseItemRating(text string) float64 {
	v, ok := price.Parse(text)
	if !ok {
		return defaultRating
	}
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}
