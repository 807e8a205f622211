package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/ranking"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
)

func candidate(title, url string, priceValue float64, rating float64) scraper.Candidate {
	return scraper.Candidate{
		Title:      title,
		URL:        url,
		ImageURL:   "https://m.media.example/" + url[len(url)-3:] + ".jpg",
		PriceValue: &priceValue,
		Rating:     &rating,
	}
}

const rankedTwo = `Product: Sony WH-1000XM5 Wireless Headphones
URL: https://ai.example/wrong-url
Price: $999.99
Rating: 1.0
Image URL: https://ai.example/wrong.jpg
Reasoning: Best noise cancellation in class.

Product: Unknown Mystery Gadget
URL: https://ai.example/mystery
Price: $12.00
Rating: 4.0
Image URL: https://ai.example/mystery.jpg
Reasoning: An invented extra the scraper never saw.`

func TestAssembleScrapedFieldsAreAuthoritative(t *testing.T) {
	candidates := []scraper.Candidate{
		candidate("Sony WH-1000XM5 Wireless Headphones", "https://www.amazon.com/dp/B09", 279.00, 4.7),
	}

	items, note := NewAssembler(10, nil).Assemble(rankedTwo, candidates, ranking.UserContext{}, "$")
	require.NotEmpty(t, items)
	assert.Empty(t, note)

	first := items[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Sony WH-1000XM5 Wireless Headphones", first.Name)
	assert.Equal(t, 279.00, first.Price, "price must come from scraped data, not the model")
	assert.Equal(t, "https://www.amazon.com/dp/B09", first.BuyURL)
	assert.Equal(t, 4.7, first.Rating)
	assert.Equal(t, "Recommended", first.Category)
	assert.Equal(t, "Best noise cancellation in class.", first.Reasoning)
}

func TestAssembleAppendsUnmatchedEntriesAndLeftovers(t *testing.T) {
	candidates := []scraper.Candidate{
		candidate("Sony WH-1000XM5 Wireless Headphones", "https://www.amazon.com/dp/B09", 279.00, 4.7),
		candidate("Logitech MX Master 3S", "https://www.amazon.com/dp/B0B", 99.99, 4.8),
	}

	items, note := NewAssembler(10, nil).Assemble(rankedTwo, candidates, ranking.UserContext{}, "$")
	require.Len(t, items, 3)
	assert.Empty(t, note)

	assert.Equal(t, "Sony WH-1000XM5 Wireless Headphones", items[0].Name)

	assert.Equal(t, "Unknown Mystery Gadget", items[1].Name)
	assert.Equal(t, "https://ai.example/mystery", items[1].BuyURL, "unmatched entries keep the model's fields")
	assert.Equal(t, 12.00, items[1].Price)

	assert.Equal(t, "Logitech MX Master 3S", items[2].Name)
	assert.Equal(t, "General", items[2].Category)
	assert.Equal(t, genericReasoning, items[2].Reasoning)

	for i, item := range items {
		assert.Equal(t, "$", item.Currency)
		assert.NotEmpty(t, item.ID, "item %d missing id", i)
	}
}

func TestAssemblePartialTitleMatchByWordOverlap(t *testing.T) {
	candidates := []scraper.Candidate{
		candidate("Anker Soundcore Life Q30 Hybrid Active Noise Cancelling Headphones", "https://www.amazon.com/dp/B0C", 59.99, 4.5),
		candidate("Cast Iron Skillet 12 Inch", "https://www.amazon.com/dp/B0D", 29.99, 4.6),
	}
	ranked := `Product: Anker Soundcore Life Q30
URL: https://ai.example/anker
Reasoning: Strong value pick.`

	items, _ := NewAssembler(10, nil).Assemble(ranked, candidates, ranking.UserContext{}, "$")
	require.NotEmpty(t, items)
	assert.Equal(t, "Anker Soundcore Life Q30 Hybrid Active Noise Cancelling Headphones", items[0].Name)
	assert.Equal(t, "https://www.amazon.com/dp/B0C", items[0].BuyURL)
	assert.Equal(t, "Strong value pick.", items[0].Reasoning)
}

func TestAssembleRespectsItemLimit(t *testing.T) {
	var candidates []scraper.Candidate
	for _, c := range []struct{ title, url string }{
		{"Widget One", "https://www.amazon.com/dp/001"},
		{"Widget Two", "https://www.amazon.com/dp/002"},
		{"Widget Three", "https://www.amazon.com/dp/003"},
	} {
		candidates = append(candidates, candidate(c.title, c.url, 10, 4.0))
	}

	items, _ := NewAssembler(2, nil).Assemble("", candidates, ranking.UserContext{}, "$")
	assert.Len(t, items, 2)
}

func TestAssembleEmptyEverythingServesSamples(t *testing.T) {
	items, note := NewAssembler(10, nil).Assemble("", nil, ranking.UserContext{
		ShoppingRequest: "new gaming controller",
	}, "£")

	require.NotEmpty(t, items)
	assert.Equal(t, sampleNote, note)
	for _, item := range items {
		assert.Equal(t, "Sample", item.Category)
		assert.Equal(t, "£", item.Currency)
		assert.Equal(t, sampleReasoning, item.Reasoning)
	}
	assert.Equal(t, "Gaming Mouse - RGB", items[0].Name, "bucket should follow the request text")
}

func TestAssembleSampleBucketFallsBackThroughProfile(t *testing.T) {
	items, _ := NewAssembler(10, nil).Assemble("", nil, ranking.UserContext{
		ShoppingRequest:    "a nice gift",
		Interests:          "running and fitness",
		FavoriteCategories: []string{"Gaming & Consoles"},
	}, "$")
	require.NotEmpty(t, items)
	assert.Equal(t, "Running Shoes - Lightweight", items[0].Name, "interests decide when the request has no signal")

	items, _ = NewAssembler(10, nil).Assemble("", nil, ranking.UserContext{ShoppingRequest: "anything"}, "$")
	require.NotEmpty(t, items)
	assert.Equal(t, "Wireless Bluetooth Headphones", items[0].Name, "default bucket is tech")
}

func TestAssembleMalformedRankingDegradesToScraped(t *testing.T) {
	candidates := []scraper.Candidate{
		candidate("Desk Lamp LED", "https://www.amazon.com/dp/B0E", 22.50, 4.4),
	}

	items, note := NewAssembler(10, nil).Assemble("the model rambled with no structure", candidates, ranking.UserContext{}, "$")
	require.Len(t, items, 1)
	assert.Empty(t, note)
	assert.Equal(t, "Desk Lamp LED", items[0].Name)
	assert.Equal(t, genericReasoning, items[0].Reasoning)
}
