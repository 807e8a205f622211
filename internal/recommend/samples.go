package recommend

import "strings"

// sampleProduct is a hand-authored catalog entry used when scraping and
// ranking both come back empty.
type sampleProduct struct {
	Title  string
	Price  float64
	Rating float64
}

var sampleCatalog = map[string][]sampleProduct{
	"tech": {
		{Title: "Wireless Bluetooth Headphones", Price: 45.99, Rating: 4.2},
		{Title: "Smartphone Stand & Charger", Price: 29.99, Rating: 4.0},
		{Title: "Portable Power Bank 10000mAh", Price: 24.99, Rating: 4.3},
	},
	"sports": {
		{Title: "Running Shoes - Lightweight", Price: 59.99, Rating: 4.1},
		{Title: "Fitness Tracker Watch", Price: 39.99, Rating: 4.0},
		{Title: "Yoga Mat - Non-Slip", Price: 19.99, Rating: 4.4},
	},
	"gaming": {
		{Title: "Gaming Mouse - RGB", Price: 34.99, Rating: 4.2},
		{Title: "Mechanical Gaming Keyboard", Price: 49.99, Rating: 4.1},
		{Title: "Gaming Headset with Mic", Price: 39.99, Rating: 4.0},
	},
	"music": {
		{Title: "Bluetooth Speaker - Portable", Price: 35.99, Rating: 4.3},
		{Title: "Guitar Tuner - Digital", Price: 15.99, Rating: 4.1},
		{Title: "Studio Headphones", Price: 49.99, Rating: 4.2},
	},
}

var sampleBucketKeywords = []struct {
	bucket   string
	keywords []string
}{
	{"tech", []string{"tech", "technology", "electronic", "computer", "phone"}},
	{"sports", []string{"sport", "fitness", "running", "exercise", "workout"}},
	{"gaming", []string{"game", "gaming", "console", "controller"}},
	{"music", []string{"music", "audio", "sound", "speaker"}},
}

const (
	samplePlaceholderImage = "/placeholder.svg"
	sampleStoreURL         = "https://www.amazon.com"
)

// sampleProducts picks the catalog bucket best matching the shopper: the
// request text decides first, then interests, then favorite categories, with
// tech as the default bucket.
func sampleProducts(shoppingRequest, interests string, favorites []string) []sampleProduct {
	for _, text := range []string{shoppingRequest, interests, strings.Join(favorites, " ")} {
		if bucket := matchSampleBucket(text); bucket != "" {
			return sampleCatalog[bucket]
		}
	}
	return sampleCatalog["tech"]
}

func matchSampleBucket(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range sampleBucketKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.bucket
			}
		}
	}
	return ""
}
