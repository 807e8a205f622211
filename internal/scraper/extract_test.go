package scraper

import (
	"fmt"
	"strings"
	"testing"
)

func listingRow(href, title, priceText, ratingText, img string) string {
	return fmt.Sprintf(`
	<div data-component-type="s-search-result">
		<h2><a class="a-link-normal s-no-outline" href=%q><span>%s</span></a></h2>
		<span class="a-price"><span class="a-offscreen">%s</span></span>
		<span class="a-icon-alt">%s</span>
		<img class="s-image" src=%q/>
	</div>`, href, title, priceText, ratingText, img)
}

func searchPage(rows ...string) string {
	return `<html><body><div class="s-main-slot">` + strings.Join(rows, "\n") + `</div></body></html>`
}

func TestExtractListings(t *testing.T) {
	html := searchPage(
		listingRow("/Sony-WH-1000XM5/dp/B09XS7JWHH?ref=sr_1_1", "Sony WH-1000XM5 Wireless Headphones", "£279.00", "4.7 out of 5 stars", "https://m.media.example/sony.jpg"),
		listingRow("/Anker-Soundcore/dp/B0BTYCRJSS", "Anker Soundcore Life Q30", "£59.99", "4.5 out of 5 stars", "https://m.media.example/anker.jpg"),
	)

	got := ExtractListings(html, "amazon.co.uk", "headphones")
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	first := got[0]
	if first.Title != "Sony WH-1000XM5 Wireless Headphones" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.URL != "https://www.amazon.co.uk/Sony-WH-1000XM5/dp/B09XS7JWHH" {
		t.Errorf("expected normalized URL without query string, got %q", first.URL)
	}
	if first.PriceDisplay != "£279.00" {
		t.Errorf("unexpected price display: %q", first.PriceDisplay)
	}
	if first.PriceValue == nil || *first.PriceValue != 279.00 {
		t.Errorf("unexpected price value: %v", first.PriceValue)
	}
	if first.Rating == nil || *first.Rating != 4.7 {
		t.Errorf("unexpected rating: %v", first.Rating)
	}
	if first.ImageURL != "https://m.media.example/sony.jpg" {
		t.Errorf("unexpected image: %q", first.ImageURL)
	}
	if first.SourceCategory != "headphones" {
		t.Errorf("unexpected category: %q", first.SourceCategory)
	}
}

func TestExtractListingsDeduplicatesByNormalizedURL(t *testing.T) {
	html := searchPage(
		listingRow("/Widget/dp/B000000001?tag=one", "Widget Pro", "$10.00", "4.0 out of 5 stars", ""),
		listingRow("/Widget/dp/B000000001?tag=two", "Widget Pro Sponsored", "$10.00", "4.0 out of 5 stars", ""),
	)

	got := ExtractListings(html, "amazon.com", "widgets")
	if len(got) != 1 {
		t.Fatalf("expected duplicate URL to collapse, got %d candidates", len(got))
	}
}

func TestExtractListingsSkipsRowsMissingTitleOrLink(t *testing.T) {
	noTitle := `
	<div data-component-type="s-search-result">
		<h2><a class="a-link-normal s-no-outline" href="/Thing/dp/B000000002"><span></span></a></h2>
	</div>`
	noLink := `
	<div data-component-type="s-search-result">
		<h2><span>Orphaned Product</span></h2>
	</div>`
	html := searchPage(
		noTitle,
		noLink,
		listingRow("/Keeper/dp/B000000003", "Keeper Gadget", "$25.00", "4.2 out of 5 stars", ""),
	)

	got := ExtractListings(html, "amazon.com", "gadgets")
	if len(got) != 1 || got[0].Title != "Keeper Gadget" {
		t.Fatalf("expected only the complete row to survive, got %+v", got)
	}
}

func TestExtractListingsKeepsUnpricedRows(t *testing.T) {
	html := searchPage(listingRow("/Mystery/dp/B000000004", "Mystery Item", "", "", ""))

	got := ExtractListings(html, "amazon.com", "misc")
	if len(got) != 1 {
		t.Fatalf("expected unpriced row to survive, got %d candidates", len(got))
	}
	if got[0].PriceValue != nil {
		t.Errorf("expected unknown price, got %v", *got[0].PriceValue)
	}
	if got[0].Rating != nil {
		t.Errorf("expected unknown rating, got %v", *got[0].Rating)
	}
}

func TestNormalizeListingURL(t *testing.T) {
	cases := []struct {
		href string
		want string
		ok   bool
	}{
		{"/Sony/dp/B01?ref=sr_1", "https://www.amazon.com/Sony/dp/B01", true},
		{"https://amazon.com/Sony/dp/B01#reviews", "https://www.amazon.com/Sony/dp/B01", true},
		{"Sony/dp/B01", "https://www.amazon.com/Sony/dp/B01", true},
		{"", "", false},
		{"?ref=only-query", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeListingURL(tc.href, "amazon.com")
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizeListingURL(%q) = %q, %v; want %q, %v", tc.href, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExtractProductPage(t *testing.T) {
	html := `<html><body>
		<span id="productTitle"> Ergonomic Desk Chair </span>
		<div id="imgTagWrapperId"><img src="https://m.media.example/chair.jpg"/></div>
		<span class="a-price"><span class="a-offscreen">$189.99</span></span>
		<span class="a-icon-alt">4.3 out of 5 stars</span>
	</body></html>`

	page, ok := ExtractProductPage(html)
	if !ok {
		t.Fatalf("expected product page to parse")
	}
	if page.Title != "Ergonomic Desk Chair" {
		t.Errorf("unexpected title: %q", page.Title)
	}
	if page.PriceValue == nil || *page.PriceValue != 189.99 {
		t.Errorf("unexpected price: %v", page.PriceValue)
	}
	if page.Rating == nil || *page.Rating != 4.3 {
		t.Errorf("unexpected rating: %v", page.Rating)
	}
	if page.ImageURL != "https://m.media.example/chair.jpg" {
		t.Errorf("unexpected image: %q", page.ImageURL)
	}

	if _, ok := ExtractProductPage("<html><body><p>nothing here</p></body></html>"); ok {
		t.Fatalf("expected page without title to be rejected")
	}
}
