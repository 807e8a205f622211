package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/price"
)

var ratingPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ExtractListings parses a search results page into candidate records. Rows
// missing a title or a resolvable product link are dropped silently; every
// other field is optional. Candidate URLs are normalised so the same product
// reached through different query strings deduplicates within the page.
func ExtractListings(html, domain, category string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	candidates := []Candidate{}

	doc.Find("div.s-main-slot div[data-component-type='s-search-result']").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.a-link-normal.s-no-outline").First()
		if link.Length() == 0 {
			link = row.Find("h2 a").First()
		}
		if link.Length() == 0 {
			link = row.Find("a[href*='/dp/']").First()
		}
		productURL, ok := NormalizeListingURL(link.AttrOr("href", ""), domain)
		if !ok {
			return
		}
		if _, dup := seen[productURL]; dup {
			return
		}

		title := strings.TrimSpace(row.Find("h2 a span").First().Text())
		if title == "" {
			title = strings.TrimSpace(row.Find("h2 span").First().Text())
		}
		if title == "" {
			return
		}

		cand := Candidate{
			Title:          title,
			URL:            productURL,
			SourceCategory: category,
		}

		display := strings.TrimSpace(row.Find("span.a-price span.a-offscreen").First().Text())
		if display == "" {
			display = strings.TrimSpace(row.Find("span.a-price-whole").First().Text())
		}
		if display != "" {
			cand.PriceDisplay = display
			if value, known := price.Parse(display); known {
				cand.PriceValue = &value
			}
		}

		if rating, found := parseRating(row.Find("span.a-icon-alt").First().Text()); found {
			cand.Rating = &rating
		}

		cand.ImageURL = row.Find("img.s-image").First().AttrOr("src", "")

		seen[productURL] = struct{}{}
		candidates = append(candidates, cand)
	})

	return candidates
}

// ProductPage is the subset of a product detail page used to enrich a search
// result candidate.
type ProductPage struct {
	Title        string
	ImageURL     string
	PriceDisplay string
	PriceValue   *float64
	Rating       *float64
}

// ExtractProductPage parses a product detail page. It returns false when the
// page carries no usable title.
func ExtractProductPage(html string) (ProductPage, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ProductPage{}, false
	}

	page := ProductPage{
		Title: strings.TrimSpace(doc.Find("#productTitle").First().Text()),
	}
	if page.Title == "" {
		return ProductPage{}, false
	}

	display := strings.TrimSpace(doc.Find("span.a-price span.a-offscreen").First().Text())
	if display == "" {
		display = strings.TrimSpace(doc.Find("#priceblock_ourprice").First().Text())
	}
	if display == "" {
		display = strings.TrimSpace(doc.Find("#priceblock_dealprice").First().Text())
	}
	if display != "" {
		page.PriceDisplay = display
		if value, known := price.Parse(display); known {
			page.PriceValue = &value
		}
	}

	if rating, found := parseRating(doc.Find("span.a-icon-alt").First().Text()); found {
		page.Rating = &rating
	}

	page.ImageURL = doc.Find("#imgTagWrapperId img").First().AttrOr("src", "")
	if page.ImageURL == "" {
		page.ImageURL = doc.Find("img#landingImage").First().AttrOr("src", "")
	}
	return page, true
}

// NormalizeListingURL resolves a listing href against the storefront domain
// and strips it down to a canonical https://www.<domain>/<path> form. Query
// strings and fragments are dropped so identical products reached through
// different search placements collapse to one URL.
func NormalizeListingURL(href, domain string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if href == "" || href == "/" {
		return "", false
	}

	host := CanonicalHost(domain)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		parsed, err := url.Parse(href)
		if err != nil || parsed.Path == "" || parsed.Path == "/" {
			return "", false
		}
		return "https://" + host + parsed.Path, true
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return "https://" + host + href, true
}

func parseRating(text string) (float64, bool) {
	match := ratingPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, known := price.Parse(match)
	if !known || value < 0 || value > 5 {
		return 0, false
	}
	return value, true
}
