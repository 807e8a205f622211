package scraper

import "strings"

// Marketplace holds the regional storefront configuration used to build
// search URLs and render prices.
type Marketplace struct {
	Country  string
	Domain   string
	Currency string
}

// marketplaces is the curated set of regional storefronts the scraper
// supports. Domains and currencies are sourced from public documentation and
// open-source projects that interact with the site.
var marketplaces = []Marketplace{
	{Country: "United States", Domain: "amazon.com", Currency: "$"},
	{Country: "United Kingdom", Domain: "amazon.co.uk", Currency: "£"},
	{Country: "Canada", Domain: "amazon.ca", Currency: "$"},
	{Country: "Australia", Domain: "amazon.com.au", Currency: "$"},
	{Country: "Germany", Domain: "amazon.de", Currency: "€"},
	{Country: "France", Domain: "amazon.fr", Currency: "€"},
	{Country: "Italy", Domain: "amazon.it", Currency: "€"},
	{Country: "Spain", Domain: "amazon.es", Currency: "€"},
	{Country: "Netherlands", Domain: "amazon.nl", Currency: "€"},
	{Country: "Japan", Domain: "amazon.co.jp", Currency: "¥"},
	{Country: "India", Domain: "amazon.in", Currency: "₹"},
	{Country: "Brazil", Domain: "amazon.com.br", Currency: "R$"},
	{Country: "Mexico", Domain: "amazon.com.mx", Currency: "$"},
	{Country: "Singapore", Domain: "amazon.sg", Currency: "$"},
}

// MarketplaceFor resolves a free-form user location to a storefront. Exact
// country match wins, then a substring match in either direction, defaulting
// to the United States storefront.
func MarketplaceFor(location string) Marketplace {
	normalized := strings.ToLower(strings.TrimSpace(location))
	if normalized != "" {
		for _, m := range marketplaces {
			if strings.ToLower(m.Country) == normalized {
				return m
			}
		}
		for _, m := range marketplaces {
			country := strings.ToLower(m.Country)
			if strings.Contains(normalized, country) || strings.Contains(country, normalized) {
				return m
			}
		}
	}
	return marketplaces[0]
}

// CanonicalHost returns the "www."-prefixed host for a storefront domain,
// accepting input with or without the prefix.
func CanonicalHost(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" {
		domain = "amazon.com"
	}
	return "www." + domain
}
