package scraper

// Candidate is a single product extracted from a search results page before
// final ranking. Title and URL are always present; the remaining fields are
// optional and nil/empty when the listing row did not carry them.
type Candidate struct {
	Title          string
	URL            string
	ImageURL       string
	PriceDisplay   string
	PriceValue     *float64
	Rating         *float64
	SourceCategory string
	Score          float64
}

// PriceKnown reports whether a numeric price was extracted for the candidate.
func (c Candidate) PriceKnown() bool {
	return c.PriceValue != nil
}

// Status describes the outcome of one category scrape.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartialFailure
	StatusFailed
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartialFailure:
		return "partial_failure"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// CategoryResult is the ranked outcome of one category scrape. Candidates are
// sorted by score descending whenever the slice is non-empty; a Failed result
// always carries an empty slice.
type CategoryResult struct {
	Category   string
	Candidates []Candidate
	Status     Status
}
