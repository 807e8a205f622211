// Package metrics holds the Prometheus collectors for the scraping pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates every collector the pipeline reports to.
type Metrics struct {
	FetchOutcomes   *prometheus.CounterVec
	CategoryScrapes *prometheus.CounterVec
	ScrapeDuration  prometheus.Histogram
	Recommendations *prometheus.CounterVec
	RankingCalls    *prometheus.CounterVec
}

// New registers the pipeline collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopapp_fetch_outcomes_total",
			Help: "Page fetch attempts by outcome.",
		}, []string{"outcome"}),
		CategoryScrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopapp_category_scrapes_total",
			Help: "Category scrape results by status.",
		}, []string{"status"}),
		ScrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopapp_aggregation_duration_seconds",
			Help:    "Wall-clock duration of one aggregation run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopapp_recommendation_requests_total",
			Help: "Recommendation requests by result.",
		}, []string{"result"}),
		RankingCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopapp_ranking_calls_total",
			Help: "Generative ranking calls by call type and result.",
		}, []string{"call", "result"}),
	}
	reg.MustRegister(
		m.FetchOutcomes,
		m.CategoryScrapes,
		m.ScrapeDuration,
		m.Recommendations,
		m.RankingCalls,
	)
	return m
}

// NewNop returns collectors that are not registered anywhere, for tests and
// for components constructed without a registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveAggregation records the duration of one aggregation run.
func (m *Metrics) ObserveAggregation(elapsed time.Duration) {
	m.ScrapeDuration.Observe(elapsed.Seconds())
}
