package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokosearch",
			Name:      "searches_total",
			Help:      "Total number of search requests by outcome",
		},
		[]string{"status"},
	)

	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tokosearch",
			Name:      "search_duration_seconds",
			Help:      "Search pipeline latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	searchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tokosearch",
			Name:      "search_result_count",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	averagePrecision = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tokosearch",
			Name:      "search_average_precision",
			Help:      "Average Precision of evaluated rankings",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	indexedDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tokosearch",
			Name:      "index_documents",
			Help:      "Number of documents in the current index snapshot",
		},
	)
)

// RegisterSearchMetrics registers the search collectors. Called once
// from the composition root; no init() so that tests importing this
// package do not pollute the default registry twice.
func RegisterSearchMetrics() {
	prometheus.MustRegister(searchesTotal, searchDuration, searchResults, averagePrecision, indexedDocuments)
}

// ObserveSearch records one completed search.
func ObserveSearch(d time.Duration, resultCount int, ap float64) {
	searchesTotal.WithLabelValues("ok").Inc()
	searchDuration.Observe(d.Seconds())
	searchResults.Observe(float64(resultCount))
	averagePrecision.Observe(ap)
}

// ObserveSearchError records one failed search.
func ObserveSearchError() {
	searchesTotal.WithLabelValues("error").Inc()
}

// SetIndexedDocuments records the size of the active index snapshot.
func SetIndexedDocuments(n int) {
	indexedDocuments.Set(float64(n))
}
