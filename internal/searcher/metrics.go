package searcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search flavors used as metric labels
const (
	flavorEnhanced = "enhanced"
	flavorFuzzy    = "fuzzy"
	flavorSuggest  = "suggest"
	flavorCode     = "code"
	flavorCity     = "city"
)

var (
	// requestsTotal counts search calls by flavor and status.
	// Labels: flavor, status (ok, error)
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "searcher",
		Name:      "requests_total",
		Help:      "Search calls by flavor and status",
	}, []string{"flavor", "status"})

	durationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "airsearch",
		Subsystem: "searcher",
		Name:      "duration_seconds",
		Help:      "Search latency including snapshot loads",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"flavor"})

	resultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "searcher",
		Name:      "results_total",
		Help:      "Results returned by flavor",
	}, []string{"flavor"})

	// lookupsTotal counts code lookups by source.
	// Labels: result (hit, store, miss)
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "searcher",
		Name:      "lookups_total",
		Help:      "Code lookups by result",
	}, []string{"result"})
)

func observe(flavor string, start time.Time, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	requestsTotal.WithLabelValues(flavor, status).Inc()
	durationSeconds.WithLabelValues(flavor).Observe(time.Since(start).Seconds())
	resultsTotal.WithLabelValues(flavor).Add(float64(results))
}
