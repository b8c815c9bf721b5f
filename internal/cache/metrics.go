package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheRequestsTotal counts Load calls by result.
	// Labels: result (hit, miss)
	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Snapshot loads by cache result",
	}, []string{"result"})

	// cacheRefreshesTotal counts store scans by outcome.
	// Labels: outcome (success, error)
	cacheRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "cache",
		Name:      "refreshes_total",
		Help:      "Snapshot refreshes by outcome",
	}, []string{"outcome"})

	cacheSnapshotAirports = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "airsearch",
		Subsystem: "cache",
		Name:      "snapshot_airports",
		Help:      "Number of airports in the published snapshot",
	})
)
