package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rowsTotal counts CSV rows by outcome.
	// Labels: outcome (imported, failed)
	rowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "importer",
		Name:      "rows_total",
		Help:      "CSV rows processed by outcome",
	}, []string{"outcome"})

	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "airsearch",
		Subsystem: "importer",
		Name:      "batches_total",
		Help:      "Committed import transactions",
	})
)
