package catalog

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showroom_catalog_fetch_total",
			Help: "Catalog fetches by mode (all, prefix) and result (ok, unavailable, canceled).",
		},
		[]string{"mode", "result"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showroom_catalog_fetch_duration_seconds",
			Help:    "Catalog fetch latency by mode.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	fetchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showroom_catalog_fetch_results",
			Help:    "Number of vehicles returned per fetch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	malformedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showroom_catalog_malformed_records_total",
			Help: "Vehicle documents that failed the record rule.",
		},
	)

	staleDiscards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showroom_catalog_stale_results_total",
			Help: "Fetch completions discarded because a newer request was issued.",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "showroom_catalog_sessions",
			Help: "Open catalog sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration, fetchResults, malformedRecords, staleDiscards, activeSessions)
}
