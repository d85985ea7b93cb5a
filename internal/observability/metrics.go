package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// poll-and-accumulate loop.
type Metrics struct {
	FetchCycles        *prometheus.CounterVec // labels: outcome={success,fetch_error,save_error}
	IncidentsFetched   prometheus.Counter
	IncidentsAdded     prometheus.Counter
	IncidentsDuplicate prometheus.Counter
	MalformedRecords   prometheus.Counter
	SaveFailures       prometheus.Counter
	AnnounceFailures   prometheus.Counter

	StoreSize     prometheus.Gauge
	PollerRunning prometheus.Gauge
	LastSuccess   prometheus.Gauge // unix seconds of the last fully successful cycle

	FetchDuration prometheus.Histogram
	CycleDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchCycles,
		m.IncidentsFetched,
		m.IncidentsAdded,
		m.IncidentsDuplicate,
		m.MalformedRecords,
		m.SaveFailures,
		m.AnnounceFailures,
		m.StoreSize,
		m.PollerRunning,
		m.LastSuccess,
		m.FetchDuration,
		m.CycleDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "fetch_cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		IncidentsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "incidents_fetched_total",
			Help:      "Raw alert records returned by the feed.",
		}),
		IncidentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "incidents_added_total",
			Help:      "Incidents admitted to the master set.",
		}),
		IncidentsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "incidents_duplicate_total",
			Help:      "Fetched incidents already present in the master set.",
		}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "malformed_records_total",
			Help:      "Feed records dropped during normalization.",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "save_failures_total",
			Help:      "Persistence failures after a successful merge.",
		}),
		AnnounceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waze_tracker",
			Name:      "announce_failures_total",
			Help:      "Failed publishes of newly admitted incidents.",
		}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waze_tracker",
			Name:      "store_size",
			Help:      "Unique incidents accumulated in the master set.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waze_tracker",
			Name:      "poller_running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waze_tracker",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that fetched, merged, and saved.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waze_tracker",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the feed fetch step.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waze_tracker",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-merge-save cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
