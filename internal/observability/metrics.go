package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons recorded on FeaturesDropped.
const (
	DropNullGeometry   = "null_geometry"
	DropNullAttributes = "null_attributes"
	DropBadDate        = "bad_date"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dataset build and the page API.
type Metrics struct {
	FeaturesLoaded  prometheus.Counter
	FeaturesDropped *prometheus.CounterVec // labels: reason={null_geometry,null_attributes,bad_date}
	BuildFailures   prometheus.Counter
	RowsBuilt       prometheus.Gauge
	DatasetReady    prometheus.Gauge
	BuildDuration   prometheus.Histogram

	PageRequests *prometheus.CounterVec // labels: page, outcome={ok,bad_request,unavailable}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeaturesLoaded,
		m.FeaturesDropped,
		m.BuildFailures,
		m.RowsBuilt,
		m.DatasetReady,
		m.BuildDuration,
		m.PageRequests,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeaturesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_dashboard",
			Name:      "features_loaded_total",
			Help:      "Total features read from the feature collection.",
		}),
		FeaturesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_dashboard",
			Name:      "features_dropped_total",
			Help:      "Features excluded from the dataset by reason.",
		}, []string{"reason"}),
		BuildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_dashboard",
			Name:      "build_failures_total",
			Help:      "Dataset builds aborted by a load or geometry error.",
		}),
		RowsBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_dashboard",
			Name:      "dataset_rows",
			Help:      "Rows in the cleaned dataset (one per ring coordinate).",
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_dashboard",
			Name:      "dataset_ready",
			Help:      "1 once a cleaned dataset has been built, 0 otherwise.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_dashboard",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete dataset build.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_dashboard",
			Name:      "page_requests_total",
			Help:      "Dashboard page queries by page and outcome.",
		}, []string{"page", "outcome"}),
	}
}
