package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "records_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for one job
// run. They are registered on a private registry and written out as a
// node_exporter textfile when the run ends.
type Metrics struct {
	RowsExtracted *prometheus.CounterVec // labels: sex
	RowsFlagged   *prometheus.CounterVec // labels: sex
	RowsEmpty     *prometheus.CounterVec // labels: sex

	RecordsLoaded *prometheus.CounterVec   // labels: sink
	LoadErrors    *prometheus.CounterVec   // labels: sink
	LoadDuration  *prometheus.HistogramVec // labels: sink

	EnrichmentMisses *prometheus.CounterVec // labels: sex, kind={nationality,athlete,date}
	FuzzyMatches     *prometheus.CounterVec // labels: sex

	FetchDuration  prometheus.Histogram
	ChartsRendered prometheus.Counter
	TablesRendered prometheus.Counter
	LastSuccess    *prometheus.GaugeVec // labels: stage={scrape,report}

	registry *prometheus.Registry
}

// NewMetrics creates and registers all job metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry.MustRegister(
		m.RowsExtracted,
		m.RowsFlagged,
		m.RowsEmpty,
		m.RecordsLoaded,
		m.LoadErrors,
		m.LoadDuration,
		m.EnrichmentMisses,
		m.FuzzyMatches,
		m.FetchDuration,
		m.ChartsRendered,
		m.TablesRendered,
		m.LastSuccess,
	)
	return m
}

// NewMetricsForTesting creates Metrics whose collectors are not registered,
// so tests can read them with testutil without sharing state.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Record rows kept by the table extractor.",
		}, []string{"sex"}),
		RowsFlagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_flagged_total",
			Help:      "Rows dropped because they were flagged in the source table.",
		}, []string{"sex"}),
		RowsEmpty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_empty_total",
			Help:      "Rows skipped for having no cells.",
		}, []string{"sex"}),
		RecordsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Records written per sink.",
		}, []string{"sink"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed load attempts per sink.",
		}, []string{"sink"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a successful load per sink.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"sink"}),
		EnrichmentMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_misses_total",
			Help:      "Records whose reference lookups failed, by kind.",
		}, []string{"sex", "kind"}),
		FuzzyMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fuzzy_name_matches_total",
			Help:      "Athlete birth dates resolved by approximate name match.",
		}, []string{"sex"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the source page fetch.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ChartsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "Chart images written.",
		}),
		TablesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_rendered_total",
			Help:      "HTML summary tables written.",
		}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful stage completion.",
		}, []string{"stage"}),
		registry: prometheus.NewRegistry(),
	}
}

// WriteTextfile writes the registered metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
