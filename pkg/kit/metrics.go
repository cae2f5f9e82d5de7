package kit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp      = "op"
	labelOutcome = "outcome"
)

const (
	OutcomeOK         = "ok"
	OutcomeDuplicate  = "duplicate"
	OutcomeNotFound   = "not_found"
	OutcomeSaveFailed = "save_failed"
	OutcomeNoData     = "no_data"
	OutcomeMalformed  = "malformed"
	OutcomeEmpty      = "empty"
)

type Metrics struct {
	Operations  *prometheus.CounterVec
	SaveLatency prometheus.Histogram
	Books       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_operations_total",
				Help: "Catalog operations by outcome",
			},
			[]string{labelOp, labelOutcome},
		),
		SaveLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bookshelf_save_duration_seconds",
				Help:    "Full catalog save latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		Books: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bookshelf_catalog_books",
				Help: "Books currently in the catalog",
			},
		),
	}

	reg.MustRegister(m.Operations, m.SaveLatency, m.Books)
	return m
}

// The methods below are no-ops on a nil *Metrics.

func (m *Metrics) Observe(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveSave(start time.Time) {
	if m == nil {
		return
	}
	m.SaveLatency.Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetBooks(n int) {
	if m == nil {
		return
	}
	m.Books.Set(float64(n))
}

// WriteTextfile dumps g in the node_exporter textfile format. An empty path
// disables the export.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, g)
}
