// Package metrics exposes validation counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeCached  = "cached"
)

// Recorder records validation metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	documents        *prometheus.CounterVec
	constraintErrors *prometheus.CounterVec
	warnings         prometheus.Counter
	duration         prometheus.Histogram
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triplecheck_documents_total",
				Help: "Total number of validated documents by outcome",
			},
			[]string{"outcome"},
		),
		constraintErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triplecheck_constraint_errors_total",
				Help: "Total number of errors reported by kind",
			},
			[]string{"kind"},
		),
		warnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "triplecheck_warnings_total",
			Help: "Total number of heuristic warnings",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "triplecheck_validation_duration_seconds",
			Help:    "Duration of single document validations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
	}
}

// RecordDocument records the outcome of one document
func (r *Recorder) RecordDocument(valid, cached bool, d time.Duration) {
	switch {
	case cached:
		r.documents.WithLabelValues(OutcomeCached).Inc()
	case valid:
		r.documents.WithLabelValues(OutcomeValid).Inc()
	default:
		r.documents.WithLabelValues(OutcomeInvalid).Inc()
	}
	if !cached {
		r.duration.Observe(d.Seconds())
	}
}

// RecordErrors adds n errors of the given kind
func (r *Recorder) RecordErrors(kind string, n int) {
	if n > 0 {
		r.constraintErrors.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordWarnings adds n heuristic warnings
func (r *Recorder) RecordWarnings(n int) {
	if n > 0 {
		r.warnings.Add(float64(n))
	}
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's metrics
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
