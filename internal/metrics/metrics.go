// Package metrics records run counters on a private Prometheus registry.
//
// A run is a batch job, so metrics are exported once at the end with
// WriteTextfile for the node_exporter textfile collector rather than served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jobtrack"

// Query outcome labels.
const (
	StatusOK        = "ok"
	StatusTransport = "transport"
	StatusMalformed = "malformed"
	StatusRequest   = "request"
)

// Recorder owns the run metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	candidates    *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	duplicates    prometheus.Counter
	fetchDuration *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Queries issued, by source and outcome",
			},
			[]string{"source", "status"},
		),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_total",
				Help:      "Normalized jobs produced, by source",
			},
			[]string{"source"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Policy decisions, by outcome",
			},
			[]string{"outcome"}, // "accepted" / "rejected"
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Failed criteria across rejected jobs",
			},
			[]string{"criterion"},
		),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Accepted jobs dropped as duplicates",
		}),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Upstream fetch duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	r.registry.MustRegister(r.queries, r.candidates, r.decisions, r.rejections, r.duplicates, r.fetchDuration, r.lastRun)
	return r
}

func (r *Recorder) Query(source, status string, took time.Duration) {
	if r == nil {
		return
	}
	r.queries.WithLabelValues(source, status).Inc()
	r.fetchDuration.WithLabelValues(source).Observe(took.Seconds())
}

func (r *Recorder) Candidates(source string, n int) {
	if r == nil {
		return
	}
	r.candidates.WithLabelValues(source).Add(float64(n))
}

func (r *Recorder) Accepted() {
	if r == nil {
		return
	}
	r.decisions.WithLabelValues("accepted").Inc()
}

// Rejected counts one rejected job and each criterion it failed.
func (r *Recorder) Rejected(criteria []string) {
	if r == nil {
		return
	}
	r.decisions.WithLabelValues("rejected").Inc()
	for _, c := range criteria {
		r.rejections.WithLabelValues(c).Inc()
	}
}

func (r *Recorder) Duplicates(n int) {
	if r == nil {
		return
	}
	r.duplicates.Add(float64(n))
}

// Finished stamps the run completion time.
func (r *Recorder) Finished(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
