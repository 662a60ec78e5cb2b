package metrics

import (
	"SignalDesk/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	instruments  *prometheus.CounterVec
	actions      *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	runDuration  prometheus.Gauge
	runCounts    *prometheus.GaugeVec
	categorySize *prometheus.GaugeVec
	budgetHits   prometheus.Counter
	lastRun      prometheus.Gauge
}

// New registers the collectors on reg, or on the default registry when nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		instruments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_instruments_total",
				Help: "Instruments evaluated by outcome (processed, skipped, failed)",
			},
			[]string{"outcome"},
		),
		actions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_prediction_actions_total",
				Help: "Predictions by recommended action",
			},
			[]string{"action"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_last_run_duration_seconds",
			Help: "Wall time of the last pass",
		}),
		runCounts: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signaldesk_last_run_instruments",
				Help: "Instrument counts of the last pass",
			},
			[]string{"kind"},
		),
		categorySize: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signaldesk_last_run_category_admitted",
				Help: "Admissions per signal category before truncation",
			},
			[]string{"category"},
		),
		budgetHits: f.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_budget_exceeded_total",
			Help: "Passes that stopped early on the time budget",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_last_run_timestamp_seconds",
			Help: "Start time of the last pass",
		}),
	}
}

func (r *Recorder) RecordInstrument(outcome string) {
	r.instruments.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordAction(action string) {
	r.actions.WithLabelValues(action).Inc()
}

// RecordRun publishes the summary of a finished pass.
func (r *Recorder) RecordRun(s models.RunSummary) {
	r.runDuration.Set(s.Elapsed.Seconds())
	r.runCounts.WithLabelValues("universe").Set(float64(s.Universe))
	r.runCounts.WithLabelValues("processed").Set(float64(s.Processed))
	r.runCounts.WithLabelValues("skipped").Set(float64(s.Skipped))
	r.runCounts.WithLabelValues("failed").Set(float64(s.Failed))
	r.runCounts.WithLabelValues("predicted").Set(float64(s.Predicted))
	for c, n := range s.CategoryCounts {
		r.categorySize.WithLabelValues(string(c)).Set(float64(n))
	}
	if s.BudgetExceeded {
		r.budgetHits.Inc()
	}
	if !s.StartedAt.IsZero() {
		r.lastRun.Set(float64(s.StartedAt.Unix()))
	}
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
