// Package metrics exports comparator activity to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/gesturematch/align"
	"github.com/katalvlaran/gesturematch/channel"
	"github.com/katalvlaran/gesturematch/comparator"
)

// Prometheus implements comparator.MetricsCollector.
type Prometheus struct {
	// Exemplars tracks the current number of registered exemplars
	Exemplars prometheus.Gauge

	// QueriesTotal tracks queries by operation and status
	QueriesTotal *prometheus.CounterVec

	// QueryDuration tracks query latency in seconds by operation
	QueryDuration *prometheus.HistogramVec

	// MismatchScore tracks the distribution of exemplar mismatch scores
	MismatchScore prometheus.Histogram

	// SkippedTotal tracks exemplars skipped by precondition reason
	SkippedTotal *prometheus.CounterVec
}

var _ comparator.MetricsCollector = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		Exemplars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gesture_exemplars_current",
			Help: "Number of registered valid gesture exemplars",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gesture_queries_total",
			Help: "Total comparator queries by operation and status",
		}, []string{"operation", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gesture_query_duration_seconds",
			Help:    "Comparator query duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		MismatchScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gesture_mismatch_score",
			Help:    "Worst-channel alignment distance between a query and an exemplar",
			Buckets: []float64{.01, .025, .05, .1, .15, .2, .3, .5, 1, 2, 5},
		}),
		SkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gesture_exemplars_skipped_total",
			Help: "Exemplars skipped during queries by reason",
		}, []string{"reason"}),
	}
	for _, c := range []prometheus.Collector{p.Exemplars, p.QueriesTotal, p.QueryDuration, p.MismatchScore, p.SkippedTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RecordAdd implements comparator.MetricsCollector.
func (p *Prometheus) RecordAdd(total int) {
	p.Exemplars.Set(float64(total))
}

// RecordQuery implements comparator.MetricsCollector.
func (p *Prometheus) RecordQuery(op string, _ int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.QueriesTotal.WithLabelValues(op, status).Inc()
	p.QueryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordMismatch implements comparator.MetricsCollector.
func (p *Prometheus) RecordMismatch(score float64) {
	p.MismatchScore.Observe(score)
}

// RecordSkip implements comparator.MetricsCollector.
func (p *Prometheus) RecordSkip(reason error) {
	p.SkippedTotal.WithLabelValues(Reason(reason)).Inc()
}

// Reason maps a precondition error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, align.ErrIncomparable):
		return "incomparable_length"
	case errors.Is(err, align.ErrInvalidBudget):
		return "invalid_budget"
	case errors.Is(err, channel.ErrChannelMismatch):
		return "channel_mismatch"
	default:
		return "other"
	}
}
