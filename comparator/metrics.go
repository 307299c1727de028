package comparator

import (
	"sync/atomic"
	"time"
)

// Query operation names passed to MetricsCollector.RecordQuery.
const (
	OpIsValid      = "is_valid"
	OpProbaIsValid = "proba_is_valid"
	OpNearest      = "nearest"
	OpScores       = "scores"
)

// MetricsCollector receives operational metrics from a comparator.
// Implement it to plug in a monitoring system; see package metrics for a
// Prometheus implementation.
type MetricsCollector interface {
	// RecordAdd is called after an exemplar is appended; total is the new
	// number of exemplars.
	RecordAdd(total int)

	// RecordQuery is called after each query. exemplars is the size of the
	// snapshot the query ran against.
	RecordQuery(op string, exemplars int, duration time.Duration, err error)

	// RecordMismatch is called for every computed exemplar mismatch score.
	RecordMismatch(score float64)

	// RecordSkip is called when an exemplar is skipped under WithSkipIncomparable.
	RecordSkip(reason error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int)                                 {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMismatch(float64)                        {}
func (NoopMetricsCollector) RecordSkip(error)                              {}

// BasicMetricsCollector keeps simple in-memory counters.
type BasicMetricsCollector struct {
	Exemplars       atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	MismatchCount   atomic.Int64
	SkipCount       atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(total int) {
	b.Exemplars.Store(int64(total))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, _ int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordMismatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMismatch(float64) {
	b.MismatchCount.Add(1)
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip(error) {
	b.SkipCount.Add(1)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	Exemplars     int64
	QueryCount    int64
	QueryErrors   int64
	QueryAvgNanos int64
	MismatchCount int64
	SkipCount     int64
}

// GetStats returns a snapshot of the current counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		Exemplars:     b.Exemplars.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		MismatchCount: b.MismatchCount.Load(),
		SkipCount:     b.SkipCount.Load(),
	}
	if s.QueryCount > 0 {
		s.QueryAvgNanos = b.QueryTotalNanos.Load() / s.QueryCount
	}
	return s
}
