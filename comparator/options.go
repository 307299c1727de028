package comparator

import (
	"log/slog"

	"github.com/katalvlaran/gesturematch/align"
)

type options struct {
	align            align.Options
	channelLimit     int
	exemplarLimit    int
	skipIncomparable bool
	logger           *slog.Logger
	metrics          MetricsCollector
}

// Option configures a DP comparator.
type Option func(*options)

// WithAlignOptions replaces the whole aligner configuration shared by every
// comparison. Nil function fields fall back to the aligner defaults.
func WithAlignOptions(o align.Options) Option {
	return func(opts *options) {
		opts.align = o
	}
}

// WithBudget sets the erasure budget policy.
func WithBudget(b align.Budget) Option {
	return func(opts *options) {
		opts.align.Budget = b
	}
}

// WithPairwise sets the pairwise distance.
func WithPairwise(fn align.PairwiseFunc) Option {
	return func(opts *options) {
		opts.align.Pairwise = fn
	}
}

// WithErase sets the erase cost.
func WithErase(fn align.EraseFunc) Option {
	return func(opts *options) {
		opts.align.Erase = fn
	}
}

// WithChannelParallelism bounds how many channels of one comparison are
// aligned concurrently. n <= 0 means GOMAXPROCS.
func WithChannelParallelism(n int) Option {
	return func(opts *options) {
		opts.channelLimit = n
	}
}

// WithExemplarParallelism bounds how many exemplars are scored concurrently
// for one query. n <= 0 means GOMAXPROCS.
func WithExemplarParallelism(n int) Option {
	return func(opts *options) {
		opts.exemplarLimit = n
	}
}

// WithSkipIncomparable makes queries skip exemplars that fail a precondition
// (length gap over budget, invalid budget, channel mismatch) instead of
// failing the whole query. Skipped exemplars are logged and counted.
func WithSkipIncomparable() Option {
	return func(opts *options) {
		opts.skipIncomparable = true
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithMetrics configures a metrics collector. Pass nil to disable metrics.
func WithMetrics(mc MetricsCollector) Option {
	return func(opts *options) {
		opts.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		align: align.DefaultOptions(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	return o
}
