package comparator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/gesturematch/align"
	"github.com/katalvlaran/gesturematch/channel"
	"github.com/katalvlaran/gesturematch/gesture"
)

// DefaultThreshold is the mismatch score at which a query stops being valid.
const DefaultThreshold = 0.2

var (
	// ErrNegativeThreshold indicates a threshold below zero (or NaN).
	ErrNegativeThreshold = errors.New("comparator: threshold must be >= 0")

	// ErrNoExemplars indicates a query against an empty exemplar set, or one
	// in which every exemplar was skipped. IsValid and ProbaIsValid resolve it
	// to false and 0; only Nearest returns it.
	ErrNoExemplars = errors.New("comparator: no exemplars to compare against")
)

// Comparator decides whether a gesture matches any registered valid gesture.
type Comparator interface {
	// AddValidGesture registers g as a valid exemplar.
	AddValidGesture(g gesture.Representation)

	// IsValid reports whether some exemplar is within the threshold of g.
	IsValid(ctx context.Context, g gesture.Representation) (bool, error)

	// ProbaIsValid maps the distance to the nearest exemplar into [0, 1].
	ProbaIsValid(ctx context.Context, g gesture.Representation) (float64, error)
}

// Exemplar is an accepted gesture. Exemplars are never modified or removed.
type Exemplar struct {
	ID      uuid.UUID
	Added   time.Time
	Gesture gesture.Representation
}

// Score is the mismatch between a query and one exemplar: the largest
// per-channel alignment distance.
type Score struct {
	Exemplar Exemplar
	Mismatch float64
}

// DP is a Comparator built on the bounded-erasure aligner.
//
// The exemplar set is copy-on-write: AddValidGesture publishes a new slice and
// every query works on the snapshot it loaded when it started, so a query
// never sees a partially appended exemplar. DP is safe for concurrent use.
type DP struct {
	threshold float64
	opts      options

	mu        sync.Mutex // serialises writers
	exemplars atomic.Pointer[[]Exemplar]
}

var _ Comparator = (*DP)(nil)

// New returns an empty comparator with the given threshold.
func New(threshold float64, optFns ...Option) (*DP, error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: got %v", ErrNegativeThreshold, threshold)
	}
	d := &DP{
		threshold: threshold,
		opts:      applyOptions(optFns),
	}
	empty := []Exemplar{}
	d.exemplars.Store(&empty)

	return d, nil
}

// Threshold returns the configured threshold.
func (d *DP) Threshold() float64 { return d.threshold }

// Len returns the number of exemplars.
func (d *DP) Len() int { return len(d.snapshot()) }

// Exemplars returns a copy of the current exemplar set.
func (d *DP) Exemplars() []Exemplar {
	s := d.snapshot()
	out := make([]Exemplar, len(s))
	copy(out, s)
	return out
}

func (d *DP) snapshot() []Exemplar { return *d.exemplars.Load() }

// AddValidGesture implements Comparator.
func (d *DP) AddValidGesture(g gesture.Representation) {
	d.Add(g)
}

// Add appends g unconditionally and returns the stored exemplar.
func (d *DP) Add(g gesture.Representation) Exemplar {
	return d.add(Exemplar{ID: uuid.New(), Added: time.Now(), Gesture: g})
}

// Restore appends a previously persisted exemplar, keeping its ID and time.
func (d *DP) Restore(e Exemplar) Exemplar {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Added.IsZero() {
		e.Added = time.Now()
	}
	return d.add(e)
}

func (d *DP) add(e Exemplar) Exemplar {
	d.mu.Lock()
	old := d.snapshot()
	next := make([]Exemplar, len(old), len(old)+1)
	copy(next, old)
	next = append(next, e)
	d.exemplars.Store(&next)
	d.mu.Unlock()

	d.opts.metrics.RecordAdd(len(next))
	attrs := []any{"exemplar_id", e.ID, "exemplars", len(next)}
	if e.Gesture != nil {
		attrs = append(attrs, "frames", e.Gesture.Len(), "channels", e.Gesture.Channels())
	}
	d.opts.logger.Info("exemplar added", attrs...)

	return e
}

// MismatchScore returns the worst-channel alignment distance between g and e.
func (d *DP) MismatchScore(ctx context.Context, g gesture.Representation, e Exemplar) (float64, error) {
	m, err := channel.Mismatch(ctx, g, e.Gesture, &d.opts.align, d.opts.channelLimit)
	if err != nil {
		return 0, fmt.Errorf("exemplar %s: %w", e.ID, err)
	}
	d.opts.metrics.RecordMismatch(m)
	return m, nil
}

// Scores returns the mismatch score of g against every exemplar, in exemplar
// order. Exemplars skipped under WithSkipIncomparable are left out.
func (d *DP) Scores(ctx context.Context, g gesture.Representation) (scores []Score, err error) {
	snap := d.snapshot()
	start := time.Now()
	defer func() {
		d.opts.metrics.RecordQuery(OpScores, len(snap), time.Since(start), err)
	}()

	return d.scores(ctx, g, snap)
}

func (d *DP) scores(ctx context.Context, g gesture.Representation, snap []Exemplar) ([]Score, error) {
	admitted, err := d.admit(g, snap)
	if err != nil {
		return nil, err
	}
	if len(admitted) == 0 {
		return nil, nil
	}
	results := make([]Score, len(admitted))
	errs := make([]error, len(admitted))

	var eg errgroup.Group
	eg.SetLimit(d.exemplarLimit())
	for i, e := range admitted {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			m, err := d.MismatchScore(ctx, g, e)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = Score{Exemplar: e, Mismatch: m}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := results[:0]
	for i := range results {
		if errs[i] != nil {
			if d.skip(admitted[i], errs[i]) {
				continue
			}
			return nil, errs[i]
		}
		out = append(out, results[i])
	}
	return out, nil
}

// admit checks the comparison preconditions of g against every exemplar in
// snapshot order, before any alignment runs. It returns the first failure,
// or under WithSkipIncomparable the exemplars that passed.
func (d *DP) admit(g gesture.Representation, snap []Exemplar) ([]Exemplar, error) {
	admitted := make([]Exemplar, 0, len(snap))
	for _, e := range snap {
		if err := channel.Check(g, e.Gesture, &d.opts.align); err != nil {
			err = fmt.Errorf("exemplar %s: %w", e.ID, err)
			if d.skip(e, err) {
				continue
			}
			return nil, err
		}
		admitted = append(admitted, e)
	}
	return admitted, nil
}

// Nearest returns the exemplar with the smallest mismatch score.
// It returns ErrNoExemplars if there is nothing to compare against.
func (d *DP) Nearest(ctx context.Context, g gesture.Representation) (best Score, err error) {
	snap := d.snapshot()
	start := time.Now()
	defer func() {
		d.opts.metrics.RecordQuery(OpNearest, len(snap), time.Since(start), err)
	}()

	return d.nearest(ctx, g, snap)
}

func (d *DP) nearest(ctx context.Context, g gesture.Representation, snap []Exemplar) (Score, error) {
	scores, err := d.scores(ctx, g, snap)
	if err != nil {
		return Score{}, err
	}
	if len(scores) == 0 {
		return Score{}, ErrNoExemplars
	}
	mismatches := make([]float64, len(scores))
	for i, s := range scores {
		mismatches[i] = s.Mismatch
	}

	return scores[floats.MinIdx(mismatches)], nil
}

// IsValid implements Comparator.
//
// It returns false for an empty exemplar set. Precondition failures are
// checked for every exemplar before any alignment runs, so they are reported
// exactly as ProbaIsValid reports them. Alignment then stops as soon as one
// exemplar is within the threshold; a match takes precedence over alignment
// failures (ErrNoAlignment) of other exemplars.
func (d *DP) IsValid(ctx context.Context, g gesture.Representation) (valid bool, err error) {
	snap := d.snapshot()
	start := time.Now()
	defer func() {
		d.opts.metrics.RecordQuery(OpIsValid, len(snap), time.Since(start), err)
		d.opts.logger.Debug("is_valid evaluated",
			"exemplars", len(snap),
			"valid", valid,
			"duration", time.Since(start),
			"error", err,
		)
	}()
	admitted, err := d.admit(g, snap)
	if err != nil {
		return false, err
	}
	if len(admitted) == 0 {
		return false, nil
	}

	qctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Only a match cancels the remaining work. Failures are reported after
	// Wait, in exemplar order.
	var found atomic.Bool
	errs := make([]error, len(admitted))
	var eg errgroup.Group
	eg.SetLimit(d.exemplarLimit())
	for i, e := range admitted {
		eg.Go(func() error {
			if found.Load() || qctx.Err() != nil {
				return nil
			}
			m, err := d.MismatchScore(qctx, g, e)
			if err != nil {
				errs[i] = err
				return nil
			}
			if m <= d.threshold {
				found.Store(true)
				cancel()
			}
			return nil
		})
	}
	_ = eg.Wait()
	if found.Load() {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for i, err := range errs {
		if err == nil || d.skip(admitted[i], err) {
			continue
		}
		return false, err
	}

	return false, nil
}

// ProbaIsValid implements Comparator.
//
// It returns Probability(nearest mismatch, threshold), and 0 when there is no
// exemplar to compare against.
func (d *DP) ProbaIsValid(ctx context.Context, g gesture.Representation) (p float64, err error) {
	snap := d.snapshot()
	start := time.Now()
	defer func() {
		d.opts.metrics.RecordQuery(OpProbaIsValid, len(snap), time.Since(start), err)
	}()

	best, err := d.nearest(ctx, g, snap)
	if errors.Is(err, ErrNoExemplars) {
		d.opts.logger.Debug("proba_is_valid without exemplars", "exemplars", len(snap))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	p = Probability(best.Mismatch, d.threshold)
	d.opts.logger.Debug("proba_is_valid evaluated",
		"exemplars", len(snap),
		"nearest", best.Exemplar.ID,
		"min_score", best.Mismatch,
		"proba", p,
		"duration", time.Since(start),
	)

	return p, nil
}

// Probability returns 0.5^(minScore/threshold): 1 at a perfect match, 0.5
// exactly at the threshold, decaying towards 0 beyond it. A zero threshold
// accepts only perfect matches, giving 1 or 0.
func Probability(minScore, threshold float64) float64 {
	if threshold == 0 {
		if minScore == 0 {
			return 1
		}
		return 0
	}
	p := math.Pow(0.5, minScore/threshold)
	// The ratio can round to 1 on either side of the threshold; keep
	// p >= 0.5 exactly when minScore <= threshold.
	switch {
	case minScore > threshold && p >= 0.5:
		return math.Nextafter(0.5, 0)
	case minScore <= threshold && p < 0.5:
		return 0.5
	}
	return p
}

// skip reports whether err is a precondition failure to be skipped, and
// records it if so.
func (d *DP) skip(e Exemplar, err error) bool {
	if !d.opts.skipIncomparable || !IsPrecondition(err) {
		return false
	}
	d.opts.metrics.RecordSkip(err)
	d.opts.logger.Warn("exemplar skipped", "exemplar_id", e.ID, "error", err)
	return true
}

func (d *DP) exemplarLimit() int {
	if d.opts.exemplarLimit > 0 {
		return d.opts.exemplarLimit
	}
	return runtime.GOMAXPROCS(0)
}

// IsPrecondition reports whether err is one of the comparison precondition
// failures: incomparable lengths, invalid budget or channel mismatch.
func IsPrecondition(err error) bool {
	return errors.Is(err, align.ErrIncomparable) ||
		errors.Is(err, align.ErrInvalidBudget) ||
		errors.Is(err, channel.ErrChannelMismatch)
}
