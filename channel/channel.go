// Package channel applies the aligner to every channel of two gestures.
//
// Channel k of the first representation is compared with channel k of the
// second one; channels never interact, so they are aligned concurrently.
package channel

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/gesturematch/align"
	"github.com/katalvlaran/gesturematch/gesture"
)

// ErrChannelMismatch indicates representations with different channel counts.
var ErrChannelMismatch = errors.New("channel: channel counts differ")

// CountError carries both channel counts. It matches ErrChannelMismatch.
type CountError struct {
	Got, Want int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("channel: channel counts differ: %d vs %d", e.Got, e.Want)
}

// Is reports whether target is ErrChannelMismatch.
func (e *CountError) Is(target error) bool { return target == ErrChannelMismatch }

// Check reports, without running the aligner, whether x and y can be
// compared at all: both must be valid, have the same channel count, and the
// resolved erasure budget must cover their length gap. A nil opts means
// align.DefaultOptions().
//
// Every channel of a representation has the same length, so a pair that
// passes Check only fails in Distances on cancellation or ErrNoAlignment.
func Check(x, y gesture.Representation, opts *align.Options) error {
	if err := gesture.Validate(x); err != nil {
		return err
	}
	if err := gesture.Validate(y); err != nil {
		return err
	}
	if x.Channels() != y.Channels() {
		return &CountError{Got: x.Channels(), Want: y.Channels()}
	}

	budget := align.DefaultOptions().Budget
	if opts != nil {
		budget = opts.Budget
	}
	lx, ly := x.Len(), y.Len()
	n, err := budget.Resolve(lx, ly)
	if err != nil {
		return err
	}
	if gap := lx - ly; gap > n || -gap > n {
		return &align.LengthError{LenA: lx, LenB: ly, Budget: n}
	}
	return nil
}

// Distances returns one alignment distance per channel of x and y.
//
// At most limit channels are aligned at the same time; limit <= 0 means
// runtime.GOMAXPROCS(0). The first failing channel cancels the others and its
// error is returned; no partial vector is returned on failure.
func Distances(ctx context.Context, x, y gesture.Representation, opts *align.Options, limit int) ([]float64, error) {
	if err := Check(x, y, opts); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	n := x.Channels()
	out := make([]float64, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for c := 0; c < n; c++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := align.Distance(x.Channel(c), y.Channel(c), opts)
			if err != nil {
				return fmt.Errorf("channel %d: %w", c, err)
			}
			out[c] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Max returns the largest distance, the worst matching channel.
// It panics on an empty slice.
func Max(d []float64) float64 {
	return floats.Max(d)
}

// Mismatch is Max(Distances(...)): how far apart two gestures are, judged by
// their weakest channel.
func Mismatch(ctx context.Context, x, y gesture.Representation, opts *align.Options, limit int) (float64, error) {
	d, err := Distances(ctx, x, y, opts, limit)
	if err != nil {
		return 0, err
	}
	return Max(d), nil
}
