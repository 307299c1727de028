package gesture

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for gesture construction.
var (
	// ErrEmpty indicates a representation without frames or without channels.
	ErrEmpty = errors.New("gesture: representation must have at least one frame and one channel")

	// ErrRagged indicates frames (or channels) of different lengths.
	ErrRagged = errors.New("gesture: frames must all have the same number of channels")

	// ErrNaNInf indicates a NaN or ±Inf value; the matcher needs clean signals.
	ErrNaNInf = errors.New("gesture: NaN or Inf encountered")

	// ErrChannelCount indicates a replacement with a different channel count.
	ErrChannelCount = errors.New("gesture: channel count cannot change")

	// ErrOutOfRange indicates an invalid frame window.
	ErrOutOfRange = errors.New("gesture: frame range out of bounds")
)

// Representation is the read-only view of a gesture the matcher consumes.
//
// Indexing methods panic on out-of-range indices, like gonum's mat.Matrix.
type Representation interface {
	// Len is the number of frames.
	Len() int

	// Channels is the number of values per frame.
	Channels() int

	// At returns the value of channel c in frame t.
	At(t, c int) float64

	// Frame returns a copy of frame t.
	Frame(t int) []float64

	// Channel returns a copy of channel c over time.
	Channel(c int) []float64
}

// Validate checks the shape invariants of any Representation.
func Validate(r Representation) error {
	if d, ok := r.(*Dense); ok && d == nil {
		return ErrEmpty
	}
	if r == nil || r.Len() < 1 || r.Channels() < 1 {
		return ErrEmpty
	}
	return nil
}

// Dense is an immutable Representation stored as a frames×channels matrix.
type Dense struct {
	m *mat.Dense
}

var _ Representation = (*Dense)(nil)

// New builds a representation from frames, one slice of channel values per frame.
// The input is copied.
func New(frames [][]float64) (*Dense, error) {
	if len(frames) == 0 || len(frames[0]) == 0 {
		return nil, ErrEmpty
	}
	c := len(frames[0])
	data := make([]float64, 0, len(frames)*c)
	for t, f := range frames {
		if len(f) != c {
			return nil, fmt.Errorf("%w: frame %d has %d values, want %d", ErrRagged, t, len(f), c)
		}
		data = append(data, f...)
	}
	if err := checkFinite(data); err != nil {
		return nil, err
	}

	return &Dense{m: mat.NewDense(len(frames), c, data)}, nil
}

// FromChannels builds a representation from per-channel time series.
// The input is copied.
func FromChannels(channels [][]float64) (*Dense, error) {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, ErrEmpty
	}
	n := len(channels[0])
	m := mat.NewDense(n, len(channels), nil)
	for c, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d", ErrRagged, c, len(ch), n)
		}
		if err := checkFinite(ch); err != nil {
			return nil, err
		}
		m.SetCol(c, ch)
	}

	return &Dense{m: m}, nil
}

// FromMatrix copies m (frames×channels) into a new representation.
func FromMatrix(m mat.Matrix) (*Dense, error) {
	if m == nil {
		return nil, ErrEmpty
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmpty
	}
	d := mat.DenseCopyOf(m)
	if err := checkFinite(d.RawMatrix().Data); err != nil {
		return nil, err
	}

	return &Dense{m: d}, nil
}

// Len implements Representation. A nil or zero Dense has no frames.
func (d *Dense) Len() int {
	if d == nil || d.m == nil {
		return 0
	}
	r, _ := d.m.Dims()
	return r
}

// Channels implements Representation.
func (d *Dense) Channels() int {
	if d == nil || d.m == nil {
		return 0
	}
	_, c := d.m.Dims()
	return c
}

// At implements Representation.
func (d *Dense) At(t, c int) float64 { return d.m.At(t, c) }

// Frame implements Representation.
func (d *Dense) Frame(t int) []float64 { return mat.Row(nil, t, d.m) }

// Channel implements Representation.
func (d *Dense) Channel(c int) []float64 { return mat.Col(nil, c, d.m) }

// Frames returns a copy of all frames.
func (d *Dense) Frames() [][]float64 {
	out := make([][]float64, d.Len())
	for t := range out {
		out[t] = d.Frame(t)
	}
	return out
}

// Matrix returns a copy of the underlying frames×channels matrix.
func (d *Dense) Matrix() *mat.Dense { return mat.DenseCopyOf(d.m) }

// WithValues returns a new representation holding m. The channel count must
// stay the same; the number of frames may change (e.g. after trimming).
// The receiver is not modified.
func (d *Dense) WithValues(m mat.Matrix) (*Dense, error) {
	if m != nil {
		if _, c := m.Dims(); c != d.Channels() {
			return nil, fmt.Errorf("%w: have %d, got %d", ErrChannelCount, d.Channels(), c)
		}
	}
	return FromMatrix(m)
}

// Slice returns a copy of frames [from, to).
func (d *Dense) Slice(from, to int) (*Dense, error) {
	if from < 0 || to > d.Len() || from >= to {
		return nil, fmt.Errorf("%w: [%d, %d) of %d frames", ErrOutOfRange, from, to, d.Len())
	}
	return FromMatrix(d.m.Slice(from, to, 0, d.Channels()))
}

func checkFinite(data []float64) error {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: at flat index %d", ErrNaNInf, i)
		}
	}
	return nil
}
