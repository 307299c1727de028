package align_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/gesturematch/align"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroErase builds options with |x−y| matching, free erasures and a fixed budget.
func zeroErase(budget int) *align.Options {
	return &align.Options{
		Budget:   align.Fixed(budget),
		Pairwise: align.AbsDiff,
		Erase:    align.ConstantErase(0),
	}
}

// randomSeq returns a deterministic pseudo-random walk of length n.
func randomSeq(r *rand.Rand, n int) []float64 {
	s := make([]float64, n)
	v := 0.0
	for i := range s {
		v += r.Float64() - 0.5
		s[i] = v
	}
	return s
}

// TestDistance_EmptyInput verifies ErrEmptySequence for empty inputs.
func TestDistance_EmptyInput(t *testing.T) {
	_, err := align.Distance([]float64{}, []float64{1, 2}, nil)
	assert.ErrorIs(t, err, align.ErrEmptySequence, "empty first sequence should error")

	_, err = align.Distance([]float64{1, 2}, nil, nil)
	assert.ErrorIs(t, err, align.ErrEmptySequence, "empty second sequence should error")
}

// TestDistance_Identical checks that a sequence is at distance 0 from itself
// with no erasures allowed.
func TestDistance_Identical(t *testing.T) {
	a := []float64{0, 1, 2, 3}
	b := []float64{0, 1, 2, 3}

	dist, err := align.Distance(a, b, zeroErase(0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, dist)

	r := rand.New(rand.NewSource(7))
	s := randomSeq(r, 40)
	dist, err = align.Distance(s, s, zeroErase(0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, dist)
}

// TestDistance_EraseSpike removes a single outlier from the longer sequence.
func TestDistance_EraseSpike(t *testing.T) {
	a := []float64{0, 1, 5, 2, 3}
	b := []float64{0, 1, 2, 3}
	opts := &align.Options{
		Budget:   align.Fixed(1),
		Pairwise: align.AbsDiff,
		Erase:    align.ConstantErase(0.1),
	}

	dist, err := align.Distance(a, b, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.025, dist, 1e-12, "0.1 erase cost spread over 4 matched pairs")

	res, err := align.Align(a, b, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Matched)
	assert.Equal(t, 1, res.ErasedA, "the spike belongs to a")
	assert.Equal(t, 0, res.ErasedB)
	assert.InDelta(t, 0.1, res.Cost, 1e-12)
	assert.Equal(t, 1, res.Budget)
}

// TestDistance_SwapInvariant checks that argument order does not matter for a
// symmetric pairwise distance.
func TestDistance_SwapInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	opts := align.DefaultOptions()
	opts.Budget = align.Fixed(4)

	for k := 0; k < 20; k++ {
		a := randomSeq(r, 10+r.Intn(5))
		b := randomSeq(r, 10+r.Intn(5))

		ab, err := align.Distance(a, b, &opts)
		require.NoError(t, err)
		ba, err := align.Distance(b, a, &opts)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-12, "case %d", k)
	}
}

// TestDistance_BudgetMonotone checks that a larger budget never increases the
// distance when erase costs are nonnegative.
func TestDistance_BudgetMonotone(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for k := 0; k < 10; k++ {
		a := randomSeq(r, 12)
		b := randomSeq(r, 14)

		prev := math.Inf(1)
		for budget := 2; budget <= 8; budget++ {
			opts := align.DefaultOptions()
			opts.Budget = align.Fixed(budget)
			d, err := align.Distance(a, b, &opts)
			require.NoError(t, err)
			assert.LessOrEqual(t, d, prev+1e-12, "budget %d in case %d", budget, k)
			prev = d
		}
	}
}

// TestDistance_BudgetBoundary checks that |len(a)−len(b)| == budget is accepted
// and one more element is rejected.
func TestDistance_BudgetBoundary(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2, 3, 4, 5}

	opts := align.DefaultOptions()
	opts.Budget = align.Fixed(2)
	dist, err := align.Distance(a, b, &opts)
	require.NoError(t, err, "gap equal to budget must be comparable")
	assert.InDelta(t, 0.1/3, dist, 1e-12)

	opts.Budget = align.Fixed(1)
	_, err = align.Distance(a, b, &opts)
	require.ErrorIs(t, err, align.ErrIncomparable)

	var le *align.LengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.LenA)
	assert.Equal(t, 5, le.LenB)
	assert.Equal(t, 1, le.Budget)

	// Lengths are reported in caller order even when swapped internally.
	_, err = align.Distance(b, a, &opts)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 5, le.LenA)
	assert.Equal(t, 3, le.LenB)
}

// TestDistance_InvalidBudget covers negative literals and bad budget functions.
func TestDistance_InvalidBudget(t *testing.T) {
	a := []float64{1, 2}

	opts := align.DefaultOptions()
	opts.Budget = align.Fixed(-1)
	_, err := align.Distance(a, a, &opts)
	assert.ErrorIs(t, err, align.ErrInvalidBudget)

	opts.Budget = align.ByLengths(func(int, int) int { return -3 })
	_, err = align.Distance(a, a, &opts)
	assert.ErrorIs(t, err, align.ErrInvalidBudget)

	opts.Budget = align.ByLengths(nil)
	_, err = align.Distance(a, a, &opts)
	assert.ErrorIs(t, err, align.ErrInvalidBudget)
}

// TestDistance_ByLengthsReceivesShorterFirst checks the budget function argument order.
func TestDistance_ByLengthsReceivesShorterFirst(t *testing.T) {
	var gotShort, gotLong int
	opts := align.DefaultOptions()
	opts.Budget = align.ByLengths(func(shorter, longer int) int {
		gotShort, gotLong = shorter, longer
		return longer - shorter
	})

	_, err := align.Distance([]float64{1, 2, 3, 4, 5}, []float64{1, 2, 3}, &opts)
	require.NoError(t, err)
	assert.Equal(t, 3, gotShort)
	assert.Equal(t, 5, gotLong)
}

// TestDistance_NoAlignment uses a tiny sentinel so that every terminal state
// stays unreached.
func TestDistance_NoAlignment(t *testing.T) {
	opts := align.Options{
		Budget:      align.Fixed(0),
		Pairwise:    align.AbsDiff,
		Unreachable: 0.5,
	}
	_, err := align.Distance([]float64{0}, []float64{10}, &opts)
	assert.ErrorIs(t, err, align.ErrNoAlignment)
}

// TestDistance_FullErasureSkipped checks that alignments erasing every element
// of the shorter sequence are not counted.
func TestDistance_FullErasureSkipped(t *testing.T) {
	opts := &align.Options{
		Budget:   align.Fixed(1),
		Pairwise: align.AbsDiff,
		Erase:    align.ConstantErase(0),
	}
	dist, err := align.Distance([]float64{0}, []float64{3}, opts)
	require.NoError(t, err)
	assert.Equal(t, 3.0, dist, "the only alignment with a matched pair pays 3")
}

// TestDistance_NilOptionsUseDefaults compares nil options with DefaultOptions.
func TestDistance_NilOptionsUseDefaults(t *testing.T) {
	a := []float64{0, 0.5, 1, 1.5, 2, 2.5}
	b := []float64{0, 1, 1.5, 2, 2.5}

	def := align.DefaultOptions()
	want, err := align.Distance(a, b, &def)
	require.NoError(t, err)
	got, err := align.Distance(a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestEraseFuncs checks the built-in erase costs.
func TestEraseFuncs(t *testing.T) {
	s := []float64{1, 3, 2}
	slope := align.SlopeErase(10)
	assert.InDelta(t, 0.2, slope(s, 0), 1e-12)
	assert.InDelta(t, 0.1, slope(s, 1), 1e-12)
	assert.Equal(t, 0.0, slope(s, 2), "last element is free to erase")

	assert.Equal(t, 0.7, align.ConstantErase(0.7)(s, 1))
	assert.Equal(t, 2.0, align.AbsDiff(1, 3))
	assert.Equal(t, 2.0, align.AbsDiff(3, 1))
}

// TestBudget_Resolve covers fixed and length-dependent budgets.
func TestBudget_Resolve(t *testing.T) {
	n, err := align.Fixed(4).Resolve(10, 12)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var zero align.Budget
	n, err = zero.Resolve(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "zero value is Fixed(0)")

	def := align.DefaultBudget()
	n, err = def.Resolve(100, 103)
	require.NoError(t, err)
	assert.Equal(t, 9, n, "gap 3 plus floor(100*0.015*ln 101)")

	m, err := def.Resolve(103, 100)
	require.NoError(t, err)
	assert.Equal(t, n, m, "argument order does not matter")

	assert.Equal(t, "fixed(4)", align.Fixed(4).String())
	assert.Equal(t, "by-lengths", def.String())
}
