package align

import (
	"fmt"
	"math"
)

// PairwiseFunc returns the cost of matching x against y.
// Implementations should be symmetric and nonnegative.
type PairwiseFunc func(x, y float64) float64

// EraseFunc returns the cost of erasing seq[i].
// It may look at neighbouring elements but must not modify seq.
type EraseFunc func(seq []float64, i int) float64

// AbsDiff is the default pairwise distance |x − y|.
func AbsDiff(x, y float64) float64 {
	return math.Abs(x - y)
}

// SlopeErase returns an EraseFunc charging the local rate of change divided by
// scale: |seq[i+1] − seq[i]| / scale. Erasing the last element is free.
func SlopeErase(scale float64) EraseFunc {
	return func(seq []float64, i int) float64 {
		if i+1 < len(seq) {
			return math.Abs(seq[i+1]-seq[i]) / scale
		}
		return 0
	}
}

// ConstantErase returns an EraseFunc charging c for every erased element.
func ConstantErase(c float64) EraseFunc {
	return func([]float64, int) float64 { return c }
}

type budgetKind int

const (
	budgetFixed budgetKind = iota
	budgetByLengths
)

// Budget is the maximal number of erasures allowed from each sequence.
//
// It is either a fixed count (Fixed) or a function of the two sequence
// lengths (ByLengths). The zero value is Fixed(0): sequences must have equal
// length and no element may be skipped.
type Budget struct {
	kind budgetKind
	n    int
	fn   func(shorter, longer int) int
}

// Fixed returns a constant budget of n erasures per sequence.
func Fixed(n int) Budget {
	return Budget{kind: budgetFixed, n: n}
}

// ByLengths returns a budget computed from the lengths of the shorter and the
// longer sequence, in that order.
func ByLengths(fn func(shorter, longer int) int) Budget {
	return Budget{kind: budgetByLengths, fn: fn}
}

// DefaultBudget grows with the sequences: the length gap plus
// ⌊m·0.015·ln(m+1)⌋ where m is the shorter length.
func DefaultBudget() Budget {
	return ByLengths(func(shorter, longer int) int {
		m := float64(shorter)
		return (longer - shorter) + int(m*0.015*math.Log(m+1))
	})
}

// Resolve returns the concrete budget for sequences of the given lengths.
// The arguments may be passed in any order.
func (b Budget) Resolve(la, lb int) (int, error) {
	if la > lb {
		la, lb = lb, la
	}
	var n int
	switch b.kind {
	case budgetFixed:
		n = b.n
	case budgetByLengths:
		if b.fn == nil {
			return 0, fmt.Errorf("%w: nil budget function", ErrInvalidBudget)
		}
		n = b.fn(la, lb)
	default:
		return 0, fmt.Errorf("%w: unknown budget kind %d", ErrInvalidBudget, b.kind)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidBudget, n)
	}

	return n, nil
}

// String renders the budget for logs.
func (b Budget) String() string {
	if b.kind == budgetByLengths {
		return "by-lengths"
	}
	return fmt.Sprintf("fixed(%d)", b.n)
}

// Options configures Distance and Align.
//
// Fields:
//   - Budget      — erasure budget per sequence (Fixed or ByLengths).
//   - Pairwise    — cost of matching two elements; nil means AbsDiff.
//   - Erase       — cost of erasing one element; nil means SlopeErase(10).
//   - Unreachable — sentinel marking DP states that were never reached. It must
//     exceed every attainable total cost. Zero means +Inf.
//
// Example:
//
//	opts := align.Options{
//	  Budget:   align.Fixed(2),
//	  Pairwise: align.AbsDiff,
//	  Erase:    align.ConstantErase(0.1),
//	}
//	dist, err := align.Distance(a, b, &opts)
type Options struct {
	Budget      Budget
	Pairwise    PairwiseFunc
	Erase       EraseFunc
	Unreachable float64
}

// DefaultEraseScale divides the local slope in the default erase cost.
const DefaultEraseScale = 10.0

// DefaultMaxErases is the fixed budget used by DefaultOptions.
const DefaultMaxErases = 10

// DefaultOptions returns Fixed(10) erasures, |x − y| matching and
// slope-proportional erasing.
func DefaultOptions() Options {
	return Options{
		Budget:      Fixed(DefaultMaxErases),
		Pairwise:    AbsDiff,
		Erase:       SlopeErase(DefaultEraseScale),
		Unreachable: math.Inf(1),
	}
}

// Result describes the optimal alignment found by Align.
//
// ErasedA and ErasedB refer to the arguments in the order they were passed,
// even though the aligner internally treats the shorter one as first.
type Result struct {
	// Distance is the minimal average cost per matched pair.
	Distance float64

	// Cost is the total cost (matches plus erasures) of the optimal alignment.
	Cost float64

	// Matched is the number of matched pairs.
	Matched int

	// ErasedA and ErasedB count erasures from a and b.
	ErasedA, ErasedB int

	// Budget is the resolved erasure budget.
	Budget int
}
