package align

import (
	"errors"
	"fmt"
	"math"
)

// Bounded-erasure alignment
//
// Description:
//
//	Finds the cheapest way to consume a and b left to right using match
//	steps (advance both, pay Pairwise) and erase steps (advance one, pay
//	Erase, spend one unit of that sequence's budget), and reports the total
//	cost divided by the number of matched pairs.
//
// Algorithm Outline:
//  1. Swap so that a is the shorter sequence (na ≤ nb). Resolve the budget B.
//  2. Reject the pair if nb − na > B: no alignment can absorb the gap.
//  3. Allocate a flat table D of size (na+1)·(B+1)·(B+1), fill with the
//     sentinel, D[0,0,0] = 0. State (i, ea, eb) means i elements of a consumed,
//     ea of them erased, eb elements of b erased; b's position is j = i−ea+eb.
//  4. For i = 0..na, ea = 0..min(i,B), eb = 0..B, from every reached state:
//     match:    D[i+1,ea,eb]   ← D[i,ea,eb] + Pairwise(a[i], b[j])  (i<na, j<nb)
//     erase a:  D[i+1,ea+1,eb] ← D[i,ea,eb] + Erase(a, i)           (ea<B, i<na)
//     erase b:  D[i,ea,eb+1]   ← D[i,ea,eb] + Erase(b, j)           (eb<B, j<nb)
//  5. Answer = min over ea of D[na, ea, ea+(nb−na)] / (na − ea), skipping
//     unreached states and states with no matched pair.
//
// Complexity:
//
//	Time   = O(na·B²)
//	Memory = O(na·B²)
//
// Errors:
//   - ErrEmptySequence — if either input is empty.
//   - ErrInvalidBudget — if the budget resolves to a negative number.
//   - ErrIncomparable  — if the length gap exceeds the budget (*LengthError).
//   - ErrNoAlignment   — if no terminal state with a matched pair is reachable.
var (
	// ErrEmptySequence indicates one or both inputs are empty.
	ErrEmptySequence = errors.New("align: input sequences must be non-empty")

	// ErrInvalidBudget indicates a negative or unusable erasure budget.
	ErrInvalidBudget = errors.New("align: erasure budget must be a nonnegative integer")

	// ErrIncomparable indicates that the length gap exceeds the erasure budget.
	ErrIncomparable = errors.New("align: sequences are not comparable")

	// ErrNoAlignment indicates that no complete alignment keeps a matched pair.
	ErrNoAlignment = errors.New("align: no complete alignment reachable")
)

// LengthError reports a length gap the erasure budget cannot absorb.
// It matches ErrIncomparable under errors.Is.
type LengthError struct {
	LenA, LenB int
	Budget     int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("align: sequences are not comparable, try increasing the erasure budget: len(a)=%d, len(b)=%d, budget=%d",
		e.LenA, e.LenB, e.Budget)
}

// Is reports whether target is ErrIncomparable.
func (e *LengthError) Is(target error) bool { return target == ErrIncomparable }

// Distance returns the minimal average matched-pair cost between a and b.
// A nil opts means DefaultOptions().
//
// Example:
//
//	opts := align.Options{Budget: align.Fixed(1), Erase: align.ConstantErase(0.1)}
//	d, err := align.Distance([]float64{0, 1, 5, 2, 3}, []float64{0, 1, 2, 3}, &opts)
//	// d == 0.025
func Distance(a, b []float64, opts *Options) (float64, error) {
	res, err := Align(a, b, opts)
	if err != nil {
		return 0, err
	}

	return res.Distance, nil
}

// Align runs the alignment and returns the distance together with the shape
// of the optimal alignment.
func Align(a, b []float64, opts *Options) (Result, error) {
	if len(a) == 0 || len(b) == 0 {
		return Result{}, ErrEmptySequence
	}

	// Apply options or defaults
	o := DefaultOptions()
	if opts != nil {
		o.Budget = opts.Budget
		if opts.Pairwise != nil {
			o.Pairwise = opts.Pairwise
		}
		if opts.Erase != nil {
			o.Erase = opts.Erase
		}
		if opts.Unreachable != 0 {
			o.Unreachable = opts.Unreachable
		}
	}

	swapped := false
	if len(a) > len(b) {
		a, b = b, a
		swapped = true
	}
	na, nb := len(a), len(b)

	budget, err := o.Budget.Resolve(na, nb)
	if err != nil {
		return Result{}, err
	}
	gap := nb - na
	if gap > budget {
		if swapped {
			return Result{}, &LengthError{LenA: nb, LenB: na, Budget: budget}
		}
		return Result{}, &LengthError{LenA: na, LenB: nb, Budget: budget}
	}

	t := newTable(na, budget, o.Unreachable)
	t.set(0, 0, 0, 0)

	// Fill DP
	for i := 0; i <= na; i++ {
		for ea := 0; ea <= budget && ea <= i; ea++ {
			for eb := 0; eb <= budget; eb++ {
				cur := t.get(i, ea, eb)
				if cur >= o.Unreachable {
					continue
				}
				j := i - ea + eb
				if j > nb {
					continue
				}
				if i < na && j < nb {
					t.relax(i+1, ea, eb, cur+o.Pairwise(a[i], b[j]))
				}
				if ea < budget && i < na {
					t.relax(i+1, ea+1, eb, cur+o.Erase(a, i))
				}
				if eb < budget && j < nb {
					t.relax(i, ea, eb+1, cur+o.Erase(b, j))
				}
			}
		}
	}

	// Scan terminal states: i == na and j == nb, i.e. eb == ea + gap.
	best := Result{Distance: math.Inf(1), Budget: budget}
	found := false
	for ea := 0; ea <= na && ea+gap <= budget; ea++ {
		matched := na - ea
		if matched == 0 {
			continue
		}
		eb := ea + gap
		cost := t.get(na, ea, eb)
		if cost >= o.Unreachable {
			continue
		}
		avg := cost / float64(matched)
		if !found || avg < best.Distance {
			best.Distance = avg
			best.Cost = cost
			best.Matched = matched
			best.ErasedA, best.ErasedB = ea, eb
			found = true
		}
	}
	if !found {
		return Result{}, ErrNoAlignment
	}
	if swapped {
		best.ErasedA, best.ErasedB = best.ErasedB, best.ErasedA
	}

	return best, nil
}

// table is the flat (na+1)×(B+1)×(B+1) DP arena.
type table struct {
	w     int
	cells []float64
}

func newTable(na, budget int, unreachable float64) *table {
	w := budget + 1
	cells := make([]float64, (na+1)*w*w)
	for k := range cells {
		cells[k] = unreachable
	}

	return &table{w: w, cells: cells}
}

func (t *table) index(i, ea, eb int) int {
	return (i*t.w+ea)*t.w + eb
}

func (t *table) get(i, ea, eb int) float64 {
	return t.cells[t.index(i, ea, eb)]
}

func (t *table) set(i, ea, eb int, v float64) {
	t.cells[t.index(i, ea, eb)] = v
}

// relax lowers the cell to v if v is smaller.
func (t *table) relax(i, ea, eb int, v float64) {
	k := t.index(i, ea, eb)
	if v < t.cells[k] {
		t.cells[k] = v
	}
}
