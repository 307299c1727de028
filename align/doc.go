// Package align computes a bounded-erasure alignment distance between two
// numeric time series of possibly different length.
//
// 🚀 What is a bounded-erasure alignment?
//
//	Both sequences are consumed left to right. At every step the aligner
//	either matches the next element of a with the next element of b, or
//	erases (skips) the next element of one sequence at a configurable cost.
//	Each sequence may be erased at most Budget times. The distance is the
//	minimal total cost divided by the number of matched pairs, i.e. the
//	average cost of a matched pair once the noisy elements are dropped.
//
//	Typical uses:
//	  • Gesture / motion matching (joint angles over time)
//	  • Sensor traces with dropped or duplicated samples
//	  • Any pair of signals that differ by a few local glitches
//
// ✨ Key features:
//   - pluggable pairwise distance and erase cost (PairwiseFunc, EraseFunc)
//   - fixed or length-dependent erasure budget (Fixed, ByLengths)
//   - flat DP arena indexed by (aPos, aErased, bErased), no per-cell allocation
//   - diagnostics of the optimal alignment via Align (erasures, matched pairs)
//
// ⚙️ Usage:
//
//	import "github.com/katalvlaran/gesturematch/align"
//
//	opts := align.DefaultOptions()
//	opts.Budget = align.Fixed(3)
//	opts.Erase = align.ConstantErase(0.1)
//
//	dist, err := align.Distance(a, b, &opts)
//
// Performance:
//
//   - Time:   O(min(N,M)·B²)
//   - Memory: O(min(N,M)·B²)
//
// where B is the resolved erasure budget.
package align
