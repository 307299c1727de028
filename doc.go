// Package gesturematch decides whether a recorded gesture matches one of a set
// of known-valid exemplars.
//
// A gesture is a fixed-width table: one row per frame, one column per sensor
// channel. Two gestures are compared channel by channel with a bounded-erasure
// dynamic-programming aligner; the worst channel is the mismatch score, and a
// query is valid when its best exemplar scores within the threshold.
//
// Packages:
//
//	align/      — bounded-erasure aligner for two scalar sequences (Distance, Align)
//	gesture/    — Representation interface and the gonum-backed Dense gesture
//	channel/    — per-channel distances and the worst-channel mismatch
//	comparator/ — exemplar store with IsValid and ProbaIsValid queries
//	metrics/    — Prometheus collector for comparator activity
//	store/      — JSON persistence of exemplars and gesture files
//	config/     — environment and .env configuration for the CLI
//	logging/    — slog construction helpers
//
// Quick example:
//
//	c, _ := comparator.New(comparator.DefaultThreshold)
//	c.AddValidGesture(recorded)
//	ok, _ := c.IsValid(ctx, attempt)
//	p, _ := c.ProbaIsValid(ctx, attempt) // 1 at zero mismatch, 0.5 at the threshold
//
// The cmd/gesturematch tool wraps the same flow for gesture files on disk.
//
//	go install github.com/katalvlaran/gesturematch/cmd/gesturematch@latest
package gesturematch
