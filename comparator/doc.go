// Package comparator keeps a growing set of valid gesture exemplars and
// decides whether a query gesture matches one of them.
//
// For every exemplar the query is aligned channel by channel (package
// channel) and the worst channel gives the exemplar's mismatch score: a
// gesture is only as good as its weakest channel. The query is valid if any
// exemplar scores at most the threshold; its probability of being valid is
// 0.5^(best/threshold), so both decisions agree at the threshold.
//
// Errors:
//
//	ErrNegativeThreshold - threshold below zero at construction.
//	ErrNoExemplars       - Nearest on an empty (or fully skipped) exemplar set.
//	align.ErrIncomparable, align.ErrInvalidBudget, channel.ErrChannelMismatch
//	                     - propagated from the comparison unless
//	                       WithSkipIncomparable is set.
//
// Usage:
//
//	c, _ := comparator.New(comparator.DefaultThreshold,
//		comparator.WithBudget(align.DefaultBudget()),
//	)
//	c.AddValidGesture(reference)
//	ok, err := c.IsValid(ctx, query)
//	p, err := c.ProbaIsValid(ctx, query)
package comparator
