// Package gesture defines the multi-channel signal compared by the matcher.
//
// A gesture representation is a rectangular table of shape (time, channels):
// every frame holds one value per channel, e.g. the angles between selected
// hand landmarks. Representations handed to the matcher are immutable and
// free of missing values; upstream stages that clean or resample a signal
// produce a new representation with WithValues instead of editing one in place.
//
// Dense is the concrete implementation, backed by a gonum mat.Dense.
package gesture
