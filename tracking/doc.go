// Package tracking provides the position-reconciliation and interpolation
// engine behind the live map.
//
// This package handles:
// - Reconciling a periodic feed batch into the working set of tracked trains
// - Evicting trains that vanished from the feed
// - Sampling a linearly interpolated position for every train at frame rate
//
// The Store type holds one interpolation window per train; Reconcile is its
// only writer and SampleAll its read-only consumer, so a session that guards
// both behind a mutex gets whole-batch atomicity between frames.
package tracking
