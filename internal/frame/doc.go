// Package frame provides per-frame drivers for coasting sessions.
//
// A driver is both the [coasting.Clock] and the [coasting.Scheduler] of a
// session, the way a display link supplies a frame timestamp and a callback:
//
//   - [Manual]: advanced explicitly one frame at a time; deterministic, used by
//     tests, offline runs and the terminal viewer
//   - [Link]: a real-time run loop on a [time.Ticker]
//
// Callbacks registered with an interval multiplier n fire on every n-th frame
// after registration.
package frame
