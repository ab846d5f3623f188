// Package coasting drives one fling-and-decelerate episode against a clock.
//
// A [Session] binds a [decay.Environment] to a launch speed and samples the
// closed-form model on every tick of an external per-frame [Scheduler]:
//
//	s := coasting.New(env, 1200, coasting.WithObserver(view))
//	s.Start(link, link)
//	// the scheduler calls s.Tick each selected frame until the coast ends
//
// Lifecycle events reach an [Observer]: WillStart, Progress once per tick,
// then exactly one of Completed or Cancelled.
//
// # Thread Safety
//
// Sessions are NOT thread-safe and never spawn goroutines. Start, Stop and
// Tick must all run on the scheduler's goroutine.
package coasting
