package coasting

import (
	"log/slog"
	"time"
)

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) WillStart()                 {}
func (NopObserver) Progress(_, _, _ float64)   {}
func (NopObserver) Completed(float64)          {}
func (NopObserver) Cancelled()                 {}
func (NopObserver) Overrun(_, _ time.Duration) {}

// ObserverFuncs adapts optional callbacks to [Observer]. Nil fields are
// skipped.
type ObserverFuncs struct {
	OnWillStart func()
	OnProgress  func(elapsed, velocity, distance float64)
	OnCompleted func(elapsed float64)
	OnCancelled func()
	OnOverrun   func(cost, budget time.Duration)
}

func (f ObserverFuncs) WillStart() {
	if f.OnWillStart != nil {
		f.OnWillStart()
	}
}

func (f ObserverFuncs) Progress(elapsed, velocity, distance float64) {
	if f.OnProgress != nil {
		f.OnProgress(elapsed, velocity, distance)
	}
}

func (f ObserverFuncs) Completed(elapsed float64) {
	if f.OnCompleted != nil {
		f.OnCompleted(elapsed)
	}
}

func (f ObserverFuncs) Cancelled() {
	if f.OnCancelled != nil {
		f.OnCancelled()
	}
}

func (f ObserverFuncs) Overrun(cost, budget time.Duration) {
	if f.OnOverrun != nil {
		f.OnOverrun(cost, budget)
	}
}

// Observers fans events out in order.
type Observers []Observer

func (os Observers) WillStart() {
	for _, o := range os {
		o.WillStart()
	}
}

func (os Observers) Progress(elapsed, velocity, distance float64) {
	for _, o := range os {
		o.Progress(elapsed, velocity, distance)
	}
}

func (os Observers) Completed(elapsed float64) {
	for _, o := range os {
		o.Completed(elapsed)
	}
}

func (os Observers) Cancelled() {
	for _, o := range os {
		o.Cancelled()
	}
}

func (os Observers) Overrun(cost, budget time.Duration) {
	for _, o := range os {
		if oo, ok := o.(OverrunObserver); ok {
			oo.Overrun(cost, budget)
		}
	}
}

// LogObserver writes every event to a logger. Progress is logged at debug
// level.
type LogObserver struct {
	Logger *slog.Logger
}

func (l LogObserver) log() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l LogObserver) WillStart() { l.log().Info("will start coast") }

func (l LogObserver) Progress(elapsed, velocity, distance float64) {
	l.log().Debug("coasting", "elapsed", elapsed, "velocity", velocity, "distance", distance)
}

func (l LogObserver) Completed(elapsed float64) {
	l.log().Info("did end coast", "elapsed", elapsed)
}

func (l LogObserver) Cancelled() { l.log().Info("did cancel coast") }

// Recorder keeps every sample of the most recent run.
type Recorder struct {
	Samples  []Sample
	Outcome  Outcome
	Elapsed  float64
	Starts   int
	Overruns int
}

func NewRecorder() *Recorder {
	return &Recorder{Samples: make([]Sample, 0, 64)}
}

func (r *Recorder) WillStart() {
	r.Starts++
	r.Samples = r.Samples[:0]
	r.Outcome = None
	r.Elapsed = 0
}

func (r *Recorder) Progress(elapsed, velocity, distance float64) {
	r.Samples = append(r.Samples, Sample{Elapsed: elapsed, Velocity: velocity, Distance: distance})
	r.Elapsed = elapsed
}

func (r *Recorder) Completed(elapsed float64) {
	r.Outcome = Completed
	r.Elapsed = elapsed
}

func (r *Recorder) Cancelled() { r.Outcome = Cancelled }

func (r *Recorder) Overrun(_, _ time.Duration) { r.Overruns++ }

// Last returns the most recent sample, or false when none was recorded.
func (r *Recorder) Last() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}
