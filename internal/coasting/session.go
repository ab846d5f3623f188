package coasting

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/coastsim/internal/decay"
)

const (
	// DefaultFrameInterval ticks every other frame, ~30 Hz on a 60 Hz display.
	DefaultFrameInterval = 2

	// DefaultFrameBudget is one 60 Hz frame.
	DefaultFrameBudget = time.Second / 60
)

// cached is a value computed on first use. Its inputs never change, so it is
// never invalidated.
type cached struct {
	value float64
	valid bool
}

func (c *cached) get(compute func() float64) float64 {
	if !c.valid {
		c.value = compute()
		c.valid = true
	}
	return c.value
}

// Session tracks a single coast from a fixed launch speed.
type Session struct {
	id       string
	env      decay.Environment
	v0       float64
	observer Observer
	logger   *slog.Logger
	interval int
	budget   time.Duration
	meter    Clock

	tStop cached
	dStop cached

	state   State
	outcome Outcome
	clock   Clock
	handle  Handle
	start   time.Duration
	// run increments on every Start so a callback can tell whether the run it
	// was invoked for is still current.
	run uint64
}

// Option configures a [Session].
type Option func(*Session)

func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFrameInterval sets how many display frames pass between ticks.
func WithFrameInterval(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.interval = n
		}
	}
}

// WithFrameBudget sets the tick cost above which an overrun is reported.
func WithFrameBudget(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithCostClock sets the clock tick costs are measured with. It defaults to
// the wall clock, independent of the clock passed to Start.
func WithCostClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.meter = c
		}
	}
}

func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New returns a session for launch speed v0 in env. v0 is a magnitude; any
// direction is applied by the caller.
func New(env decay.Environment, v0 float64, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		env:      env,
		v0:       v0,
		observer: NopObserver{},
		logger:   slog.Default(),
		interval: DefaultFrameInterval,
		budget:   DefaultFrameBudget,
		meter:    wallClock{origin: time.Now()},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

func (s *Session) ID() string                     { return s.id }
func (s *Session) Environment() decay.Environment { return s.env }
func (s *Session) InitialVelocity() float64       { return s.v0 }
func (s *Session) State() State                   { return s.state }
func (s *Session) Outcome() Outcome               { return s.outcome }
func (s *Session) IsRunning() bool                { return s.state == Running }
func (s *Session) FrameInterval() int             { return s.interval }
func (s *Session) FrameBudget() time.Duration     { return s.budget }
func (s *Session) Velocity(t float64) float64     { return s.env.Velocity(s.v0, t) }

// StopTime returns the elapsed time at which the coast ends.
func (s *Session) StopTime() float64 {
	return s.tStop.get(func() float64 { return s.env.StoppingTime(s.v0) })
}

// StopDistance returns the total distance of the coast.
func (s *Session) StopDistance() float64 {
	return s.dStop.get(func() float64 { return s.Distance(s.StopTime()) })
}

// Distance returns the distance travelled by elapsed time t. Past the
// stopping time it stays at [Session.StopDistance].
func (s *Session) Distance(t float64) float64 {
	return s.env.Distance(s.v0, math.Min(t, s.StopTime()))
}

// TimeForDistance returns the elapsed time at which the coast has travelled
// d, or NaN when d is negative or the coast never gets that far.
func (s *Session) TimeForDistance(d float64) float64 {
	if d < 0 || d > s.StopDistance() {
		return math.NaN()
	}
	return s.env.TimeForDistance(s.v0, d)
}

// Start begins sampling: the start instant is read from clock and Tick is
// registered with sched. Starting a running session cancels the current run
// first.
func (s *Session) Start(clock Clock, sched Scheduler) {
	if s.state == Running {
		s.Stop()
		// An observer restarted the session from Cancelled.
		if s.state == Running {
			return
		}
	}

	s.run++
	run := s.run
	s.clock = clock
	s.start = clock.Now()
	s.state = Running
	s.outcome = None

	s.logger.Debug("coast starting", "v0", s.v0, "t_stop", s.StopTime(), "distance", s.StopDistance())
	s.observer.WillStart()
	if s.run != run || s.state != Running {
		return
	}
	s.release()
	s.handle = sched.Register(s.Tick, s.interval)
}

// Stop cancels a running coast. On a session that is not running it only
// releases a leftover registration.
func (s *Session) Stop() {
	if s.state != Running {
		s.release()
		return
	}
	s.release()
	s.state = Stopped
	s.outcome = Cancelled
	s.logger.Debug("coast cancelled")
	s.observer.Cancelled()
}

// Cancel is an alias for [Session.Stop].
func (s *Session) Cancel() { s.Stop() }

// Tick samples the coast at the current clock reading. It is the scheduler
// callback and ignores calls while the session is not running.
func (s *Session) Tick() {
	if s.state != Running {
		return
	}
	run := s.run
	begin := s.meter.Now()

	elapsed := (s.clock.Now() - s.start).Seconds()
	s.observer.Progress(elapsed, s.Velocity(elapsed), s.Distance(elapsed))

	// A NaN stopping time fails the comparison and ends the coast.
	if s.run == run && s.state == Running && !(elapsed < s.StopTime()) {
		s.release()
		s.state = Stopped
		s.outcome = Completed
		s.logger.Debug("coast completed", "elapsed", elapsed)
		s.observer.Completed(elapsed)
	}

	if cost := s.meter.Now() - begin; cost > s.budget {
		s.logger.Warn("coast tick over frame budget", "cost", cost, "budget", s.budget, "elapsed", elapsed)
		if o, ok := s.observer.(OverrunObserver); ok {
			o.Overrun(cost, s.budget)
		}
	}
}

func (s *Session) release() {
	if s.handle != nil {
		s.handle.Invalidate()
		s.handle = nil
	}
}

type wallClock struct {
	origin time.Time
}

func (w wallClock) Now() time.Duration { return time.Since(w.origin) }
