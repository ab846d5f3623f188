// Package scrub moves a bounded one-dimensional position with momentum.
//
// A finger drags the position directly; releasing it with a velocity hands
// the motion over to a coasting session, which carries the position on until
// friction stops it or it runs into a bound.
package scrub

import (
	"log/slog"
	"math"

	"github.com/san-kum/coastsim/internal/coasting"
	"github.com/san-kum/coastsim/internal/decay"
)

// Bounds is the closed interval the position must stay within.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) Clamp(x float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, x))
}

func (b Bounds) Contains(x float64) bool {
	return x >= b.Min && x <= b.Max
}

func (b Bounds) Span() float64 { return b.Max - b.Min }

// Controller is single-threaded like the sessions it starts: every method must
// be called on the scheduler's goroutine.
type Controller struct {
	env      decay.Environment
	bounds   Bounds
	clock    coasting.Clock
	sched    coasting.Scheduler
	logger   *slog.Logger
	observer coasting.Observer
	onChange func(position float64)
	opts     []coasting.Option

	position float64
	enabled  bool
	touching bool

	session   *coasting.Session
	origin    float64
	direction float64
}

// Option configures a [Controller].
type Option func(*Controller)

// WithObserver forwards the events of every coast to o.
func WithObserver(o coasting.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// OnChange registers fn to be called whenever the position changes.
func OnChange(fn func(position float64)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionOptions passes opts to every coasting session the controller
// starts. Observers are set with [WithObserver] instead.
func WithSessionOptions(opts ...coasting.Option) Option {
	return func(c *Controller) { c.opts = append(c.opts, opts...) }
}

// New returns an enabled controller positioned at bounds.Min.
func New(env decay.Environment, bounds Bounds, clock coasting.Clock, sched coasting.Scheduler, opts ...Option) *Controller {
	if bounds.Max < bounds.Min {
		bounds.Min, bounds.Max = bounds.Max, bounds.Min
	}
	c := &Controller{
		env:      env,
		bounds:   bounds,
		clock:    clock,
		sched:    sched,
		logger:   slog.Default(),
		position: bounds.Min,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Position() float64 { return c.position }
func (c *Controller) Bounds() Bounds     { return c.bounds }
func (c *Controller) IsEnabled() bool    { return c.enabled }
func (c *Controller) IsTouching() bool   { return c.touching }

// IsCoasting reports whether a coast is moving the position.
func (c *Controller) IsCoasting() bool {
	return c.session != nil && c.session.IsRunning()
}

// Session returns the most recent coasting session, or nil.
func (c *Controller) Session() *coasting.Session { return c.session }

// SetPosition cancels any coast and moves to x, clamped to the bounds.
func (c *Controller) SetPosition(x float64) {
	c.Cancel()
	c.setPosition(x)
}

// SetBounds replaces the bounds and clamps the position into them.
func (c *Controller) SetBounds(b Bounds) {
	if b.Max < b.Min {
		b.Min, b.Max = b.Max, b.Min
	}
	c.bounds = b
	c.setPosition(c.position)
}

// SetEnabled turns input handling on or off. Disabling cancels any coast and
// ends a touch.
func (c *Controller) SetEnabled(enabled bool) {
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if !enabled {
		c.Cancel()
		c.touching = false
	}
}

// Touch puts a finger down: any coast stops where it is.
func (c *Controller) Touch() {
	if !c.enabled {
		return
	}
	c.Cancel()
	c.touching = true
}

// Drag moves the position by delta while touching.
func (c *Controller) Drag(delta float64) {
	if !c.enabled || !c.touching {
		return
	}
	c.setPosition(c.position + delta)
}

// Release lifts the finger with a signed velocity in position units per
// second. A non-zero velocity starts a coast in its direction unless the
// position already rests on the bound it points at.
func (c *Controller) Release(velocity float64) {
	if !c.enabled {
		return
	}
	c.touching = false
	c.Fling(velocity)
}

// Fling starts a coast with a signed velocity without a preceding touch.
func (c *Controller) Fling(velocity float64) {
	if !c.enabled || velocity == 0 || math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		return
	}
	direction := 1.0
	if velocity < 0 {
		direction = -1
	}
	if (direction > 0 && c.position >= c.bounds.Max) || (direction < 0 && c.position <= c.bounds.Min) {
		return
	}

	c.Cancel()
	c.origin = c.position
	c.direction = direction

	opts := make([]coasting.Option, 0, len(c.opts)+2)
	opts = append(opts, coasting.WithLogger(c.logger))
	opts = append(opts, c.opts...)
	opts = append(opts, coasting.WithObserver(c.sessionObserver()))
	c.session = coasting.New(c.env, math.Abs(velocity), opts...)
	c.logger.Debug("fling", "velocity", velocity, "origin", c.origin, "travel", c.session.StopDistance())
	c.session.Start(c.clock, c.sched)
}

// Cancel stops a running coast, leaving the position where it is.
func (c *Controller) Cancel() {
	if c.session != nil {
		c.session.Stop()
	}
}

// Destination returns where the current coast will come to rest, or the
// current position when not coasting.
func (c *Controller) Destination() float64 {
	if !c.IsCoasting() {
		return c.position
	}
	return c.bounds.Clamp(c.origin + c.direction*c.session.StopDistance())
}

func (c *Controller) sessionObserver() coasting.Observer {
	track := coasting.ObserverFuncs{OnProgress: c.progress}
	if c.observer == nil {
		return track
	}
	return coasting.Observers{c.observer, track}
}

func (c *Controller) progress(elapsed, velocity, distance float64) {
	target := c.origin + c.direction*distance
	c.setPosition(target)
	if c.position != target && c.session != nil {
		c.logger.Debug("coast hit bound", "position", c.position, "elapsed", elapsed)
		c.session.Stop()
	}
}

func (c *Controller) setPosition(x float64) {
	if math.IsNaN(x) {
		return
	}
	x = c.bounds.Clamp(x)
	if x == c.position {
		return
	}
	c.position = x
	if c.onChange != nil {
		c.onChange(x)
	}
}
