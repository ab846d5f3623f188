package metrics

import (
	"time"

	"github.com/san-kum/coastsim/internal/coasting"
)

// Metric summarizes the samples of one coast.
type Metric interface {
	Name() string
	Observe(s coasting.Sample)
	Value() float64
	Reset()
}

// Collector feeds coast samples to a set of metrics. It is a
// [coasting.Observer] and also counts tick overruns.
type Collector struct {
	metrics  []Metric
	overruns int
}

func NewCollector(ms ...Metric) *Collector {
	return &Collector{metrics: ms}
}

// Default returns the collector used by the CLI.
func Default() *Collector {
	return NewCollector(NewPeakVelocity(), NewTravel(), NewTicks(), NewMaxStep())
}

func (c *Collector) Add(m Metric) { c.metrics = append(c.metrics, m) }

func (c *Collector) WillStart() {
	for _, m := range c.metrics {
		m.Reset()
	}
	c.overruns = 0
}

func (c *Collector) Progress(elapsed, velocity, distance float64) {
	s := coasting.Sample{Elapsed: elapsed, Velocity: velocity, Distance: distance}
	for _, m := range c.metrics {
		m.Observe(s)
	}
}

func (c *Collector) Completed(float64)          {}
func (c *Collector) Cancelled()                 {}
func (c *Collector) Overrun(_, _ time.Duration) { c.overruns++ }

// Values returns every metric by name plus "overruns".
func (c *Collector) Values() map[string]float64 {
	out := make(map[string]float64, len(c.metrics)+1)
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	out["overruns"] = float64(c.overruns)
	return out
}
