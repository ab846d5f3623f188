package metrics

import (
	"math"

	"github.com/san-kum/coastsim/internal/coasting"
)

// PeakVelocity is the largest sampled speed.
type PeakVelocity struct {
	peak float64
}

func NewPeakVelocity() *PeakVelocity { return &PeakVelocity{} }

func (p *PeakVelocity) Name() string { return "peak_velocity" }

func (p *PeakVelocity) Observe(s coasting.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.Velocity))
}

func (p *PeakVelocity) Value() float64 { return p.peak }
func (p *PeakVelocity) Reset()         { p.peak = 0 }

// Ticks counts samples.
type Ticks struct {
	n int
}

func NewTicks() *Ticks { return &Ticks{} }

func (t *Ticks) Name() string              { return "ticks" }
func (t *Ticks) Observe(_ coasting.Sample) { t.n++ }
func (t *Ticks) Value() float64            { return float64(t.n) }
func (t *Ticks) Reset()                    { t.n = 0 }
