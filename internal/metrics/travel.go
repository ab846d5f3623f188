package metrics

import (
	"math"

	"github.com/san-kum/coastsim/internal/coasting"
)

// Travel is the distance of the latest sample.
type Travel struct {
	distance float64
}

func NewTravel() *Travel { return &Travel{} }

func (t *Travel) Name() string              { return "travel" }
func (t *Travel) Observe(s coasting.Sample) { t.distance = s.Distance }
func (t *Travel) Value() float64            { return t.distance }
func (t *Travel) Reset()                    { t.distance = 0 }

// MaxStep is the largest distance covered between two consecutive samples,
// the biggest jump a viewer sees on screen.
type MaxStep struct {
	last    float64
	max     float64
	samples int
}

func NewMaxStep() *MaxStep { return &MaxStep{} }

func (m *MaxStep) Name() string { return "max_step" }

func (m *MaxStep) Observe(s coasting.Sample) {
	if m.samples > 0 {
		m.max = math.Max(m.max, math.Abs(s.Distance-m.last))
	} else {
		m.max = math.Abs(s.Distance)
	}
	m.last = s.Distance
	m.samples++
}

func (m *MaxStep) Value() float64 { return m.max }

func (m *MaxStep) Reset() {
	m.last = 0
	m.max = 0
	m.samples = 0
}
