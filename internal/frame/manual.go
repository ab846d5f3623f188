package frame

import (
	"time"

	"github.com/san-kum/coastsim/internal/coasting"
)

// DefaultFrameRate is the display refresh rate drivers assume when given a
// non-positive rate.
const DefaultFrameRate = 60

// Manual is a driver whose clock only moves when told to. Step advances one
// frame period and fires due callbacks synchronously.
type Manual struct {
	now    time.Duration
	period time.Duration
	reg    registry
}

func NewManual(fps int) *Manual {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &Manual{period: time.Second / time.Duration(fps)}
}

func (m *Manual) Now() time.Duration    { return m.now }
func (m *Manual) Period() time.Duration { return m.period }
func (m *Manual) Frame() uint64         { return m.reg.frame }
func (m *Manual) Pending() int          { return m.reg.active() }

func (m *Manual) Register(callback func(), intervalMultiplier int) coasting.Handle {
	return m.reg.register(callback, intervalMultiplier)
}

// Step advances the clock by one frame period and fires the callbacks due on
// the new frame. It returns how many fired.
func (m *Manual) Step() int {
	m.now += m.period
	return m.reg.advance()
}

// Steps calls Step n times.
func (m *Manual) Steps(n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

// AdvanceClock moves the clock without producing a frame.
func (m *Manual) AdvanceClock(d time.Duration) {
	m.now += d
}

// RunUntilIdle steps until nothing is registered or maxFrames frames have
// passed, and returns the number of frames stepped.
func (m *Manual) RunUntilIdle(maxFrames int) int {
	n := 0
	for n < maxFrames && m.reg.active() > 0 {
		m.Step()
		n++
	}
	return n
}
