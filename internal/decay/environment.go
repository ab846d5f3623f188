package decay

import (
	"fmt"
	"math"
)

// Environment is an immutable coasting medium: a decay ratio r and a speed
// floor vmin, with their logarithms cached. The zero value is not usable; build
// one with [New] or [MustNew].
type Environment struct {
	r      float64
	lnR    float64
	vmin   float64
	lnVmin float64
}

// New returns the environment for decay ratio r and speed floor vmin.
func New(r, vmin float64) (Environment, error) {
	if !(r > 0 && r < 1) {
		return Environment{}, fmt.Errorf("%w: got %v", ErrDecayRatio, r)
	}
	if !(vmin > 0) || math.IsInf(vmin, 1) {
		return Environment{}, fmt.Errorf("%w: got %v", ErrMinSpeed, vmin)
	}
	return Environment{
		r:      r,
		lnR:    math.Log(r),
		vmin:   vmin,
		lnVmin: math.Log(vmin),
	}, nil
}

// MustNew is like [New] but panics on invalid parameters.
func MustNew(r, vmin float64) Environment {
	env, err := New(r, vmin)
	if err != nil {
		panic(err)
	}
	return env
}

func (e Environment) R() float64          { return e.r }
func (e Environment) MinSpeed() float64   { return e.vmin }
func (e Environment) LnR() float64        { return e.lnR }
func (e Environment) LnMinSpeed() float64 { return e.lnVmin }

// Power returns r^t as exp(t*ln r).
func (e Environment) Power(t float64) float64 {
	return math.Exp(e.lnR * t)
}

// RawVelocity returns v0 * r^t without the speed floor.
func (e Environment) RawVelocity(v0, t float64) float64 {
	return v0 * e.Power(t)
}

// Velocity returns the speed at time t, or 0 once it has dropped below the
// speed floor.
func (e Environment) Velocity(v0, t float64) float64 {
	v := e.RawVelocity(v0, t)
	if v < e.vmin {
		return 0
	}
	return v
}

// StoppingTime returns ln(vmin) / (v0 * ln r), the time at which the coast
// ends. It returns NaN unless v0 > 0.
func (e Environment) StoppingTime(v0 float64) float64 {
	if !(v0 > 0) {
		return math.NaN()
	}
	return e.lnVmin / (v0 * e.lnR)
}

// Distance returns v0 * (r^t - 1) / ln r, the distance travelled by time t.
// It does not clamp t to the stopping time.
func (e Environment) Distance(v0, t float64) float64 {
	return v0 * (e.Power(t) - 1) / e.lnR
}

// DistanceAtStop returns the total distance travelled before the coast ends.
func (e Environment) DistanceAtStop(v0 float64) float64 {
	return e.Distance(v0, e.StoppingTime(v0))
}

// TimeForDistance inverts [Environment.Distance]:
//
//	t = ln(d*ln(r)/v0 + 1) / ln(r)
//
// It returns NaN unless v0 > 0, and NaN when the coast never travels d.
func (e Environment) TimeForDistance(v0, d float64) float64 {
	if !(v0 > 0) {
		return math.NaN()
	}
	inner := d*e.lnR/v0 + 1
	// inner < 0 once d exceeds the asymptotic distance -v0/ln(r).
	if !(inner >= 0) {
		return math.NaN()
	}
	return math.Log(inner) / e.lnR
}

func (e Environment) String() string {
	return fmt.Sprintf("decay(r=%g, vmin=%g)", e.r, e.vmin)
}
