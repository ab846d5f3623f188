package decay

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-9

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		r, vmin float64
		wantErr error
	}{
		{"valid", 0.95, 0.1, nil},
		{"ratio zero", 0, 0.1, ErrDecayRatio},
		{"ratio one", 1, 0.1, ErrDecayRatio},
		{"ratio negative", -0.5, 0.1, ErrDecayRatio},
		{"ratio NaN", math.NaN(), 0.1, ErrDecayRatio},
		{"floor zero", 0.5, 0, ErrMinSpeed},
		{"floor negative", 0.5, -1, ErrMinSpeed},
		{"floor NaN", 0.5, math.NaN(), ErrMinSpeed},
		{"floor infinite", 0.5, math.Inf(1), ErrMinSpeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.r, tt.vmin)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid ratio")
		}
	}()
	MustNew(2, 0.1)
}

func TestEnvironment_CachedLogs(t *testing.T) {
	env := MustNew(0.95, 0.1)
	if env.LnR() != math.Log(0.95) {
		t.Errorf("LnR = %v, want %v", env.LnR(), math.Log(0.95))
	}
	if env.LnMinSpeed() != math.Log(0.1) {
		t.Errorf("LnMinSpeed = %v, want %v", env.LnMinSpeed(), math.Log(0.1))
	}
	if env.LnR() >= 0 {
		t.Error("ln(r) must be negative")
	}
}

func TestPower_MatchesPow(t *testing.T) {
	env := MustNew(0.8, 0.01)
	for _, tm := range []float64{0, 0.25, 1, 3.5, 10} {
		want := math.Pow(0.8, tm)
		if got := env.Power(tm); math.Abs(got-want) > tol {
			t.Errorf("Power(%v) = %v, want %v", tm, got, want)
		}
	}
}

func TestVelocity_ClampsToZero(t *testing.T) {
	env := MustNew(0.5, 1)

	if got := env.Velocity(10, 3); math.Abs(got-1.25) > tol {
		t.Errorf("Velocity(10, 3) = %v, want 1.25", got)
	}
	if got := env.Velocity(10, 4); got != 0 {
		t.Errorf("Velocity(10, 4) = %v, want 0 below the floor", got)
	}
	if got := env.RawVelocity(10, 4); math.Abs(got-0.625) > tol {
		t.Errorf("RawVelocity(10, 4) = %v, want 0.625", got)
	}
}

func TestStoppingTime_Scenario(t *testing.T) {
	env := MustNew(0.95, 0.1)

	want := math.Log(0.1) / (10 * math.Log(0.95))
	got := env.StoppingTime(10)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("StoppingTime(10) = %v, want %v", got, want)
	}
	if math.Abs(got-4.48906) > 1e-3 {
		t.Errorf("StoppingTime(10) = %v, want ~4.48906", got)
	}

	dist := env.DistanceAtStop(10)
	wantDist := 10 * (math.Pow(0.95, want) - 1) / math.Log(0.95)
	if math.Abs(dist-wantDist) > 1e-3 {
		t.Errorf("DistanceAtStop(10) = %v, want %v", dist, wantDist)
	}
	if math.Abs(dist-40.0972) > 1e-3 {
		t.Errorf("DistanceAtStop(10) = %v, want ~40.0972", dist)
	}
}

func TestStoppingTime_UnitSpeedReachesFloor(t *testing.T) {
	envs := []Environment{
		MustNew(0.95, 0.1),
		MustNew(0.5, 0.25),
		MustNew(0.1, 0.001),
		MustNew(0.999, 0.5),
	}

	for _, env := range envs {
		ts := env.StoppingTime(1)
		v := env.RawVelocity(1, ts)
		if math.Abs(v-env.MinSpeed()) > 1e-9 {
			t.Errorf("%v: velocity at stop = %v, want %v", env, v, env.MinSpeed())
		}
	}
}

func TestStoppingTime_NonPositiveSpeed(t *testing.T) {
	env := MustNew(0.95, 0.1)
	for _, v0 := range []float64{0, -1, math.NaN()} {
		if got := env.StoppingTime(v0); !IsDomainError(got) {
			t.Errorf("StoppingTime(%v) = %v, want NaN", v0, got)
		}
		if got := env.DistanceAtStop(v0); !IsDomainError(got) {
			t.Errorf("DistanceAtStop(%v) = %v, want NaN", v0, got)
		}
	}
}

func TestDistance_Monotonic(t *testing.T) {
	env := MustNew(0.9, 0.05)
	v0 := 3.0
	ts := env.StoppingTime(v0)

	prev := env.Distance(v0, 0)
	if prev != 0 {
		t.Fatalf("Distance at t=0 = %v, want 0", prev)
	}
	steps := 200
	for i := 1; i <= steps; i++ {
		d := env.Distance(v0, ts*float64(i)/float64(steps))
		if d < prev {
			t.Fatalf("distance decreased at step %d: %v < %v", i, d, prev)
		}
		prev = d
	}
	if math.Abs(prev-env.DistanceAtStop(v0)) > tol {
		t.Errorf("final distance %v != DistanceAtStop %v", prev, env.DistanceAtStop(v0))
	}
}

func TestTimeForDistance_RoundTrip(t *testing.T) {
	tests := []struct {
		r, vmin, v0 float64
	}{
		{0.95, 0.1, 10},
		{0.5, 0.25, 1},
		{0.2, 0.01, 40},
		{0.99, 0.5, 0.7},
	}

	for _, tt := range tests {
		env := MustNew(tt.r, tt.vmin)
		total := env.DistanceAtStop(tt.v0)
		for i := 0; i <= 10; i++ {
			d := total * float64(i) / 10
			tm := env.TimeForDistance(tt.v0, d)
			if IsDomainError(tm) {
				t.Fatalf("r=%v v0=%v: TimeForDistance(%v) is NaN", tt.r, tt.v0, d)
			}
			if got := env.Distance(tt.v0, tm); math.Abs(got-d) > 1e-9*math.Max(1, total) {
				t.Errorf("r=%v v0=%v: Distance(TimeForDistance(%v)) = %v", tt.r, tt.v0, d, got)
			}
		}
	}
}

func TestTimeForDistance_DomainErrors(t *testing.T) {
	env := MustNew(0.95, 0.1)

	if got := env.TimeForDistance(0, 1); !IsDomainError(got) {
		t.Errorf("v0=0: got %v, want NaN", got)
	}
	if got := env.TimeForDistance(-3, 1); !IsDomainError(got) {
		t.Errorf("v0<0: got %v, want NaN", got)
	}

	// The asymptotic distance -v0/ln(r) is never reached.
	far := -10/math.Log(0.95) + 1
	if got := env.TimeForDistance(10, far); !IsDomainError(got) {
		t.Errorf("unreachable distance: got %v, want NaN", got)
	}
	if got := env.TimeForDistance(10, math.NaN()); !IsDomainError(got) {
		t.Errorf("NaN distance: got %v, want NaN", got)
	}
}

func TestRatioForStoppingTime(t *testing.T) {
	r := RatioForStoppingTime(2.5, 8, 0.1)
	env, err := New(r, 0.1)
	if err != nil {
		t.Fatalf("tuned ratio %v rejected: %v", r, err)
	}
	if got := env.StoppingTime(8); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("tuned stopping time = %v, want 2.5", got)
	}

	invalid := [][3]float64{
		{0, 8, 0.1},
		{2.5, 0, 0.1},
		{2.5, 8, 0},
		{2.5, 8, 1},
	}
	for _, in := range invalid {
		if got := RatioForStoppingTime(in[0], in[1], in[2]); !IsDomainError(got) {
			t.Errorf("RatioForStoppingTime(%v) = %v, want NaN", in, got)
		}
	}
}

func BenchmarkVelocity(b *testing.B) {
	env := MustNew(0.95, 0.1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = env.Velocity(10, float64(i%500)/100)
	}
}

func BenchmarkTimeForDistance(b *testing.B) {
	env := MustNew(0.95, 0.1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = env.TimeForDistance(10, float64(i%40))
	}
}
