package sweep

import (
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/coastsim/internal/coasting"
)

// Perturb returns n launch speeds drawn uniformly from base±spread. A zero
// seed draws from the current time. Speeds that would not be positive are
// reflected about zero.
func Perturb(base, spread float64, n int, seed int64) []float64 {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	speeds := make([]float64, n)
	for i := range speeds {
		v := math.Abs(base + (rng.Float64()-0.5)*2*spread)
		if v == 0 {
			v = base
		}
		speeds[i] = v
	}
	return speeds
}

// Summary aggregates the stop times and distances of an ensemble. Runs
// whose stop time or distance is undefined are counted in Skipped and left
// out of the statistics, which are zero when nothing remains.
type Summary struct {
	Runs            int
	Completed       int
	Skipped         int
	MinStopTime     float64
	MaxStopTime     float64
	MeanStopTime    float64
	MinStopDistance float64
	MaxStopDistance float64
	MeanDistance    float64
}

func Summarize(results []*Result) Summary {
	s := Summary{
		MinStopTime:     math.Inf(1),
		MaxStopTime:     math.Inf(-1),
		MinStopDistance: math.Inf(1),
		MaxStopDistance: math.Inf(-1),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Runs++
		if r.Outcome == coasting.Completed {
			s.Completed++
		}
		if math.IsNaN(r.StopTime) || math.IsNaN(r.StopDistance) {
			s.Skipped++
			continue
		}
		s.MinStopTime = math.Min(s.MinStopTime, r.StopTime)
		s.MaxStopTime = math.Max(s.MaxStopTime, r.StopTime)
		s.MinStopDistance = math.Min(s.MinStopDistance, r.StopDistance)
		s.MaxStopDistance = math.Max(s.MaxStopDistance, r.StopDistance)
		s.MeanStopTime += r.StopTime
		s.MeanDistance += r.StopDistance
	}
	if n := s.Runs - s.Skipped; n > 0 {
		s.MeanStopTime /= float64(n)
		s.MeanDistance /= float64(n)
	} else {
		s.MinStopTime, s.MaxStopTime = 0, 0
		s.MinStopDistance, s.MaxStopDistance = 0, 0
	}
	return s
}
