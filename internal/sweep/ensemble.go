// Package sweep runs many independent offline coasts concurrently.
package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/coastsim/internal/coasting"
	"github.com/san-kum/coastsim/internal/decay"
	"github.com/san-kum/coastsim/internal/frame"
	"github.com/san-kum/coastsim/internal/metrics"
)

// DefaultMaxFrames bounds a single offline coast, ten minutes at 60 Hz.
const DefaultMaxFrames = 60 * 60 * 10

type Config struct {
	FrameRate     int
	FrameInterval int
	FrameBudget   time.Duration
	MaxFrames     int
}

func DefaultConfig() Config {
	return Config{
		FrameRate:     frame.DefaultFrameRate,
		FrameInterval: coasting.DefaultFrameInterval,
		FrameBudget:   coasting.DefaultFrameBudget,
		MaxFrames:     DefaultMaxFrames,
	}
}

// Result describes one coast of the ensemble.
type Result struct {
	Speed        float64
	StopTime     float64
	StopDistance float64
	Frames       int
	Outcome      coasting.Outcome
	Samples      []coasting.Sample
	Metrics      map[string]float64
}

type Ensemble struct {
	env    decay.Environment
	cfg    Config
	logger *slog.Logger
}

func NewEnsemble(env decay.Environment, cfg Config, logger *slog.Logger) *Ensemble {
	if cfg.MaxFrames <= 0 {
		cfg.MaxFrames = DefaultMaxFrames
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ensemble{env: env, cfg: cfg, logger: logger}
}

// Run coasts once per speed, each on its own goroutine with its own driver,
// and returns the results in input order. When ctx is cancelled the running
// coasts are cancelled and Run returns ctx.Err().
func (e *Ensemble) Run(ctx context.Context, speeds []float64) ([]*Result, error) {
	results := make([]*Result, len(speeds))
	errs := make([]error, len(speeds))

	var wg sync.WaitGroup
	for i, v0 := range speeds {
		wg.Add(1)
		go func(idx int, v0 float64) {
			defer wg.Done()
			results[idx], errs[idx] = e.RunOne(ctx, v0)
		}(i, v0)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// RunOne coasts from v0 on a fresh manual driver until the coast stops,
// MaxFrames pass, or ctx is done.
func (e *Ensemble) RunOne(ctx context.Context, v0 float64) (*Result, error) {
	driver := frame.NewManual(e.cfg.FrameRate)
	rec := coasting.NewRecorder()
	col := metrics.Default()

	s := coasting.New(e.env, v0,
		coasting.WithObserver(coasting.Observers{rec, col}),
		coasting.WithLogger(e.logger),
		coasting.WithFrameInterval(e.cfg.FrameInterval),
		coasting.WithFrameBudget(e.cfg.FrameBudget),
	)
	s.Start(driver, driver)

	frames := 0
	for s.IsRunning() && frames < e.cfg.MaxFrames {
		select {
		case <-ctx.Done():
			s.Stop()
			return nil, ctx.Err()
		default:
		}
		driver.Step()
		frames++
	}
	if s.IsRunning() {
		e.logger.Warn("coast exceeded frame limit", "v0", v0, "frames", frames)
		s.Stop()
	}

	return &Result{
		Speed:        v0,
		StopTime:     s.StopTime(),
		StopDistance: s.StopDistance(),
		Frames:       frames,
		Outcome:      s.Outcome(),
		Samples:      rec.Samples,
		Metrics:      col.Values(),
	}, nil
}
