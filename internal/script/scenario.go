// Package script replays scripted touch gestures against a scrub controller
// on a manual frame driver.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/san-kum/coastsim/internal/coasting"
	"github.com/san-kum/coastsim/internal/decay"
	"github.com/san-kum/coastsim/internal/frame"
	"github.com/san-kum/coastsim/internal/scrub"
	"gopkg.in/yaml.v3"
)

// Actions understood by [Run].
const (
	ActionPosition = "position"
	ActionTouch    = "touch"
	ActionDrag     = "drag"
	ActionRelease  = "release"
	ActionFling    = "fling"
	ActionCancel   = "cancel"
	ActionWait     = "wait"
	ActionIdle     = "idle"
)

// Scenario is a named sequence of gestures.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Bounds      *Bounds `yaml:"bounds"`
	Steps       []Step  `yaml:"steps"`
}

type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Step is a single gesture. Value is the position for "position", the delta
// for "drag" and the signed velocity for "release" and "fling". Frames is
// the number of frames to step for "wait"; "idle" steps until no coast is
// running.
type Step struct {
	Action string  `yaml:"action"`
	Value  float64 `yaml:"value"`
	Frames int     `yaml:"frames"`
}

// StepResult is the controller state after a step.
type StepResult struct {
	Step     Step
	Frame    uint64
	Position float64
	Coasting bool
}

type Result struct {
	Scenario string
	Steps    []StepResult
	Position float64
	Frames   uint64
	Coasts   int
	Outcomes []coasting.Outcome
}

// Config sets the environment a scenario runs in.
type Config struct {
	Env           decay.Environment
	Bounds        scrub.Bounds
	FrameRate     int
	FrameInterval int
	// MaxIdleFrames bounds each "idle" step.
	MaxIdleFrames int
	Logger        *slog.Logger
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, step := range s.Steps {
		switch step.Action {
		case ActionPosition, ActionTouch, ActionDrag, ActionRelease, ActionFling, ActionCancel, ActionIdle:
		case ActionWait:
			if step.Frames <= 0 {
				return fmt.Errorf("step %d: wait needs a positive frame count", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}

// Run executes every step of scenario in order and reports the controller
// state after each. It stops early with ctx.Err() when ctx is done.
func Run(ctx context.Context, scenario *Scenario, cfg Config) (*Result, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxIdleFrames <= 0 {
		cfg.MaxIdleFrames = 60 * 60
	}
	bounds := cfg.Bounds
	if scenario.Bounds != nil {
		bounds = scrub.Bounds{Min: scenario.Bounds.Min, Max: scenario.Bounds.Max}
	}

	result := &Result{Scenario: scenario.Name, Steps: make([]StepResult, 0, len(scenario.Steps))}
	driver := frame.NewManual(cfg.FrameRate)
	ctrl := scrub.New(cfg.Env, bounds, driver, driver,
		scrub.WithLogger(cfg.Logger),
		scrub.WithObserver(coasting.ObserverFuncs{
			OnWillStart: func() { result.Coasts++ },
			OnCompleted: func(float64) { result.Outcomes = append(result.Outcomes, coasting.Completed) },
			OnCancelled: func() { result.Outcomes = append(result.Outcomes, coasting.Cancelled) },
		}),
		scrub.WithSessionOptions(coasting.WithFrameInterval(cfg.FrameInterval)),
	)

	start := time.Now()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			ctrl.Cancel()
			return result, err
		}

		switch step.Action {
		case ActionPosition:
			ctrl.SetPosition(step.Value)
		case ActionTouch:
			ctrl.Touch()
		case ActionDrag:
			ctrl.Drag(step.Value)
		case ActionRelease:
			ctrl.Release(step.Value)
		case ActionFling:
			ctrl.Fling(step.Value)
		case ActionCancel:
			ctrl.Cancel()
		case ActionWait:
			driver.Steps(step.Frames)
		case ActionIdle:
			for n := 0; ctrl.IsCoasting() && n < cfg.MaxIdleFrames; n++ {
				driver.Step()
			}
		default:
			return result, fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}

		result.Steps = append(result.Steps, StepResult{
			Step:     step,
			Frame:    driver.Frame(),
			Position: ctrl.Position(),
			Coasting: ctrl.IsCoasting(),
		})
	}

	result.Position = ctrl.Position()
	result.Frames = driver.Frame()
	cfg.Logger.Debug("scenario finished", "name", scenario.Name, "steps", len(scenario.Steps), "frames", result.Frames, "took", time.Since(start))
	return result, nil
}
