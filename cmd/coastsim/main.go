package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coastsim/internal/coasting"
	"github.com/san-kum/coastsim/internal/config"
	"github.com/san-kum/coastsim/internal/decay"
	"github.com/san-kum/coastsim/internal/export"
	"github.com/san-kum/coastsim/internal/frame"
	"github.com/san-kum/coastsim/internal/metrics"
	"github.com/san-kum/coastsim/internal/script"
	"github.com/san-kum/coastsim/internal/scrub"
	"github.com/san-kum/coastsim/internal/storage"
	"github.com/san-kum/coastsim/internal/sweep"
	"github.com/san-kum/coastsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	ratio    float64
	minSpeed float64
	velocity float64
	fps      int
	interval int
	budget   time.Duration

	runName     string
	cancelAfter time.Duration
	showPlot    bool
	realtime    bool

	queryAt       float64
	queryDistance float64

	tuneDuration float64

	speeds []float64
	trials int
	spread float64
	seed   int64

	svgPath string
	series  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "coastsim",
		Short:         "friction-based coasting lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".coastsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.Float64Var(&ratio, "ratio", config.DefaultDecayRatio, "velocity retained per second, in (0,1)")
	pf.Float64Var(&minSpeed, "min-speed", config.DefaultMinSpeed, "speed floor, in (0,1)")
	pf.Float64Var(&velocity, "v0", config.DefaultInitialVelocity, "launch speed")
	pf.IntVar(&fps, "fps", config.DefaultFrameRate, "display frame rate")
	pf.IntVar(&interval, "interval", config.DefaultFrameInterval, "display frames between ticks")
	pf.DurationVar(&budget, "budget", config.DefaultFrameBudget, "tick cost budget")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "coast once on a simulated display and record the run",
		Args:  cobra.NoArgs,
		RunE:  runCoast,
	}
	runCmd.Flags().StringVar(&runName, "name", "coast", "run name")
	runCmd.Flags().DurationVar(&cancelAfter, "cancel-after", 0, "cancel the coast after this much coast time")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "drive the coast on the wall clock instead of simulated frames")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the recorded samples")

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "evaluate the closed-form coast",
		Args:  cobra.NoArgs,
		RunE:  queryCoast,
	}
	queryCmd.Flags().Float64Var(&queryAt, "at", math.NaN(), "elapsed seconds to evaluate")
	queryCmd.Flags().Float64Var(&queryDistance, "distance", math.NaN(), "distance to solve the travel time for")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "find the decay ratio that coasts for a given duration",
		Args:  cobra.NoArgs,
		RunE:  tuneRatio,
	}
	tuneCmd.Flags().Float64Var(&tuneDuration, "duration", 1, "desired stopping time in seconds")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "coast concurrently from several launch speeds",
		Args:  cobra.NoArgs,
		RunE:  sweepSpeeds,
	}
	sweepCmd.Flags().Float64SliceVar(&speeds, "speeds", []float64{1, 2, 5, 10, 20}, "launch speeds")
	sweepCmd.Flags().IntVar(&trials, "trials", 0, "draw this many random launch speeds around --v0 instead")
	sweepCmd.Flags().Float64Var(&spread, "spread", 1, "random launch speed spread")
	sweepCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "replay a scripted gesture scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and samples",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg plot to this path instead of json")
	exportCmd.Flags().StringVar(&series, "series", "velocity", "series to plot (velocity, distance)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRATIO\tMIN SPEED\tV0\tSTOP TIME")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				env, err := p.Environment()
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%.3fs\n",
					name, p.DecayRatio, p.MinSpeed, p.InitialVelocity, env.StoppingTime(p.InitialVelocity))
			}
			w.Flush()
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fling a marker along a track in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	rootCmd.AddCommand(runCmd, queryCmd, tuneCmd, sweepCmd, scriptCmd, listCmd, plotCmd, exportCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCoast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireSpeed(cfg.InitialVelocity); err != nil {
		return err
	}
	logger := newLogger(cfg)
	env, _ := cfg.Environment()

	rec := coasting.NewRecorder()
	col := metrics.Default()
	s := coasting.New(env, cfg.InitialVelocity,
		coasting.WithObserver(coasting.Observers{rec, col, coasting.LogObserver{Logger: logger}}),
		coasting.WithLogger(logger),
		coasting.WithFrameInterval(cfg.FrameInterval),
		coasting.WithFrameBudget(cfg.FrameBudget),
	)

	var frames uint64
	if realtime {
		frames, err = coastRealtime(s, cfg.FrameRate, logger)
		if err != nil {
			return err
		}
	} else {
		frames = coastSimulated(s, cfg.FrameRate, logger)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Name:            runName,
		SessionID:       s.ID(),
		DecayRatio:      env.R(),
		MinSpeed:        env.MinSpeed(),
		InitialVelocity: cfg.InitialVelocity,
		FrameRate:       cfg.FrameRate,
		FrameInterval:   cfg.FrameInterval,
		StopTime:        s.StopTime(),
		StopDistance:    s.StopDistance(),
		Outcome:         s.Outcome().String(),
		Metrics:         col.Values(),
	}, rec.Samples)
	if err != nil {
		return err
	}

	last, _ := rec.Last()
	fmt.Printf("run: %s\n", runID)
	fmt.Printf("environment: %s\n", env)
	fmt.Printf("outcome: %s after %d frames\n", s.Outcome(), frames)
	fmt.Printf("stop time: %.4fs\n", s.StopTime())
	fmt.Printf("stop distance: %.4f\n", s.StopDistance())
	fmt.Printf("samples: %d (last t=%.4fs v=%.4f d=%.4f)\n", len(rec.Samples), last.Elapsed, last.Velocity, last.Distance)

	if showPlot {
		plotSamples(rec.Samples)
	}
	return nil
}

func coastSimulated(s *coasting.Session, fps int, logger *slog.Logger) uint64 {
	driver := frame.NewManual(fps)
	s.Start(driver, driver)

	limit := sweep.DefaultMaxFrames
	if cancelAfter > 0 {
		limit = int(cancelAfter / driver.Period())
	}
	driver.RunUntilIdle(limit)
	if s.IsRunning() {
		if cancelAfter <= 0 {
			logger.Warn("coast exceeded frame limit", "frames", driver.Frame())
		}
		s.Stop()
	}
	return driver.Frame()
}

// coastRealtime drives s on a ticker until it settles, --cancel-after
// elapses or the process is interrupted.
func coastRealtime(s *coasting.Session, fps int, logger *slog.Logger) (uint64, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cancelAfter > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cancelAfter)
		defer cancel()
	}

	link := frame.NewLink(fps, frame.WithLogger(logger))
	err := link.Drive(ctx, s)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info("coast cut short", "reason", err, "frames", link.Frame())
		err = nil
	}
	return link.Frame(), err
}

func queryCoast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireSpeed(cfg.InitialVelocity); err != nil {
		return err
	}
	env, _ := cfg.Environment()
	v0 := cfg.InitialVelocity
	s := coasting.New(env, v0)

	fmt.Printf("environment: %s\n", env)
	fmt.Printf("v0: %g\n", v0)
	fmt.Printf("stop time: %.6fs\n", s.StopTime())
	fmt.Printf("stop distance: %.6f\n", s.StopDistance())

	if !math.IsNaN(queryAt) {
		fmt.Printf("at t=%gs: velocity %.6f, distance %.6f\n", queryAt, s.Velocity(queryAt), s.Distance(queryAt))
	}
	if !math.IsNaN(queryDistance) {
		t := s.TimeForDistance(queryDistance)
		if decay.IsDomainError(t) {
			fmt.Printf("distance %g is never reached\n", queryDistance)
		} else {
			fmt.Printf("distance %g reached at t=%.6fs\n", queryDistance, t)
		}
	}
	return nil
}

func tuneRatio(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := decay.RatioForStoppingTime(tuneDuration, cfg.InitialVelocity, cfg.MinSpeed)
	if math.IsNaN(r) {
		return fmt.Errorf("no decay ratio stops v0=%g in %gs with min speed %g", cfg.InitialVelocity, tuneDuration, cfg.MinSpeed)
	}
	env, err := decay.New(r, cfg.MinSpeed)
	if err != nil {
		return fmt.Errorf("tuned ratio %g: %w", r, err)
	}

	fmt.Printf("ratio: %.6f\n", r)
	fmt.Printf("stop time: %.6fs\n", env.StoppingTime(cfg.InitialVelocity))
	fmt.Printf("stop distance: %.6f\n", env.DistanceAtStop(cfg.InitialVelocity))
	return nil
}

func sweepSpeeds(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	env, _ := cfg.Environment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := sweep.NewEnsemble(env, sweep.Config{
		FrameRate:     cfg.FrameRate,
		FrameInterval: cfg.FrameInterval,
		FrameBudget:   cfg.FrameBudget,
		MaxFrames:     sweep.DefaultMaxFrames,
	}, logger)

	launch := speeds
	if trials > 0 {
		launch = sweep.Perturb(cfg.InitialVelocity, spread, trials, seed)
	}
	for _, v0 := range launch {
		if err := requireSpeed(v0); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
	}

	results, err := ens.Run(ctx, launch)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "V0\tSTOP TIME\tSTOP DIST\tFRAMES\tOUTCOME\tPEAK\tTRAVEL")
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.4fs\t%.4f\t%d\t%s\t%.4f\t%.4f\n",
			r.Speed,
			r.StopTime,
			r.StopDistance,
			r.Frames,
			r.Outcome,
			r.Metrics["peak_velocity"],
			r.Metrics["travel"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := sweep.Summarize(results)
	fmt.Printf("\n%d/%d completed, stop time %.4f..%.4fs (mean %.4fs), distance %.4f..%.4f (mean %.4f)\n",
		sum.Completed, sum.Runs,
		sum.MinStopTime, sum.MaxStopTime, sum.MeanStopTime,
		sum.MinStopDistance, sum.MaxStopDistance, sum.MeanDistance)
	if sum.Skipped > 0 {
		fmt.Printf("%d runs had no defined stop and were left out\n", sum.Skipped)
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := script.LoadScenario(args[0])
	if err != nil {
		return err
	}
	env, _ := cfg.Environment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := script.Run(ctx, sc, script.Config{
		Env:           env,
		Bounds:        scrub.Bounds{Min: cfg.Bounds.Min, Max: cfg.Bounds.Max},
		FrameRate:     cfg.FrameRate,
		FrameInterval: cfg.FrameInterval,
		Logger:        newLogger(cfg),
	})
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", res.Scenario)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tACTION\tVALUE\tFRAME\tPOSITION\tCOASTING")
	for i, st := range res.Steps {
		fmt.Fprintf(w, "%d\t%s\t%g\t%d\t%.4f\t%v\n",
			i+1, st.Step.Action, st.Step.Value, st.Frame, st.Position, st.Coasting)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nfinal position %.4f after %d frames, %d coasts %v\n", res.Position, res.Frames, res.Coasts, res.Outcomes)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tRATIO\tMIN\tV0\tSTOP\tDIST\tOUTCOME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%.3fs\t%.3f\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.DecayRatio,
			run.MinSpeed,
			run.InitialVelocity,
			run.StopTime,
			run.StopDistance,
			run.Outcome,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("outcome: %s\n", meta.Outcome)
	fmt.Printf("samples: %d\n\n", len(samples))

	plotSamples(samples)
	return nil
}

func plotSamples(samples []coasting.Sample) {
	if len(samples) == 0 {
		return
	}
	vs := make([]float64, len(samples))
	ds := make([]float64, len(samples))
	for i, s := range samples {
		vs[i] = s.Velocity
		ds[i] = s.Distance
	}

	fmt.Println(asciigraph.Plot(vs, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("velocity")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(ds, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("distance")))
	fmt.Println()
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if svgPath != "" {
		svg, err := export.SamplesToSVG(samples, export.Series(series), 800, 400, "#00ff00")
		if err != nil {
			return err
		}
		if svg == "" {
			return fmt.Errorf("run %s has too few samples to plot", runID)
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*storage.RunMetadata
		Data []coasting.Sample `json:"data"`
	}{meta, samples})
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	env, _ := cfg.Environment()

	return viz.Run(viz.Config{
		Env:           env,
		Bounds:        scrub.Bounds{Min: cfg.Bounds.Min, Max: cfg.Bounds.Max},
		Position:      cfg.Position,
		Speed:         cfg.InitialVelocity,
		FrameRate:     cfg.FrameRate,
		FrameInterval: cfg.FrameInterval,
		FrameBudget:   cfg.FrameBudget,
	})
}

var errSpeed = errors.New("launch speed must be positive")

func requireSpeed(v0 float64) error {
	if !(v0 > 0) || math.IsInf(v0, 0) {
		return fmt.Errorf("%w, got %g", errSpeed, v0)
	}
	return nil
}
