package coasting_test

import (
	"bytes"
	"log/slog"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/coastsim/internal/coasting"
	"github.com/san-kum/coastsim/internal/decay"
	"github.com/san-kum/coastsim/internal/frame"
)

// eventLog records observer callbacks by name.
type eventLog struct {
	events  []string
	samples []coasting.Sample
}

func (l *eventLog) WillStart() { l.events = append(l.events, "start") }

func (l *eventLog) Progress(elapsed, velocity, distance float64) {
	l.events = append(l.events, "progress")
	l.samples = append(l.samples, coasting.Sample{Elapsed: elapsed, Velocity: velocity, Distance: distance})
}

func (l *eventLog) Completed(float64) { l.events = append(l.events, "completed") }
func (l *eventLog) Cancelled()        { l.events = append(l.events, "cancelled") }

func (l *eventLog) count(name string) int {
	n := 0
	for _, e := range l.events {
		if e == name {
			n++
		}
	}
	return n
}

func (l *eventLog) without(name string) []string {
	out := []string{}
	for _, e := range l.events {
		if e != name {
			out = append(out, e)
		}
	}
	return out
}

// steppingClock moves forward by step on every reading.
type steppingClock struct {
	now  time.Duration
	step time.Duration
}

func (c *steppingClock) Now() time.Duration {
	c.now += c.step
	return c.now
}

var _ = Describe("Session", func() {
	var (
		env    decay.Environment
		driver *frame.Manual
		log    *eventLog
	)

	BeforeEach(func() {
		// ln(0.25) = 2 ln(0.5), so a launch at 2 stops after exactly 1s and a
		// launch at 1 after exactly 2s. At 10 fps both land on a frame.
		env = decay.MustNew(0.5, 0.25)
		driver = frame.NewManual(10)
		log = &eventLog{}
	})

	newSession := func(v0 float64, opts ...coasting.Option) *coasting.Session {
		opts = append([]coasting.Option{
			coasting.WithObserver(log),
			coasting.WithFrameInterval(1),
			coasting.WithFrameBudget(time.Hour),
		}, opts...)
		return coasting.New(env, v0, opts...)
	}

	Describe("derived quantities", func() {
		It("matches the closed forms", func() {
			s := coasting.New(decay.MustNew(0.95, 0.1), 10)
			Expect(s.StopTime()).To(BeNumerically("~", 4.489056748, 1e-8))
			Expect(s.StopDistance()).To(BeNumerically("~", 40.0972033, 1e-6))
			Expect(s.StopTime()).To(Equal(s.StopTime()))
			Expect(s.Velocity(0)).To(Equal(10.0))
		})

		It("plateaus distance after the stopping time", func() {
			s := newSession(2)
			Expect(s.Distance(1)).To(Equal(s.StopDistance()))
			Expect(s.Distance(5)).To(Equal(s.StopDistance()))
			Expect(s.Distance(1e6)).To(Equal(s.StopDistance()))
			Expect(s.Distance(0.5)).To(BeNumerically("<", s.StopDistance()))
		})

		It("solves travel time only for reachable distances", func() {
			s := coasting.New(decay.MustNew(0.95, 0.1), 10)
			t := s.TimeForDistance(20)
			Expect(t).To(BeNumerically(">", 0))
			Expect(s.Distance(t)).To(BeNumerically("~", 20, 1e-9))
			Expect(math.IsNaN(s.TimeForDistance(s.StopDistance() + 1))).To(BeTrue())
			Expect(math.IsNaN(s.TimeForDistance(1000))).To(BeTrue())
			Expect(math.IsNaN(s.TimeForDistance(-5))).To(BeTrue())
			Expect(s.TimeForDistance(0)).To(Equal(0.0))
		})

		It("reports a NaN stopping time for a non-positive launch", func() {
			Expect(math.IsNaN(newSession(0).StopTime())).To(BeTrue())
			Expect(math.IsNaN(newSession(-3).StopTime())).To(BeTrue())
		})

		It("assigns an id", func() {
			Expect(newSession(1).ID()).NotTo(BeEmpty())
			Expect(newSession(1).ID()).NotTo(Equal(newSession(1).ID()))
			Expect(newSession(1, coasting.WithID("fixed")).ID()).To(Equal("fixed"))
		})
	})

	Describe("lifecycle", func() {
		It("starts idle and ignores Stop", func() {
			s := newSession(2)
			Expect(s.State()).To(Equal(coasting.NotStarted))
			s.Stop()
			s.Cancel()
			Expect(s.State()).To(Equal(coasting.NotStarted))
			Expect(s.Outcome()).To(Equal(coasting.None))
			Expect(log.events).To(BeEmpty())
		})

		It("registers on Start", func() {
			s := newSession(2)
			s.Start(driver, driver)
			Expect(s.State()).To(Equal(coasting.Running))
			Expect(log.events).To(Equal([]string{"start"}))
			Expect(driver.Pending()).To(Equal(1))
		})

		It("completes exactly once", func() {
			s := newSession(2)
			s.Start(driver, driver)
			frames := driver.RunUntilIdle(100)

			Expect(frames).To(Equal(10))
			Expect(s.State()).To(Equal(coasting.Stopped))
			Expect(s.Outcome()).To(Equal(coasting.Completed))
			Expect(log.count("start")).To(Equal(1))
			Expect(log.count("completed")).To(Equal(1))
			Expect(log.count("cancelled")).To(Equal(0))
			Expect(log.events[len(log.events)-1]).To(Equal("completed"))
			Expect(driver.Pending()).To(Equal(0))
		})

		It("completes on the tick that lands on the stopping time", func() {
			s := newSession(1)
			s.Start(driver, driver)

			driver.Steps(19)
			Expect(s.IsRunning()).To(BeTrue())

			driver.Step()
			Expect(s.Outcome()).To(Equal(coasting.Completed))

			last := log.samples[len(log.samples)-1]
			Expect(last.Elapsed).To(Equal(2.0))
			Expect(last.Elapsed).To(Equal(s.StopTime()))
			Expect(last.Distance).To(Equal(s.StopDistance()))
		})

		It("reports monotone samples", func() {
			s := newSession(2)
			s.Start(driver, driver)
			driver.RunUntilIdle(100)

			Expect(log.samples).To(HaveLen(10))
			for i := 1; i < len(log.samples); i++ {
				Expect(log.samples[i].Elapsed).To(BeNumerically(">", log.samples[i-1].Elapsed))
				Expect(log.samples[i].Velocity).To(BeNumerically("<=", log.samples[i-1].Velocity))
				Expect(log.samples[i].Distance).To(BeNumerically(">=", log.samples[i-1].Distance))
			}
		})

		It("ticks on the frame interval", func() {
			s := newSession(2, coasting.WithFrameInterval(3))
			s.Start(driver, driver)
			driver.Steps(9)
			Expect(log.count("progress")).To(Equal(3))
		})

		It("cancels once on Stop", func() {
			s := newSession(2)
			s.Start(driver, driver)
			driver.Steps(3)
			s.Stop()
			s.Stop()
			driver.Steps(20)

			Expect(log.events).To(Equal([]string{"start", "progress", "progress", "progress", "cancelled"}))
			Expect(s.Outcome()).To(Equal(coasting.Cancelled))
			Expect(driver.Pending()).To(Equal(0))
		})

		It("cancels the first run before restarting", func() {
			s := newSession(2)
			s.Start(driver, driver)
			driver.Steps(2)
			s.Start(driver, driver)

			Expect(log.without("progress")).To(Equal([]string{"start", "cancelled", "start"}))
			Expect(s.IsRunning()).To(BeTrue())
			Expect(driver.Pending()).To(Equal(1))

			driver.RunUntilIdle(100)
			Expect(log.without("progress")).To(Equal([]string{"start", "cancelled", "start", "completed"}))
		})

		It("measures elapsed time from the latest start", func() {
			s := newSession(2)
			s.Start(driver, driver)
			driver.Steps(5)
			s.Start(driver, driver)
			driver.Step()
			Expect(log.samples[len(log.samples)-1].Elapsed).To(BeNumerically("~", 0.1, 1e-9))
		})

		It("can be restarted after it stops", func() {
			s := newSession(2)
			s.Start(driver, driver)
			driver.RunUntilIdle(100)
			s.Start(driver, driver)
			Expect(s.State()).To(Equal(coasting.Running))
			Expect(s.Outcome()).To(Equal(coasting.None))
			driver.RunUntilIdle(100)
			Expect(log.count("completed")).To(Equal(2))
		})

		It("ignores direct ticks while idle", func() {
			s := newSession(2)
			s.Tick()
			s.Start(driver, driver)
			s.Stop()
			s.Tick()
			Expect(log.count("progress")).To(Equal(0))
		})

		It("completes immediately on a NaN stopping time", func() {
			s := newSession(0)
			s.Start(driver, driver)
			driver.Step()
			Expect(s.Outcome()).To(Equal(coasting.Completed))
		})
	})

	Describe("re-entrant observers", func() {
		It("allows Stop from Progress", func() {
			var s *coasting.Session
			s = coasting.New(env, 2,
				coasting.WithFrameInterval(1),
				coasting.WithObserver(coasting.Observers{log, coasting.ObserverFuncs{
					OnProgress: func(_, _, _ float64) { s.Stop() },
				}}),
			)
			s.Start(driver, driver)
			driver.Steps(20)

			Expect(log.events).To(Equal([]string{"start", "progress", "cancelled"}))
			Expect(s.Outcome()).To(Equal(coasting.Cancelled))
		})

		It("allows Stop from WillStart", func() {
			var s *coasting.Session
			s = coasting.New(env, 2,
				coasting.WithObserver(coasting.Observers{log, coasting.ObserverFuncs{
					OnWillStart: func() { s.Stop() },
				}}),
			)
			s.Start(driver, driver)

			Expect(log.events).To(Equal([]string{"start", "cancelled"}))
			Expect(driver.Pending()).To(Equal(0))
		})

		It("allows Start from Cancelled", func() {
			var s *coasting.Session
			restarted := false
			s = coasting.New(env, 2,
				coasting.WithFrameInterval(1),
				coasting.WithObserver(coasting.Observers{log, coasting.ObserverFuncs{
					OnCancelled: func() {
						if !restarted {
							restarted = true
							s.Start(driver, driver)
						}
					},
				}}),
			)
			s.Start(driver, driver)
			driver.Step()
			s.Stop()

			Expect(s.IsRunning()).To(BeTrue())
			Expect(driver.Pending()).To(Equal(1))
			driver.RunUntilIdle(100)
			Expect(log.without("progress")).To(Equal([]string{"start", "cancelled", "start", "completed"}))
		})

		It("keeps one registration when Cancelled restarts during a restart", func() {
			var s *coasting.Session
			restarted := false
			s = coasting.New(env, 2,
				coasting.WithFrameInterval(1),
				coasting.WithObserver(coasting.Observers{log, coasting.ObserverFuncs{
					OnCancelled: func() {
						if !restarted {
							restarted = true
							s.Start(driver, driver)
						}
					},
				}}),
			)
			s.Start(driver, driver)
			driver.Step()
			s.Start(driver, driver)

			Expect(s.IsRunning()).To(BeTrue())
			Expect(driver.Pending()).To(Equal(1))
			Expect(log.without("progress")).To(Equal([]string{"start", "cancelled", "start"}))

			before := log.count("progress")
			driver.Step()
			Expect(log.count("progress") - before).To(Equal(1))

			driver.RunUntilIdle(100)
			Expect(s.Outcome()).To(Equal(coasting.Completed))
			Expect(driver.Pending()).To(Equal(0))
		})
	})

	Describe("frame budget", func() {
		It("measures cost on the wall clock by default", func() {
			rec := coasting.NewRecorder()
			s := coasting.New(env, 2,
				coasting.WithFrameInterval(1),
				coasting.WithFrameBudget(time.Nanosecond),
				coasting.WithObserver(coasting.Observers{rec, coasting.ObserverFuncs{
					OnProgress: func(_, _, _ float64) { time.Sleep(time.Millisecond) },
				}}),
			)
			s.Start(driver, driver)
			driver.Step()
			Expect(rec.Overruns).To(Equal(1))
		})

		It("reports ticks that overrun", func() {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			rec := coasting.NewRecorder()
			clock := &steppingClock{step: 5 * time.Millisecond}

			s := coasting.New(env, 2,
				coasting.WithObserver(rec),
				coasting.WithLogger(logger),
				coasting.WithFrameInterval(1),
				coasting.WithFrameBudget(time.Millisecond),
				coasting.WithCostClock(clock),
				coasting.WithID("budget"),
			)
			s.Start(driver, driver)
			driver.Steps(3)

			Expect(rec.Overruns).To(Equal(3))
			Expect(buf.String()).To(ContainSubstring("coast tick over frame budget"))
			Expect(buf.String()).To(ContainSubstring("session=budget"))
		})

		It("stays quiet within budget", func() {
			rec := coasting.NewRecorder()
			clock := &steppingClock{step: time.Millisecond}
			s := coasting.New(env, 2,
				coasting.WithObserver(rec),
				coasting.WithFrameInterval(1),
				coasting.WithFrameBudget(time.Second),
				coasting.WithCostClock(clock),
			)
			s.Start(driver, driver)
			driver.Steps(3)
			Expect(rec.Overruns).To(Equal(0))
			Expect(rec.Samples).To(HaveLen(3))
		})
	})
})
