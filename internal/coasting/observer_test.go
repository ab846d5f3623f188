package coasting_test

import (
	"bytes"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/coastsim/internal/coasting"
)

var _ = Describe("Observers", func() {
	It("fans out in order", func() {
		var order []string
		mk := func(name string) coasting.Observer {
			return coasting.ObserverFuncs{
				OnProgress: func(_, _, _ float64) { order = append(order, name) },
				OnOverrun:  func(_, _ time.Duration) { order = append(order, name+"!") },
			}
		}
		obs := coasting.Observers{mk("a"), coasting.NopObserver{}, mk("b")}
		obs.Progress(0, 0, 0)
		obs.Overrun(time.Second, time.Millisecond)
		Expect(order).To(Equal([]string{"a", "b", "a!", "b!"}))
	})

	It("skips nil callbacks", func() {
		f := coasting.ObserverFuncs{}
		Expect(func() {
			f.WillStart()
			f.Progress(1, 2, 3)
			f.Completed(1)
			f.Cancelled()
			f.Overrun(0, 0)
		}).NotTo(Panic())
	})

	It("logs lifecycle events", func() {
		var buf bytes.Buffer
		l := coasting.LogObserver{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
		l.WillStart()
		l.Progress(0.1, 2, 0.2)
		l.Completed(1)
		l.Cancelled()

		out := buf.String()
		Expect(out).To(ContainSubstring("will start coast"))
		Expect(out).To(ContainSubstring("did end coast"))
		Expect(out).To(ContainSubstring("did cancel coast"))
		Expect(out).NotTo(ContainSubstring("coasting"))
	})
})

var _ = Describe("Recorder", func() {
	It("keeps the latest run only", func() {
		r := coasting.NewRecorder()
		_, ok := r.Last()
		Expect(ok).To(BeFalse())

		r.WillStart()
		r.Progress(0.1, 5, 0.5)
		r.Cancelled()
		Expect(r.Outcome).To(Equal(coasting.Cancelled))

		r.WillStart()
		Expect(r.Samples).To(BeEmpty())
		Expect(r.Outcome).To(Equal(coasting.None))

		r.Progress(0.2, 4, 0.9)
		r.Completed(0.2)
		last, ok := r.Last()
		Expect(ok).To(BeTrue())
		Expect(last).To(Equal(coasting.Sample{Elapsed: 0.2, Velocity: 4, Distance: 0.9}))
		Expect(r.Starts).To(Equal(2))
		Expect(r.Outcome).To(Equal(coasting.Completed))
		Expect(r.Elapsed).To(Equal(0.2))
	})
})

var _ = DescribeTable("state names",
	func(got, want string) { Expect(got).To(Equal(want)) },
	Entry("not started", coasting.NotStarted.String(), "not-started"),
	Entry("running", coasting.Running.String(), "running"),
	Entry("stopped", coasting.Stopped.String(), "stopped"),
	Entry("none", coasting.None.String(), "none"),
	Entry("completed", coasting.Completed.String(), "completed"),
	Entry("cancelled", coasting.Cancelled.String(), "cancelled"),
)
