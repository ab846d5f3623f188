package coasting

import "time"

// State is the lifecycle state of a [Session].
type State int

const (
	NotStarted State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Outcome records how a stopped session ended.
type Outcome int

const (
	None Outcome = iota
	Completed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case None:
		return "none"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Clock is a monotonic time source. Readings are only compared with each
// other, so the epoch is arbitrary.
type Clock interface {
	Now() time.Duration
}

// Scheduler delivers a callback once every intervalMultiplier display frames
// until the returned handle is invalidated.
type Scheduler interface {
	Register(callback func(), intervalMultiplier int) Handle
}

// Handle is a live scheduler registration. Invalidate is idempotent.
type Handle interface {
	Invalidate()
}

// Observer receives session lifecycle events. Elapsed times are seconds since
// the coast started.
type Observer interface {
	WillStart()
	Progress(elapsed, velocity, distance float64)
	Completed(elapsed float64)
	Cancelled()
}

// OverrunObserver is implemented by observers that want to know when a tick
// took longer than the frame budget.
type OverrunObserver interface {
	Overrun(cost, budget time.Duration)
}

// Sample is one progress notification.
type Sample struct {
	Elapsed  float64 `json:"elapsed"`
	Velocity float64 `json:"velocity"`
	Distance float64 `json:"distance"`
}
