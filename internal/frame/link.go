package frame

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/coastsim/internal/coasting"
)

// Link is a real-time driver. Run owns a loop goroutine that fires due
// callbacks on every ticker frame and executes functions posted with Do.
// Register and handle invalidation must happen on that goroutine, which holds
// for anything called from a callback or from a function passed to Do.
type Link struct {
	period time.Duration
	origin time.Time
	reg    registry
	logger *slog.Logger

	mu     sync.Mutex
	posted []func()
	wake   chan struct{}
}

// LinkOption configures a [Link].
type LinkOption func(*Link)

func WithLogger(l *slog.Logger) LinkOption {
	return func(k *Link) {
		if l != nil {
			k.logger = l
		}
	}
}

func NewLink(fps int, opts ...LinkOption) *Link {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	l := &Link{
		period: time.Second / time.Duration(fps),
		origin: time.Now(),
		wake:   make(chan struct{}, 1),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the monotonic time since the link was created.
func (l *Link) Now() time.Duration { return time.Since(l.origin) }

func (l *Link) Period() time.Duration { return l.period }

func (l *Link) Register(callback func(), intervalMultiplier int) coasting.Handle {
	return l.reg.register(callback, intervalMultiplier)
}

// Frame returns the number of frames driven so far. Call it on the loop
// goroutine or after Run has returned.
func (l *Link) Frame() uint64 { return l.reg.frame }

// Do queues fn to run on the loop goroutine. It never blocks, so it is safe
// to call from a callback running on the loop itself.
func (l *Link) Do(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Link) drain() {
	l.mu.Lock()
	fns := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Run drives frames until ctx is done and returns ctx.Err().
func (l *Link) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.logger.Debug("frame link running", "period", l.period)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("frame link stopped", "frames", l.reg.frame)
			return ctx.Err()
		case <-l.wake:
			l.drain()
		case <-ticker.C:
			l.reg.advance()
		}
	}
}

// Drive starts s on the loop and runs frames until the coast settles or ctx
// is done. A session still running when ctx ends is stopped before Drive
// returns. It returns nil when the coast settled on its own.
func (l *Link) Drive(ctx context.Context, s *coasting.Session) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.Do(func() {
		s.Start(l, l)
		var watch coasting.Handle
		watch = l.Register(func() {
			if !s.IsRunning() {
				watch.Invalidate()
				cancel()
			}
		}, 1)
	})

	l.Run(runCtx)
	// The loop has exited, so the session is ours to touch.
	if s.IsRunning() {
		s.Stop()
	}
	return ctx.Err()
}
