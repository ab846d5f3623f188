package frame

// registry holds the callbacks of one driver. It is not safe for concurrent
// use; drivers confine it to a single goroutine.
type registry struct {
	frame   uint64
	entries []*entry
}

type entry struct {
	callback func()
	every    uint64
	base     uint64
	active   bool
}

func (e *entry) Invalidate() { e.active = false }

func (r *registry) register(callback func(), every int) *entry {
	if every < 1 {
		every = 1
	}
	e := &entry{callback: callback, every: uint64(every), base: r.frame, active: true}
	r.entries = append(r.entries, e)
	return e
}

// advance moves to the next frame and fires the callbacks due on it. It
// returns the number of callbacks invoked.
func (r *registry) advance() int {
	r.frame++

	// Callbacks may register or invalidate entries while firing.
	due := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.active && (r.frame-e.base)%e.every == 0 {
			due = append(due, e)
		}
	}
	fired := 0
	for _, e := range due {
		if e.active {
			e.callback()
			fired++
		}
	}

	live := r.entries[:0]
	for _, e := range r.entries {
		if e.active {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(r.entries); i++ {
		r.entries[i] = nil
	}
	r.entries = live
	return fired
}

func (r *registry) active() int {
	n := 0
	for _, e := range r.entries {
		if e.active {
			n++
		}
	}
	return n
}
