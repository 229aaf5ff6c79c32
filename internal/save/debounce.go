package save

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a coalesced write goes out.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces rapid calls into one invocation of fn with the last
// value, delay after the most recent call. At most one invocation is
// pending at any time, and invocations of fn never overlap.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	run sync.Mutex // held while fn runs

	mu         sync.Mutex
	timer      *time.Timer
	pending    T
	hasPending bool
	seq        uint64
	stopped    bool
}

// NewDebouncer returns a debouncer calling fn. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call replaces the pending value and restarts the quiet period. It never
// blocks on fn. Calls after Stop are dropped.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = v
	d.hasPending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

// Flush runs the pending invocation now, if any, and waits for it.
func (d *Debouncer[T]) Flush() {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	v, ok := d.take()
	d.mu.Unlock()
	if ok {
		d.fn(v)
	}
}

// Cancel drops the pending invocation without waiting for one that is
// already running. Pair it with Exclusive to order work after that run.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// Exclusive runs f once no invocation of fn is in flight. Invocations that
// fire while f runs wait for it.
func (d *Debouncer[T]) Exclusive(f func()) {
	d.run.Lock()
	defer d.run.Unlock()
	f()
}

// Stop flushes the pending invocation and refuses further calls.
func (d *Debouncer[T]) Stop() {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	d.stopped = true
	v, ok := d.take()
	d.mu.Unlock()
	if ok {
		d.fn(v)
	}
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	if seq != d.seq || !d.hasPending {
		d.mu.Unlock()
		return
	}
	v, _ := d.take()
	d.mu.Unlock()
	d.fn(v)
}

// take clears the pending value and invalidates any in-flight timer.
// d.mu must be held.
func (d *Debouncer[T]) take() (T, bool) {
	var zero T
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.hasPending {
		return zero, false
	}
	v := d.pending
	d.pending = zero
	d.hasPending = false
	d.seq++
	return v, true
}
