/*
Package accrual
File: driver.go
Description:
    The accrual driver is the interval timer behind passive income. It calls
    its callback every interval while enabled, and holds no timer at all
    while disabled (interval zero).

    The callback takes no arguments; it is expected to ask the session for
    the current rate itself.
*/

package accrual

import (
	"sync"
	"time"
)

// Driver runs a callback on an interval that can be changed at runtime.
type Driver struct {
	callback func()

	// NewTicker creates the underlying ticker. Tests replace it to drive
	// ticks by hand. It must be set before the first Schedule.
	NewTicker func(d time.Duration) (<-chan time.Time, func())

	mu       sync.Mutex
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopped  bool
}

// NewDriver returns a disabled driver.
func NewDriver(callback func()) *Driver {
	return &Driver{
		callback: callback,
		NewTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Schedule sets the interval. A non-positive interval disables the driver.
// The timer is only re-registered when the interval actually changes.
// Schedule does not wait for an in-flight callback, so the callback may
// call it.
func (d *Driver) Schedule(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || interval == d.interval {
		return
	}

	d.cancelLocked()
	d.interval = interval
	if interval == 0 {
		return
	}

	c, stopTicker := d.NewTicker(interval)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.loop(c, stopTicker, d.stop, d.done)
}

// Interval returns the current interval, zero when disabled.
func (d *Driver) Interval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interval
}

// Stop disables the driver for good and waits for an in-flight callback
// to return.
func (d *Driver) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.interval = 0
	done := d.done
	d.cancelLocked()
	d.mu.Unlock()

	if done != nil {
		<-done
	}
}

// cancelLocked signals the running loop, if any. d.mu must be held.
func (d *Driver) cancelLocked() {
	if d.stop != nil {
		close(d.stop)
	}
	d.stop = nil
	d.done = nil
}

func (d *Driver) loop(c <-chan time.Time, stopTicker func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer stopTicker()

	for {
		select {
		case <-stop:
			return
		case <-c:
			select {
			case <-stop:
				return
			default:
			}
			d.callback()
		}
	}
}
