package accrual

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTickers hands out manually driven tickers and records their periods.
type fakeTickers struct {
	mu      sync.Mutex
	periods []time.Duration
	chans   []chan time.Time
	stopped []bool
}

func (f *fakeTickers) newTicker(d time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := make(chan time.Time)
	i := len(f.chans)
	f.periods = append(f.periods, d)
	f.chans = append(f.chans, c)
	f.stopped = append(f.stopped, false)
	return c, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped[i] = true
	}
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chans)
}

func (f *fakeTickers) tick(i int) {
	f.mu.Lock()
	c := f.chans[i]
	f.mu.Unlock()
	c <- time.Now()
}

func (f *fakeTickers) isStopped(i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped[i]
}

func TestDriverSchedule(t *testing.T) {
	var calls atomic.Int32
	tickers := &fakeTickers{}
	d := NewDriver(func() { calls.Add(1) })
	d.NewTicker = tickers.newTicker
	defer d.Stop()

	d.Schedule(0)
	assert.Zero(t, tickers.count(), "disabled driver holds no timer")

	d.Schedule(500 * time.Millisecond)
	d.Schedule(500 * time.Millisecond)
	require.Equal(t, 1, tickers.count(), "same interval does not re-register")
	assert.Equal(t, 500*time.Millisecond, d.Interval())

	tickers.tick(0)
	tickers.tick(0)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	d.Schedule(time.Second)
	require.Equal(t, 2, tickers.count())
	assert.Equal(t, time.Second, tickers.periods[1])
	require.Eventually(t, func() bool { return tickers.isStopped(0) }, time.Second, time.Millisecond)

	d.Schedule(0)
	assert.Zero(t, d.Interval())
	require.Eventually(t, func() bool { return tickers.isStopped(1) }, time.Second, time.Millisecond)
}

func TestDriverStopWaitsAndSticks(t *testing.T) {
	tickers := &fakeTickers{}
	release := make(chan struct{})
	entered := make(chan struct{})
	d := NewDriver(func() {
		close(entered)
		<-release
	})
	d.NewTicker = tickers.newTicker

	d.Schedule(time.Second)
	tickers.tick(0)
	<-entered

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the callback was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
	assert.True(t, tickers.isStopped(0))

	d.Schedule(time.Second)
	assert.Equal(t, 1, tickers.count(), "stopped driver ignores Schedule")
}

func TestDriverCallbackMayReschedule(t *testing.T) {
	tickers := &fakeTickers{}
	var d *Driver
	done := make(chan struct{})
	d = NewDriver(func() {
		d.Schedule(0)
		close(done)
	})
	d.NewTicker = tickers.newTicker

	d.Schedule(time.Second)
	tickers.tick(0)
	<-done

	assert.Zero(t, d.Interval())
	d.Stop()
}
