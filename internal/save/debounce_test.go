package save

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []int
}

func (r *recorder) record(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}

func TestDebouncerCoalesces(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.record)

	for i := 1; i <= 10; i++ {
		d.Call(i)
	}
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{10}, rec.snapshot(), "last value wins")
	assert.False(t, d.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestDebouncerFlushAndCancel(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.record)

	d.Flush()
	assert.Empty(t, rec.snapshot(), "nothing pending")

	d.Call(1)
	d.Call(2)
	d.Flush()
	assert.Equal(t, []int{2}, rec.snapshot())

	d.Call(3)
	d.Cancel()
	d.Flush()
	assert.Equal(t, []int{2}, rec.snapshot())
}

func TestDebouncerExclusiveWaitsForRunningCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var order []string
	var mu sync.Mutex
	log := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	d := NewDebouncer(time.Millisecond, func(v int) {
		close(started)
		<-release
		log("write")
	})
	d.Call(1)
	<-started

	d.Cancel() // returns while the write is still running
	done := make(chan struct{})
	go func() {
		d.Exclusive(func() { log("clear") })
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Exclusive ran alongside a write")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"write", "clear"}, order)
}

func TestDebouncerStopFlushesThenRefuses(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.record)

	d.Call(7)
	d.Stop()
	assert.Equal(t, []int{7}, rec.snapshot())

	d.Call(8)
	assert.False(t, d.Pending())
	d.Flush()
	assert.Equal(t, []int{7}, rec.snapshot())
}
