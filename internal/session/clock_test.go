package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockExpiresExactlyOnce(t *testing.T) {
	var expires int32
	done := make(chan struct{})

	StartClock(30*time.Millisecond, 10*time.Millisecond, nil, func() {
		if atomic.AddInt32(&expires, 1) == 1 {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock never expired")
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expires))
}

func TestClockCancelSuppressesExpiry(t *testing.T) {
	var expires int32
	c := StartClock(50*time.Millisecond, 10*time.Millisecond, nil, func() {
		atomic.AddInt32(&expires, 1)
	})
	c.Cancel()

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&expires))
}

func TestClockCancelIdempotent(t *testing.T) {
	c := StartClock(20*time.Millisecond, 5*time.Millisecond, nil, nil)
	c.Cancel()
	c.Cancel()

	// Cancelling after natural expiry must also be a no-op.
	done := make(chan struct{})
	c2 := StartClock(10*time.Millisecond, 5*time.Millisecond, nil, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock never expired")
	}
	c2.Cancel()
	c2.Cancel()
}

func TestClockTicksNonIncreasing(t *testing.T) {
	var mu sync.Mutex
	var ticks []time.Duration
	done := make(chan struct{})

	StartClock(100*time.Millisecond, 20*time.Millisecond,
		func(remaining time.Duration) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		},
		func() { close(done) },
	)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock never expired")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	for i, rem := range ticks {
		assert.GreaterOrEqual(t, rem, time.Duration(0))
		if i > 0 {
			assert.LessOrEqual(t, rem, ticks[i-1])
		}
	}
}
