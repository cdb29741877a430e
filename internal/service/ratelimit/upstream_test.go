package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestUpstreamMinuteWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(5, 25, clock, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Acquire())
	}

	err := l.Acquire()
	require.Error(t, err)
	le, ok := err.(*LimitError)
	require.True(t, ok)
	assert.Equal(t, WindowMinute, le.Window)
	assert.Equal(t, time.Minute, le.RetryAfter)

	clock.Advance(61 * time.Second)
	assert.NoError(t, l.Acquire())
}

func TestUpstreamDayWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(5, 25, clock, nil)

	for i := 0; i < 25; i++ {
		require.NoError(t, l.Acquire())
		clock.Advance(time.Minute)
	}

	err := l.Acquire()
	require.Error(t, err)
	le, ok := err.(*LimitError)
	require.True(t, ok)
	assert.Equal(t, WindowDay, le.Window)
}

func TestUpstreamRemaining(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(5, 25, clock, nil)

	require.NoError(t, l.Acquire())
	require.NoError(t, l.Acquire())

	perMinute, perDay := l.Remaining()
	assert.Equal(t, 3, perMinute)
	assert.Equal(t, 23, perDay)

	stats := l.Stats()
	assert.Equal(t, 2, stats.UsedMinute)
	assert.Equal(t, 2, stats.UsedDay)
}

func TestUpstreamCanMakeRequestDoesNotConsume(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(1, 25, clock, nil)

	assert.True(t, l.CanMakeRequest())
	assert.True(t, l.CanMakeRequest())
	require.NoError(t, l.Acquire())
	assert.False(t, l.CanMakeRequest())
}

func TestUpstreamTimeUntilNextRequest(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(2, 25, clock, nil)

	assert.Equal(t, time.Duration(0), l.TimeUntilNextRequest())

	require.NoError(t, l.Acquire())
	clock.Advance(10 * time.Second)
	require.NoError(t, l.Acquire())

	assert.Equal(t, 50*time.Second, l.TimeUntilNextRequest())
}

func TestUpstreamReset(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(1, 1, clock, nil)

	require.NoError(t, l.Acquire())
	require.Error(t, l.Acquire())

	l.Reset()
	assert.NoError(t, l.Acquire())
}

func TestUpstreamConcurrentAcquireNeverOvershoots(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(5, 25, clock, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Acquire() == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, granted)
}

func TestUpstreamWaitForNextRequestHonorsContext(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(1, 1, clock, nil)
	require.NoError(t, l.Acquire())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.WaitForNextRequest(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpstreamTimeUntilNextRequestMinuteWindowFirst(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(1, 1, clock, nil)

	// One acquisition saturates both windows; the minute window's
	// shorter wait answers, not the day window's.
	require.NoError(t, l.Acquire())
	assert.Equal(t, time.Minute, l.TimeUntilNextRequest())

	// Once the minute window frees up, the day window binds.
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 24*time.Hour-2*time.Minute, l.TimeUntilNextRequest())
}

func TestUpstreamWaitForNextRequestSuspendsThenAcquires(t *testing.T) {
	clock := newFakeClock()
	l := NewUpstreamLimiter(1, 25, clock, nil)
	require.NoError(t, l.Acquire())

	// Leave 20ms of real wait in the minute window, then free it
	// while the caller sleeps.
	clock.Advance(time.Minute - 20*time.Millisecond)
	go func() {
		time.Sleep(5 * time.Millisecond)
		clock.Advance(time.Minute)
	}()

	start := time.Now()
	require.NoError(t, l.WaitForNextRequest(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 1, l.Stats().UsedMinute)
}
