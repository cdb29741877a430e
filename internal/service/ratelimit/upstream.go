package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TradeDeck/internal/domain/repository"
)

const (
	WindowMinute = "minute"
	WindowDay    = "day"
)

// LimitError reports which window blocked a request and how long until
// it next admits one.
type LimitError struct {
	Window     string
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit reached for %s window, retry after %s", e.Window, e.RetryAfter)
}

// UpstreamStats is a point-in-time snapshot of both windows. The reset
// instants are when each window's oldest entry expires; zero when the
// window is empty.
type UpstreamStats struct {
	UsedMinute      int       `json:"used_minute"`
	UsedDay         int       `json:"used_day"`
	RemainingMinute int       `json:"remaining_minute"`
	RemainingDay    int       `json:"remaining_day"`
	MinuteResetAt   time.Time `json:"minute_reset_at,omitempty"`
	DayResetAt      time.Time `json:"day_reset_at,omitempty"`
}

// UpstreamLimiter enforces a per-minute and a per-day sliding window
// over outbound provider calls. Both windows must admit a request; the
// check and the recording happen under one lock so concurrent callers
// cannot jointly overshoot a limit.
type UpstreamLimiter struct {
	mu        sync.Mutex
	minute    []time.Time
	day       []time.Time
	perMinute int
	perDay    int
	clock     repository.Clock
	metrics   repository.Metrics
}

func NewUpstreamLimiter(perMinute, perDay int, clock repository.Clock, metrics repository.Metrics) *UpstreamLimiter {
	if clock == nil {
		clock = repository.SystemClock{}
	}
	return &UpstreamLimiter{perMinute: perMinute, perDay: perDay, clock: clock, metrics: metrics}
}

// Acquire consumes one slot from both windows or returns a *LimitError
// naming the binding window. On success the request is recorded before
// the lock is released.
func (l *UpstreamLimiter) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)

	if len(l.minute) >= l.perMinute {
		l.reject(WindowMinute)
		return &LimitError{Window: WindowMinute, RetryAfter: l.retryAfter(l.minute, now, time.Minute)}
	}
	if len(l.day) >= l.perDay {
		l.reject(WindowDay)
		return &LimitError{Window: WindowDay, RetryAfter: l.retryAfter(l.day, now, 24*time.Hour)}
	}

	l.minute = append(l.minute, now)
	l.day = append(l.day, now)
	l.report()
	return nil
}

// CanMakeRequest reports whether Acquire would currently succeed. It
// consumes nothing, so the answer is advisory under concurrency.
func (l *UpstreamLimiter) CanMakeRequest() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.minute) < l.perMinute && len(l.day) < l.perDay
}

// Remaining returns the free slots in the tighter accounting of each
// window.
func (l *UpstreamLimiter) Remaining() (perMinute, perDay int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return l.perMinute - len(l.minute), l.perDay - len(l.day)
}

// TimeUntilNextRequest returns how long a caller must wait before a
// slot opens, or zero when one is free now. The minute window answers
// first; the day window only when the minute window has room.
func (l *UpstreamLimiter) TimeUntilNextRequest() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)

	if len(l.minute) >= l.perMinute {
		return l.retryAfter(l.minute, now, time.Minute)
	}
	if len(l.day) >= l.perDay {
		return l.retryAfter(l.day, now, 24*time.Hour)
	}
	return 0
}

// WaitForNextRequest blocks until a slot is acquired or ctx is done.
func (l *UpstreamLimiter) WaitForNextRequest(ctx context.Context) error {
	for {
		err := l.Acquire()
		if err == nil {
			return nil
		}
		le, ok := err.(*LimitError)
		if !ok {
			return err
		}
		wait := le.RetryAfter
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Stats snapshots both windows after pruning expired entries.
func (l *UpstreamLimiter) Stats() UpstreamStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	s := UpstreamStats{
		UsedMinute:      len(l.minute),
		UsedDay:         len(l.day),
		RemainingMinute: l.perMinute - len(l.minute),
		RemainingDay:    l.perDay - len(l.day),
	}
	if len(l.minute) > 0 {
		s.MinuteResetAt = l.minute[0].Add(time.Minute)
	}
	if len(l.day) > 0 {
		s.DayResetAt = l.day[0].Add(24 * time.Hour)
	}
	return s
}

// Reset clears both windows.
func (l *UpstreamLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minute = nil
	l.day = nil
	l.report()
}

// prune drops timestamps that have slid out of their window. Entries
// are appended in time order, so the first survivor ends the scan.
func (l *UpstreamLimiter) prune(now time.Time) {
	l.minute = trim(l.minute, now.Add(-time.Minute))
	l.day = trim(l.day, now.Add(-24*time.Hour))
}

func trim(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}

func (l *UpstreamLimiter) retryAfter(ts []time.Time, now time.Time, window time.Duration) time.Duration {
	if len(ts) == 0 {
		return 0
	}
	d := ts[0].Add(window).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (l *UpstreamLimiter) reject(window string) {
	if l.metrics != nil {
		l.metrics.RecordLimiterRejection("upstream_" + window)
	}
}

func (l *UpstreamLimiter) report() {
	if l.metrics == nil {
		return
	}
	l.metrics.RecordQuotaRemaining(WindowMinute, l.perMinute-len(l.minute))
	l.metrics.RecordQuotaRemaining(WindowDay, l.perDay-len(l.day))
}
