package ratelimit

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"TradeDeck/internal/domain/repository"
)

// cleanupProbability is the chance that any single Check also runs a
// cleanup pass, so the table is pruned without a background timer.
const cleanupProbability = 0.01

type entry struct {
	count   int
	resetAt time.Time
}

// ClientLimiter enforces a fixed-window request count per client
// identity. Memory stays bounded under unbounded identity cardinality:
// cleanup passes delete expired windows and, if the table still exceeds
// maxEntries, evict the entries closest to expiry until it fits.
type ClientLimiter struct {
	mu         sync.Mutex
	entries    map[string]*entry
	limit      int
	interval   time.Duration
	maxEntries int
	peak       int
	clock      repository.Clock
	metrics    repository.Metrics
	chance     func() float64
}

func NewClientLimiter(limit int, interval time.Duration, maxEntries int, clock repository.Clock, metrics repository.Metrics) *ClientLimiter {
	if clock == nil {
		clock = repository.SystemClock{}
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ClientLimiter{
		entries:    make(map[string]*entry),
		limit:      limit,
		interval:   interval,
		maxEntries: maxEntries,
		clock:      clock,
		metrics:    metrics,
		chance:     rng.Float64,
	}
}

// Check records one request for identity and reports whether it is
// within the window limit. A rejected request does not open or extend
// a window.
func (l *ClientLimiter) Check(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if l.chance() < cleanupProbability {
		l.cleanup(now)
	}

	e, ok := l.entries[identity]
	if !ok || !now.Before(e.resetAt) {
		l.entries[identity] = &entry{count: 1, resetAt: now.Add(l.interval)}
		if len(l.entries) > l.peak {
			l.peak = len(l.entries)
		}
		if l.metrics != nil {
			l.metrics.RecordLimiterTracked(len(l.entries))
		}
		return true
	}
	if e.count >= l.limit {
		if l.metrics != nil {
			l.metrics.RecordLimiterRejection("client")
		}
		return false
	}
	e.count++
	return true
}

// cleanup deletes expired windows, then evicts live entries soonest to
// reset until the table is back under maxEntries. Entries with the
// latest reset times are the ones worth keeping.
func (l *ClientLimiter) cleanup(now time.Time) {
	removed := 0
	for id, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, id)
			removed++
		}
	}

	if over := len(l.entries) - l.maxEntries; over > 0 {
		type victim struct {
			id      string
			resetAt time.Time
		}
		victims := make([]victim, 0, len(l.entries))
		for id, e := range l.entries {
			victims = append(victims, victim{id: id, resetAt: e.resetAt})
		}
		sort.Slice(victims, func(i, j int) bool { return victims[i].resetAt.Before(victims[j].resetAt) })
		for _, v := range victims[:over] {
			delete(l.entries, v.id)
		}
		removed += over
	}

	if removed > 0 && l.metrics != nil {
		l.metrics.RecordLimiterEviction(removed)
		l.metrics.RecordLimiterTracked(len(l.entries))
	}
}

// LimiterMetrics reports table occupancy for observability.
type LimiterMetrics struct {
	Tracked    int `json:"tracked"`
	Peak       int `json:"peak"`
	MaxEntries int `json:"max_entries"`
}

func (l *ClientLimiter) Metrics() LimiterMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LimiterMetrics{Tracked: len(l.entries), Peak: l.peak, MaxEntries: l.maxEntries}
}

// Remaining returns the slots left in identity's current window.
func (l *ClientLimiter) Remaining(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[identity]
	if !ok || !l.clock.Now().Before(e.resetAt) {
		return l.limit
	}
	if e.count >= l.limit {
		return 0
	}
	return l.limit - e.count
}

// Reset forgets every tracked identity.
func (l *ClientLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
	l.peak = 0
}
