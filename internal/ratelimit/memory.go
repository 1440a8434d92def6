package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	windowStart int64
	count       int
}

// MemoryLimiter is the single-process fallback used when Redis is not
// configured, and by tests. Counters for past windows are swept lazily.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter

	// now is swappable for tests.
	now func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWithClock(time.Now)
}

func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*memoryCounter),
		now:      now,
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

func (l *MemoryLimiter) Admit(_ context.Context, keyID string, rpmLimit int) (Decision, error) {
	windowStart, retryAfter := currentWindow(l.now())

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[keyID]
	if !ok || c.windowStart != windowStart {
		c = &memoryCounter{windowStart: windowStart}
		l.counters[keyID] = c
	}

	if len(l.counters) > 4096 {
		l.sweepLocked(windowStart)
	}

	c.count++
	if c.count > rpmLimit {
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter}, nil
	}
	return Decision{Allowed: true}, nil
}

func (l *MemoryLimiter) sweepLocked(windowStart int64) {
	for id, c := range l.counters {
		if c.windowStart != windowStart {
			delete(l.counters, id)
		}
	}
}
