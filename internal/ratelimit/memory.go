package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process sliding-window limiter. Each client maps to an
// ordered slice of request timestamps; entries older than the period are
// evicted lazily on every check. The evict-check-append sequence runs under
// one lock so concurrent requests for the same client cannot both slip past
// the limit.
type Memory struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time
}

func NewMemory(limit int, period time.Duration) *Memory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Memory{
		limit:    limit,
		period:   period,
		now:      func() time.Time { return time.Now().UTC() },
		requests: make(map[string][]time.Time),
	}
}

func (m *Memory) Allow(_ context.Context, clientID string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	window := m.evict(clientID, now)
	if len(window) < m.limit {
		m.requests[clientID] = append(window, now)
		return Decision{
			Allowed:   true,
			Limit:     m.limit,
			Period:    m.period,
			Remaining: m.limit - len(window) - 1,
		}, nil
	}

	return Decision{
		Allowed:    false,
		Limit:      m.limit,
		Period:     m.period,
		Remaining:  0,
		RetryAfter: m.period,
	}, nil
}

func (m *Memory) Remaining(_ context.Context, clientID string) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	window := m.evict(clientID, now)
	remaining := m.limit - len(window)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (m *Memory) ResetTime(_ context.Context, clientID string) (time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	window := m.evict(clientID, now)
	if len(window) == 0 {
		return now, nil
	}
	return window[0].Add(m.period), nil
}

// evict drops timestamps older than the trailing period and stores the
// trimmed window back. Must be called with the lock held.
func (m *Memory) evict(clientID string, now time.Time) []time.Time {
	window := m.requests[clientID]
	cutoff := now.Add(-m.period)
	trimmed := 0
	for trimmed < len(window) && window[trimmed].Before(cutoff) {
		trimmed++
	}
	if trimmed > 0 {
		window = append([]time.Time(nil), window[trimmed:]...)
		if len(window) == 0 {
			delete(m.requests, clientID)
		} else {
			m.requests[clientID] = window
		}
	}
	return window
}
