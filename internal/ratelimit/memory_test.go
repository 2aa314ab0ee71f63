package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestMemory(limit int, period time.Duration) (*Memory, *time.Time) {
	m := NewMemory(limit, period)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }
	return m, &current
}

func TestMemoryAdmitsUpToLimitThenRejects(t *testing.T) {
	m, clock := newTestMemory(2, 60*time.Second)
	ctx := context.Background()

	first, _ := m.Allow(ctx, "client-a")
	*clock = clock.Add(300 * time.Millisecond)
	second, _ := m.Allow(ctx, "client-a")
	*clock = clock.Add(300 * time.Millisecond)
	third, _ := m.Allow(ctx, "client-a")

	if !first.Allowed || !second.Allowed {
		t.Fatalf("expected first two requests admitted")
	}
	if third.Allowed {
		t.Fatalf("expected third request rejected")
	}
	if third.Limit != 2 || third.Period != 60*time.Second || third.RetryAfter != 60*time.Second {
		t.Fatalf("rejection should carry limit, period and retry hint: %+v", third)
	}
}

func TestMemoryRejectionDoesNotConsumeWindow(t *testing.T) {
	m, clock := newTestMemory(1, 60*time.Second)
	ctx := context.Background()

	if d, _ := m.Allow(ctx, "c"); !d.Allowed {
		t.Fatalf("expected first request admitted")
	}
	for i := 0; i < 5; i++ {
		*clock = clock.Add(time.Second)
		if d, _ := m.Allow(ctx, "c"); d.Allowed {
			t.Fatalf("expected rejection while window full")
		}
	}
	// Only the single admitted timestamp occupies the window, so once it
	// ages out the client is admitted again.
	*clock = clock.Add(56 * time.Second)
	if d, _ := m.Allow(ctx, "c"); !d.Allowed {
		t.Fatalf("expected admission after window expiry")
	}
}

func TestMemoryWindowSlides(t *testing.T) {
	m, clock := newTestMemory(2, 60*time.Second)
	ctx := context.Background()

	m.Allow(ctx, "c")
	m.Allow(ctx, "c")
	if d, _ := m.Allow(ctx, "c"); d.Allowed {
		t.Fatalf("expected rejection at limit")
	}

	*clock = clock.Add(61 * time.Second)
	if d, _ := m.Allow(ctx, "c"); !d.Allowed {
		t.Fatalf("expected admission after period elapsed")
	}
}

func TestMemoryRemaining(t *testing.T) {
	m, clock := newTestMemory(3, 60*time.Second)
	ctx := context.Background()

	if got, _ := m.Remaining(ctx, "c"); got != 3 {
		t.Fatalf("expected 3 remaining for fresh client, got %d", got)
	}
	m.Allow(ctx, "c")
	m.Allow(ctx, "c")
	if got, _ := m.Remaining(ctx, "c"); got != 1 {
		t.Fatalf("expected 1 remaining, got %d", got)
	}
	*clock = clock.Add(61 * time.Second)
	if got, _ := m.Remaining(ctx, "c"); got != 3 {
		t.Fatalf("expected window to drain, got %d", got)
	}
}

func TestMemoryResetTime(t *testing.T) {
	m, clock := newTestMemory(2, 60*time.Second)
	ctx := context.Background()

	start := *clock
	if got, _ := m.ResetTime(ctx, "c"); !got.Equal(start) {
		t.Fatalf("expected reset now for idle client, got %v", got)
	}
	m.Allow(ctx, "c")
	*clock = clock.Add(10 * time.Second)
	m.Allow(ctx, "c")
	if got, _ := m.ResetTime(ctx, "c"); !got.Equal(start.Add(60 * time.Second)) {
		t.Fatalf("expected reset at oldest+period, got %v", got)
	}
}

func TestMemoryClientsAreIndependent(t *testing.T) {
	m, _ := newTestMemory(1, 60*time.Second)
	ctx := context.Background()

	if d, _ := m.Allow(ctx, "a"); !d.Allowed {
		t.Fatalf("expected client a admitted")
	}
	if d, _ := m.Allow(ctx, "b"); !d.Allowed {
		t.Fatalf("expected client b unaffected by client a")
	}
	if d, _ := m.Allow(ctx, "a"); d.Allowed {
		t.Fatalf("expected client a rejected at its own limit")
	}
}

func TestMemoryConcurrentAllowNeverOveradmits(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := m.Allow(ctx, "shared"); d.Allowed {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != 10 {
		t.Fatalf("expected exactly 10 admissions, got %d", count)
	}
}

func TestDefaultPathPolicy(t *testing.T) {
	limited := []string{"/api/triage", "/api/dashboard"}
	exempt := []string{"/api/health", "/api/feedback/history", "/api/limits", "/other"}
	for _, p := range limited {
		if !DefaultPathPolicy(p) {
			t.Fatalf("expected %s to be rate limited", p)
		}
	}
	for _, p := range exempt {
		if DefaultPathPolicy(p) {
			t.Fatalf("expected %s to be exempt", p)
		}
	}
}
