package ratelimit

import (
	"context"
	"strings"
	"time"
)

const (
	DefaultLimit  = 60
	DefaultPeriod = 60 * time.Second
)

// Decision is the outcome of one admission check. On denial it carries the
// configured limit and period plus a retry-after hint for the caller.
type Decision struct {
	Allowed    bool
	Limit      int
	Period     time.Duration
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects requests per client using a sliding window of
// request timestamps.
type Limiter interface {
	Allow(ctx context.Context, clientID string) (Decision, error)
	Remaining(ctx context.Context, clientID string) (int, error)
	ResetTime(ctx context.Context, clientID string) (time.Time, error)
}

// PathPolicy decides whether a request path is subject to rate limiting.
type PathPolicy func(path string) bool

// DefaultPathPolicy limits the classification and dashboard endpoints.
// Health checks, history reads and limit queries stay exempt.
func DefaultPathPolicy(path string) bool {
	for _, prefix := range []string{"/api/triage", "/api/dashboard"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
