package domain

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one Allow call. Verification endpoints
// are CPU-bound (analyzers plus nonce search), so the HTTP layer throttles
// them per caller before the orchestrator runs.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
