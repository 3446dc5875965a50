package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a rate-limit check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store counts events per key inside a fixed window and answers
// allow/deny. Implementations must make the check-and-increment for a
// single key atomic relative to concurrent callers.
type Store interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}
