// Package ratelimit provides fixed-window throttling for OTP operations.
//
// The limiter is advisory, not a security boundary: the default in-memory
// store loses its counters on restart, and a shared Redis store is
// available for multi-instance deployments.
package ratelimit

import (
	"context"
	"time"
)

// Operation names a throttled action. The identity (normalized email) and
// the operation together form the window key.
type Operation string

const (
	OpSendOTP   Operation = "sendOtp"
	OpVerifyOTP Operation = "verifyOtp"
)

// Limit is a fixed-window budget.
type Limit struct {
	MaxAttempts int
	Window      time.Duration
}

// Limits is the per-operation budget table.
var Limits = map[Operation]Limit{
	OpSendOTP:   {MaxAttempts: 3, Window: time.Hour},
	OpVerifyOTP: {MaxAttempts: 5, Window: time.Hour},
}

// Result is the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds until the window clears, for the
// Retry-After style field in 429 responses.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds()) + 1
	if secs < 0 {
		return 0
	}
	return secs
}

// Store decides whether an (identity, operation) attempt is allowed now.
// Check counts the attempt when it allows it; Reset clears the entry,
// used after a successful verification.
type Store interface {
	Check(ctx context.Context, identity string, op Operation) (Result, error)
	Reset(ctx context.Context, identity string, op Operation) error
}

func key(identity string, op Operation) string {
	return string(op) + ":" + identity
}
