package orca

import (
	"math"
	"time"
)

// RetryPolicy defines retry behavior for job submission
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Filter      func(error) bool
}

// RetryStrategy defines the interface for retry behavior
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements RetryStrategy
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

// WithRetry configures submission retry behavior for a job. Only errors
// accepted by the policy's filter are retried; the default filter retries
// transient transport and 5xx failures.
func WithRetry(attempts int, strategy RetryStrategy) JobOption {
	return func(j *job) {
		j.RetryPolicy = &RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    strategy,
			Filter:      isTransient,
		}
	}
}

func defaultRetryPolicy(maxAttempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Strategy:    &ExponentialBackoff{Initial: 250 * time.Millisecond},
		Filter:      isTransient,
	}
}
