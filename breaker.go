package orca

import (
	"sync"
	"time"
)

/*
CircuitState represents the state of the circuit breaker.
This is used to track the current operational mode of the circuit breaker
as it transitions between different states based on endpoint health.
*/
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation state
	CircuitOpen                         // Failure state, rejecting submissions
	CircuitHalfOpen                     // Probationary state, allowing limited submissions
)

/*
CircuitBreaker guards one service endpoint. After maxFailures consecutive
submission failures the endpoint opens and rejects fast, sparing a dead or
overloaded QPU service the full retry schedule of every caller. Once
resetTimeout elapses a limited number of probe submissions are allowed
through; a success closes the circuit again.
*/
type CircuitBreaker struct {
	mu               sync.RWMutex
	maxFailures      int           // Maximum failures before opening circuit
	resetTimeout     time.Duration // Time to wait before attempting recovery
	halfOpenMax      int           // Maximum submissions allowed in half-open state
	failureCount     int           // Current count of consecutive failures
	state            CircuitState  // Current state of the circuit breaker
	openTime         time.Time     // Time when circuit was opened
	halfOpenAttempts int           // Number of attempts made in half-open state
}

// NewCircuitBreaker creates a circuit breaker initialized in closed state.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        CircuitClosed,
	}
}

/*
RecordFailure records a failed submission and updates the circuit state,
opening the circuit once the failure threshold is exceeded.
*/
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.failureCount >= cb.maxFailures {
		if cb.state == CircuitHalfOpen {
			// If we fail in half-open state, go back to open
			cb.state = CircuitOpen
			cb.openTime = time.Now()
			logger.Warn("circuit breaker reopened from half-open state")
		} else if cb.state == CircuitClosed {
			cb.state = CircuitOpen
			cb.openTime = time.Now()
			logger.Warn("circuit breaker opened")
		}
	}
}

/*
RecordSuccess records a successful submission, closing the circuit from
half-open after enough probes and resetting the failure count when closed.
*/
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.state = CircuitClosed
			cb.failureCount = 0
			cb.halfOpenAttempts = 0
			logger.Info("circuit breaker closed from half-open")
		}
	} else if cb.state == CircuitClosed {
		cb.failureCount = 0
	}
}

/*
Allow determines if a submission is allowed based on the circuit state.
*/
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenAttempts = 0
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.halfOpenAttempts < cb.halfOpenMax
	default:
		return false
	}
}
