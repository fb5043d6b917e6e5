// Package circuitbreaker stops calling a failing dependency for a while once it
// has failed often enough inside a sliding window.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type CircuitBreaker struct {
	maxFailures     int
	window          time.Duration
	timeout         time.Duration
	failures        []time.Time
	lastFailureTime time.Time
	state           State
	probing         bool
	now             func() time.Time
	mu              sync.Mutex
}

func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreakerWithWindow(maxFailures, timeout, 60*time.Second)
}

func NewCircuitBreakerWithWindow(maxFailures int, timeout time.Duration, window time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: maxFailures,
		window:      window,
		timeout:     timeout,
		state:       StateClosed,
		failures:    make([]time.Time, 0),
		now:         time.Now,
	}
}

// Execute runs fn unless the breaker is open. isFailure decides which errors
// returned by fn count against the dependency; nil counts every error.
// While half-open a single probe call is let through, and only its outcome
// closes or re-opens the breaker.
func (cb *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	probe, err := cb.before()
	if err != nil {
		return err
	}

	err = fn()
	cb.after(err != nil && (isFailure == nil || isFailure(err)), probe)
	return err
}

// before admits a call and reports whether it is the half-open probe.
func (cb *CircuitBreaker) before() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.timeout {
			return false, ErrOpen
		}
		cb.state = StateHalfOpen
		cb.failures = cb.failures[:0]
	case StateHalfOpen:
		if cb.probing {
			return false, ErrOpen
		}
	case StateClosed:
		return false, nil
	}
	cb.probing = true
	return true, nil
}

func (cb *CircuitBreaker) after(failed, probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	if probe {
		cb.probing = false
		if failed {
			cb.lastFailureTime = now
			cb.state = StateOpen
			return
		}
		cb.state = StateClosed
		cb.failures = cb.failures[:0]
		return
	}

	// Calls admitted before the breaker opened only feed the failure window.
	if failed {
		cb.lastFailureTime = now
		cb.failures = append(cb.failures, now)
	}
	cb.cleanOldFailures(now)
	if cb.state == StateClosed && len(cb.failures) > cb.maxFailures {
		cb.state = StateOpen
	}
}

func (cb *CircuitBreaker) cleanOldFailures(now time.Time) {
	cutoff := now.Add(-cb.window)
	validStart := len(cb.failures)
	for i, t := range cb.failures {
		if t.After(cutoff) {
			validStart = i
			break
		}
	}
	cb.failures = cb.failures[validStart:]
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
