package healing

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned on fail-fast rejections so callers can report a
// descriptive reason instead of a bare external-API timeout
var ErrCircuitOpen = errors.New("circuit breaker open - service unavailable")

// BreakerState is the circuit breaker state machine position
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

const (
	// DefaultFailureThreshold is the consecutive-failure count that opens the breaker
	DefaultFailureThreshold = 5
	// DefaultRecoveryTimeout is the cool-down before an open breaker allows a probe call
	DefaultRecoveryTimeout = 60 * time.Second
)

// CircuitBreaker guards one external dependency. CLOSED counts failures; at
// the threshold it opens and rejects calls until the recovery timeout
// elapses, then a single probe call in HALF_OPEN decides between CLOSED and
// OPEN again.
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold int
	recoveryTimeout  time.Duration
	failureCount     int
	lastFailureTime  time.Time
	state            BreakerState
	now              func() time.Time
}

// NewCircuitBreaker creates a breaker with the given threshold and cool-down.
// Zero values fall back to the defaults.
func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = DefaultRecoveryTimeout
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

// Call executes fn under breaker protection. When open and the cool-down has
// not elapsed it fails fast with ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == BreakerOpen {
		if cb.now().Sub(cb.lastFailureTime) >= cb.recoveryTimeout {
			cb.state = BreakerHalfOpen
		} else {
			return ErrCircuitOpen
		}
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err == nil {
		if cb.state == BreakerHalfOpen {
			cb.state = BreakerClosed
			cb.failureCount = 0
		}
		return
	}
	cb.failureCount++
	cb.lastFailureTime = cb.now()
	if cb.failureCount >= cb.failureThreshold {
		cb.state = BreakerOpen
	}
}

// State returns the current breaker state
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount returns the current consecutive failure count
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// Reset forces the breaker back to CLOSED with a zeroed failure count
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = BreakerClosed
	cb.failureCount = 0
}

// TripHalfOpenIfElapsed flips an OPEN breaker whose cool-down has elapsed to
// HALF_OPEN. Used by degraded-state recovery sweeps.
func (cb *CircuitBreaker) TripHalfOpenIfElapsed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == BreakerOpen && !cb.lastFailureTime.IsZero() &&
		cb.now().Sub(cb.lastFailureTime) >= cb.recoveryTimeout {
		cb.state = BreakerHalfOpen
		return true
	}
	return false
}
