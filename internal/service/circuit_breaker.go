package service

import (
	"sync"
	"time"

	"stablecoin-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// CircuitBreaker tracks consecutive delivery failures per endpoint.
//
//	CLOSED    deliver normally
//	OPEN      skip for cooldown after threshold consecutive failures
//	HALF_OPEN one trial delivery; success closes, failure re-opens
//
// State is process-local.
type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	circuits  map[uuid.UUID]*circuit
	now       func() time.Time
}

type circuit struct {
	state       domain.CircuitState
	failures    int
	openedAt    time.Time
	trialActive bool
}

// NewCircuitBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for cooldown.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		circuits:  make(map[uuid.UUID]*circuit),
		now:       time.Now,
	}
}

// Allow reports whether a delivery to endpointID may be attempted. A true
// result in HALF_OPEN reserves the single trial; the caller must report its
// outcome with RecordSuccess, RecordFailure or Release.
func (b *CircuitBreaker) Allow(endpointID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[endpointID]
	if !ok {
		return true
	}

	switch c.state {
	case domain.CircuitOpen:
		if b.now().Sub(c.openedAt) < b.cooldown {
			return false
		}
		c.state = domain.CircuitHalfOpen
		c.trialActive = true
		return true
	case domain.CircuitHalfOpen:
		if c.trialActive {
			return false
		}
		c.trialActive = true
		return true
	default:
		return true
	}
}

// RecordSuccess closes the circuit.
func (b *CircuitBreaker) RecordSuccess(endpointID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.circuits, endpointID)
}

// RecordFailure counts a failure, opening the circuit at the threshold or
// re-opening it after a failed trial.
func (b *CircuitBreaker) RecordFailure(endpointID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[endpointID]
	if !ok {
		c = &circuit{state: domain.CircuitClosed}
		b.circuits[endpointID] = c
	}
	c.failures++

	switch c.state {
	case domain.CircuitHalfOpen:
		c.open(b.now())
	case domain.CircuitClosed:
		if c.failures >= b.threshold {
			c.open(b.now())
		}
	}
}

// Release gives back a half-open trial that ended without an outcome, such
// as a lost claim or a rejected URL.
func (b *CircuitBreaker) Release(endpointID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.circuits[endpointID]; ok && c.state == domain.CircuitHalfOpen {
		c.trialActive = false
	}
}

// State returns the circuit state of endpointID. An OPEN circuit whose
// cooldown has passed reports HALF_OPEN.
func (b *CircuitBreaker) State(endpointID uuid.UUID) domain.CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[endpointID]
	if !ok {
		return domain.CircuitClosed
	}
	if c.state == domain.CircuitOpen && b.now().Sub(c.openedAt) >= b.cooldown {
		return domain.CircuitHalfOpen
	}
	return c.state
}

func (c *circuit) open(at time.Time) {
	c.state = domain.CircuitOpen
	c.openedAt = at
	c.trialActive = false
}
