package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateChangeFunc is invoked outside the breaker lock after every transition.
type StateChangeFunc func(name string, from, to CircuitState)

// CircuitBreaker guards a single upstream. After FailureThreshold consecutive
// failures it rejects calls until OpenTimeout elapses, then lets at most
// HalfOpenMaxReq probes through before deciding whether to close again.
type CircuitBreaker struct {
	mu sync.Mutex

	name     string
	cfg      CircuitBreakerConfig
	onChange StateChangeFunc
	now      func() time.Time

	state     CircuitState
	failures  int
	openedAt  time.Time
	probes    int
	successes int
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, onChange StateChangeFunc) *CircuitBreaker {
	return &CircuitBreaker{
		name:     name,
		cfg:      NormalizeCircuitBreakerConfig(cfg),
		onChange: onChange,
		now:      time.Now,
		state:    CircuitStateClosed,
	}
}

func (b *CircuitBreaker) Name() string {
	return b.name
}

// Allow reports whether a call may proceed. A disabled breaker always allows.
func (b *CircuitBreaker) Allow() error {
	if !b.cfg.Enabled {
		return nil
	}

	b.mu.Lock()
	from := b.state
	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.transition(CircuitStateHalfOpen)
	}

	var err error
	switch b.state {
	case CircuitStateOpen:
		err = ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			err = ErrCircuitOpen
		} else {
			b.probes++
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return err
}

func (b *CircuitBreaker) RecordSuccess() {
	if !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		if b.probes > 0 {
			b.probes--
		}
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
			b.transition(CircuitStateClosed)
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *CircuitBreaker) RecordFailure() {
	if !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.transition(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

// transition must be called with b.mu held.
func (b *CircuitBreaker) transition(to CircuitState) {
	b.state = to
	b.probes = 0
	b.successes = 0
	switch to {
	case CircuitStateOpen:
		b.openedAt = b.now()
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	}
}

func (b *CircuitBreaker) notify(from, to CircuitState) {
	if from == to || b.onChange == nil {
		return
	}
	b.onChange(b.name, from, to)
}

// BreakerSet lazily creates one breaker per key, e.g. per upstream domain.
type BreakerSet struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	onChange StateChangeFunc
	items    map[string]*CircuitBreaker
}

func NewBreakerSet(cfg CircuitBreakerConfig, onChange StateChangeFunc) *BreakerSet {
	return &BreakerSet{
		cfg:      NormalizeCircuitBreakerConfig(cfg),
		onChange: onChange,
		items:    make(map[string]*CircuitBreaker),
	}
}

func (s *BreakerSet) Get(key string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.items[key]; ok {
		return b
	}
	b := NewCircuitBreaker(key, s.cfg, s.onChange)
	s.items[key] = b
	return b
}
