// Package circuit provides a three-state circuit breaker used to guard
// the planning pipeline: repeated catastrophic planning failures for a
// mission open that mission's breaker, so callers get an immediate
// rejection instead of re-running the full risk/allocation/search cycle
// against broken state.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is a breaker's position in the closed → open → half-open cycle.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config tunes a Breaker. MaxFailures consecutive failures open the
// breaker; after Timeout it half-opens and admits up to HalfOpenMax
// trial calls (minimum 1).
type Config struct {
	Name          string
	MaxFailures   int
	Timeout       time.Duration
	HalfOpenMax   int
	OnStateChange func(from, to State)
}

// Breaker is a single circuit breaker. All state transitions happen
// under one mutex; Execute holds it only around the bookkeeping, never
// across the guarded call itself.
type Breaker struct {
	name          string
	maxFailures   int
	timeout       time.Duration
	halfOpenMax   int
	onStateChange func(from, to State)

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	inFlight    int
	lastFailure time.Time
}

// NewBreaker builds a closed Breaker from cfg.
func NewBreaker(cfg Config) *Breaker {
	halfOpenMax := cfg.HalfOpenMax
	if halfOpenMax < 1 {
		halfOpenMax = 1
	}
	return &Breaker{
		name:          cfg.Name,
		maxFailures:   cfg.MaxFailures,
		timeout:       cfg.Timeout,
		halfOpenMax:   halfOpenMax,
		onStateChange: cfg.OnStateChange,
		state:         StateClosed,
	}
}

// Execute runs fn under the breaker. An open breaker rejects with
// ErrCircuitOpen; a saturated half-open breaker rejects with
// ErrTooManyRequests. fn's own error is returned unchanged.
func (b *Breaker) Execute(_ context.Context, fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn()
	b.afterCall(err)
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) <= b.timeout {
			return ErrCircuitOpen
		}
		b.transitionLocked(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if b.inFlight >= b.halfOpenMax {
			return ErrTooManyRequests
		}
		b.inFlight++
	}
	return nil
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}

	if err != nil {
		b.lastFailure = time.Now()
		switch b.state {
		case StateClosed:
			b.failures++
			if b.failures >= b.maxFailures {
				b.transitionLocked(StateOpen)
			}
		case StateHalfOpen:
			b.transitionLocked(StateOpen)
		}
		return
	}

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.halfOpenMax {
			b.transitionLocked(StateClosed)
		}
	}
}

// transitionLocked moves the breaker to newState and resets its
// counters. Callers hold b.mu.
func (b *Breaker) transitionLocked(newState State) {
	if b.state == newState {
		return
	}
	oldState := b.state
	b.state = newState
	b.failures = 0
	b.successes = 0
	b.inFlight = 0

	if b.onStateChange != nil {
		b.onStateChange(oldState, newState)
	}
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset forces the breaker back to closed with clean counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked(StateClosed)
}

// BreakerGroup lazily creates one Breaker per key, all sharing the same
// configuration. The planning façade keys breakers by mission id so one
// broken mission never trips another's.
type BreakerGroup struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	config   Config
}

// NewBreakerGroup builds an empty group whose members inherit
// defaultConfig.
func NewBreakerGroup(defaultConfig Config) *BreakerGroup {
	return &BreakerGroup{
		breakers: make(map[string]*Breaker),
		config:   defaultConfig,
	}
}

// Get returns the breaker for name, creating it on first use.
func (g *BreakerGroup) Get(name string) *Breaker {
	g.mu.RLock()
	b, exists := g.breakers[name]
	g.mu.RUnlock()
	if exists {
		return b
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if b, exists = g.breakers[name]; exists {
		return b
	}

	cfg := g.config
	cfg.Name = name
	b = NewBreaker(cfg)
	g.breakers[name] = b
	return b
}

// Execute runs fn under the breaker registered for name.
func (g *BreakerGroup) Execute(ctx context.Context, name string, fn func() error) error {
	return g.Get(name).Execute(ctx, fn)
}

// States snapshots every registered breaker's current state.
func (g *BreakerGroup) States() map[string]State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	states := make(map[string]State, len(g.breakers))
	for name, b := range g.breakers {
		states[name] = b.State()
	}
	return states
}
