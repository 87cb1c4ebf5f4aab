// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resilience

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RegistryConfig configures the breakers a Registry hands out.
type RegistryConfig struct {
	Component    string
	Threshold    int
	ResetTimeout time.Duration
}

// Registry manages one breaker per key (an upstream host, typically).
// A nil *Registry allows everything.
type Registry struct {
	mu       sync.Mutex
	cfg      RegistryConfig
	clock    clockwork.Clock
	breakers map[string]*CircuitBreaker
}

// NewRegistry returns an empty registry. A nil clock uses the wall clock.
func NewRegistry(cfg RegistryConfig, clock clockwork.Clock) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		cfg:      cfg,
		clock:    clock,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for key, creating it on first use.
func (r *Registry) Get(key string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[key]; ok {
		return b
	}
	b := NewCircuitBreaker(r.cfg.Component, r.cfg.Threshold, r.cfg.ResetTimeout, WithClock(r.clock))
	r.breakers[key] = b
	return b
}

// Allow is Get(key).Allow() that tolerates a nil registry.
func (r *Registry) Allow(key string) bool {
	if r == nil {
		return true
	}
	return r.Get(key).Allow()
}

// Report records the outcome of a request to key.
func (r *Registry) Report(key string, ok bool) {
	if r == nil {
		return
	}
	b := r.Get(key)
	if ok {
		b.Success()
		return
	}
	b.Failure()
}
