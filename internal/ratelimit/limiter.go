// SPDX-License-Identifier: MIT

// Package ratelimit bounds how fast the server fetches from any one remote
// host on behalf of its clients.
package ratelimit

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "scenecue",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total outbound fetches rejected by the per-host limiter",
	},
	[]string{"scope"},
)

// Config holds outbound rate limiting configuration.
type Config struct {
	// PerHostRate is the sustained fetch rate per upstream host, in requests
	// per second. Zero disables limiting.
	PerHostRate  rate.Limit
	PerHostBurst int

	// IdleTTL drops a host's limiter after it has been unused this long.
	IdleTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PerHostRate:  5,
		PerHostBurst: 10,
		IdleTTL:      10 * time.Minute,
	}
}

type hostLimiter struct {
	lim      *rate.Limiter
	lastUsed time.Time
}

// Limiter keeps one token bucket per upstream host.
type Limiter struct {
	config Config
	clock  clockwork.Clock

	mu          sync.Mutex
	hosts       map[string]*hostLimiter
	lastCleanup time.Time
}

// New creates a limiter. A nil clock means the real clock.
func New(config Config, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.PerHostBurst <= 0 {
		config.PerHostBurst = 1
	}
	return &Limiter{
		config:      config,
		clock:       clock,
		hosts:       make(map[string]*hostLimiter),
		lastCleanup: clock.Now(),
	}
}

// Allow reports whether a fetch to host may proceed now.
func (l *Limiter) Allow(host string) bool {
	if l == nil || l.config.PerHostRate <= 0 {
		return true
	}
	host = strings.ToLower(host)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeCleanupLocked(now)

	h, ok := l.hosts[host]
	if !ok {
		h = &hostLimiter{lim: rate.NewLimiter(l.config.PerHostRate, l.config.PerHostBurst)}
		l.hosts[host] = h
	}
	h.lastUsed = now
	if !h.lim.AllowN(now, 1) {
		rateLimitExceeded.WithLabelValues("per_host").Inc()
		return false
	}
	return true
}

// AllowURL applies Allow to the host of u.
func (l *Limiter) AllowURL(u *url.URL) bool {
	return l.Allow(u.Hostname())
}

// Hosts returns the number of hosts currently tracked.
func (l *Limiter) Hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hosts)
}

func (l *Limiter) maybeCleanupLocked(now time.Time) {
	ttl := l.config.IdleTTL
	if ttl <= 0 || now.Sub(l.lastCleanup) < ttl {
		return
	}
	for host, h := range l.hosts {
		if now.Sub(h.lastUsed) >= ttl {
			delete(l.hosts, host)
		}
	}
	l.lastCleanup = now
}
