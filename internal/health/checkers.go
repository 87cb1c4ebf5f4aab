// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"time"
)

// defaultCheckTimeout bounds a single component probe.
const defaultCheckTimeout = 2 * time.Second

// PingChecker wraps a ping function. A failing optional component reports
// degraded instead of unhealthy.
type PingChecker struct {
	name     string
	ping     func(ctx context.Context) error
	optional bool
	timeout  time.Duration
}

// NewPingChecker creates a checker for a required component.
func NewPingChecker(name string, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping, timeout: defaultCheckTimeout}
}

// NewOptionalPingChecker creates a checker whose failure only degrades.
func NewOptionalPingChecker(name string, ping func(ctx context.Context) error) *PingChecker {
	c := NewPingChecker(name, ping)
	c.optional = true
	return c
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.ping(ctx); err != nil {
		status := StatusUnhealthy
		if c.optional {
			status = StatusDegraded
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}
