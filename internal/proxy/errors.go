// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package proxy

import (
	"errors"
	"fmt"
)

var (
	// ErrBadURL is returned for URLs that are not absolute http(s) URLs.
	ErrBadURL = errors.New("invalid proxy url")
	// ErrHostNotAllowed is returned when the host is outside the allowlist.
	ErrHostNotAllowed = errors.New("proxy host not allowed")
	// ErrRateLimited is returned when the upstream host's budget is spent.
	ErrRateLimited = errors.New("upstream host rate limit exceeded")
	// ErrUnavailable is returned while the host's circuit breaker is open.
	ErrUnavailable = errors.New("upstream host temporarily unavailable")
	// ErrUpstream wraps transport-level failures talking to the remote host.
	ErrUpstream = errors.New("upstream fetch failed")
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}
