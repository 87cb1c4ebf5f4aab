// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrOutboundNotAllowed indicates the URL host did not match the allowlist.
var ErrOutboundNotAllowed = errors.New("outbound host not allowed")

// NormalizeHost validates and normalizes a host for comparison.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if strings.Contains(host, "://") {
		return "", fmt.Errorf("host must not include scheme: %s", raw)
	}
	if strings.ContainsAny(host, "/@%") {
		return "", fmt.Errorf("host must be a bare name or address: %s", raw)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return "", fmt.Errorf("host must not include port: %s", raw)
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

// HostPolicy restricts which hosts the proxy endpoints may reach. An empty
// allowlist admits every host.
type HostPolicy struct {
	allowed map[string]struct{}
}

// NewHostPolicy normalizes the allowlist entries.
func NewHostPolicy(hosts []string) (*HostPolicy, error) {
	p := &HostPolicy{allowed: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		if strings.TrimSpace(h) == "" {
			continue
		}
		n, err := NormalizeHost(h)
		if err != nil {
			return nil, err
		}
		p.allowed[n] = struct{}{}
	}
	return p, nil
}

// Check returns the normalized host of u, or ErrOutboundNotAllowed. Entries
// also admit their subdomains.
func (p *HostPolicy) Check(u *url.URL) (string, error) {
	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return "", err
	}
	if p == nil || len(p.allowed) == 0 {
		return host, nil
	}
	for candidate := host; candidate != ""; {
		if _, ok := p.allowed[candidate]; ok {
			return host, nil
		}
		i := strings.IndexByte(candidate, '.')
		if i < 0 {
			break
		}
		candidate = candidate[i+1:]
	}
	return "", fmt.Errorf("%w: %s", ErrOutboundNotAllowed, host)
}
