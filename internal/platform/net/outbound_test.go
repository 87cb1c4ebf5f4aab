// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package net

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Example.COM.", want: "example.com"},
		{in: "[::1]", want: "::1"},
		{in: "127.0.0.1", want: "127.0.0.1"},
		{in: "bücher.example", want: "xn--bcher-kva.example"},
		{in: "", wantErr: true},
		{in: "http://x", wantErr: true},
		{in: "x:80", wantErr: true},
		{in: "user@x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeHost(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestHostPolicy_EmptyAllowsAll(t *testing.T) {
	p, err := NewHostPolicy(nil)
	require.NoError(t, err)

	host, err := p.Check(&url.URL{Scheme: "http", Host: "Anything.Example:8080"})
	require.NoError(t, err)
	assert.Equal(t, "anything.example", host)
}

func TestHostPolicy_AllowlistWithSubdomains(t *testing.T) {
	p, err := NewHostPolicy([]string{"example.com", " "})
	require.NoError(t, err)

	_, err = p.Check(&url.URL{Host: "example.com"})
	assert.NoError(t, err)
	_, err = p.Check(&url.URL{Host: "cdn.example.com"})
	assert.NoError(t, err)
	_, err = p.Check(&url.URL{Host: "badexample.com"})
	assert.ErrorIs(t, err, ErrOutboundNotAllowed)
	_, err = p.Check(&url.URL{Host: "example.com.evil.net"})
	assert.ErrorIs(t, err, ErrOutboundNotAllowed)
}

func TestNewHostPolicy_RejectsInvalid(t *testing.T) {
	_, err := NewHostPolicy([]string{"http://example.com"})
	assert.Error(t, err)
}
