// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(Config{PerHostRate: 1, PerHostBurst: 3}, clock)

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("cdn.example.com") {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)

	clock.Advance(time.Second)
	assert.True(t, l.Allow("cdn.example.com"), "a token refills after one second")
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	l := New(Config{PerHostRate: 1, PerHostBurst: 1}, clockwork.NewFakeClock())

	assert.True(t, l.Allow("a.example.com"))
	assert.False(t, l.Allow("a.example.com"))
	assert.True(t, l.Allow("b.example.com"))
	assert.False(t, l.Allow("A.EXAMPLE.COM"), "host matching is case-insensitive")
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(Config{}, nil)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("x"))
	}

	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("x"))
}

func TestLimiter_IdleHostsAreDropped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(Config{PerHostRate: 1, PerHostBurst: 1, IdleTTL: time.Minute}, clock)

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Hosts())

	clock.Advance(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Hosts())
}

func TestLimiter_AllowURL(t *testing.T) {
	l := New(Config{PerHostRate: 1, PerHostBurst: 1}, clockwork.NewFakeClock())
	u, err := url.Parse("https://cdn.example.com:8443/a.mp3")
	require.NoError(t, err)

	assert.True(t, l.AllowURL(u))
	assert.False(t, l.Allow("cdn.example.com"), "port is not part of the key")
}
