// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		envSet       bool
		want         string
	}{
		{"environment variable set", "TEST_STRING", "default", "from-env", true, "from-env"},
		{"environment variable not set", "TEST_STRING_UNSET", "default", "", false, "default"},
		{"environment variable empty string", "TEST_STRING_EMPTY", "default", "", true, "default"},
		{"sensitive variable (password)", "TEST_PASSWORD", "default", "secret123", true, "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, ParseString(tt.key, tt.defaultValue))
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		envSet   bool
		want     int
	}{
		{"valid integer", "100", true, 100},
		{"invalid integer", "not-a-number", true, 42},
		{"empty string", "", true, 42},
		{"not set", "", false, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv("TEST_INT", tt.envValue)
			}
			assert.Equal(t, tt.want, ParseInt("TEST_INT", 42))
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION_BAD", "ninety")
	assert.Equal(t, time.Second, ParseDuration("TEST_DURATION_BAD", time.Second))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "1", "YES"} {
		t.Setenv("TEST_BOOL", v)
		assert.True(t, ParseBool("TEST_BOOL", false), v)
	}
	for _, v := range []string{"false", "0", "No"} {
		t.Setenv("TEST_BOOL", v)
		assert.False(t, ParseBool("TEST_BOOL", true), v)
	}
	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, ParseBool("TEST_BOOL", true))
}

func TestParseFloatAndInt64(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, ParseFloat("TEST_FLOAT", 1), 1e-9)

	t.Setenv("TEST_INT64", "68719476736")
	assert.Equal(t, int64(68719476736), ParseInt64("TEST_INT64", 1))
}

func TestParseList(t *testing.T) {
	t.Setenv("TEST_LIST", " a.example , ,b.example")
	assert.Equal(t, []string{"a.example", "b.example"}, ParseList("TEST_LIST", nil))

	assert.Equal(t, []string{"*"}, ParseList("TEST_LIST_UNSET", []string{"*"}))
}
