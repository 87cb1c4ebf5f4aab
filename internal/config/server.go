// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// minShutdownTimeout keeps graceful shutdown from being configured away.
const minShutdownTimeout = 3 * time.Second

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero disables it, which the audio proxy relies on.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header's keys and values
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

// APIServer derives the API listener settings from cfg.
func APIServer(cfg AppConfig) ServerConfig {
	shutdown := cfg.Server.ShutdownTimeout
	if shutdown < minShutdownTimeout {
		shutdown = minShutdownTimeout
	}
	maxHeader := cfg.Server.MaxHeaderBytes
	if maxHeader <= 0 {
		maxHeader = Defaults().Server.MaxHeaderBytes
	}
	return ServerConfig{
		ListenAddr:      cfg.API.ListenAddr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		MaxHeaderBytes:  maxHeader,
		ShutdownTimeout: shutdown,
	}
}

// MetricsAddr returns the metrics listen address, or "" when disabled.
func MetricsAddr(cfg AppConfig) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	return cfg.Metrics.ListenAddr
}
