// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads and validates the daemon configuration.
package config

import (
	"strings"

	"github.com/ManuGH/scenecue/internal/validate"
)

// Validate checks a resolved AppConfig and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		v.AddError("logLevel", "must be one of trace, debug, info, warn, error", cfg.LogLevel)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	if cfg.API.RateLimit.Enabled {
		v.Positive("api.rateLimit.requestsPerMinute", cfg.API.RateLimit.RequestsPerMinute)
	}
	for _, entry := range cfg.API.RateLimit.Whitelist {
		if strings.TrimSpace(entry) != "" {
			v.IPOrCIDR("api.rateLimit.whitelist", entry)
		}
	}

	v.PositiveDuration("server.readTimeout", cfg.Server.ReadTimeout)
	if cfg.Server.WriteTimeout < 0 {
		v.AddError("server.writeTimeout", "cannot be negative", cfg.Server.WriteTimeout)
	}

	v.PositiveDuration("sessions.idleTimeout", cfg.Sessions.IdleTimeout)
	if cfg.Sessions.SweepInterval < 0 {
		v.AddError("sessions.sweepInterval", "cannot be negative", cfg.Sessions.SweepInterval)
	}

	v.OneOf("definitions.backend", cfg.Definitions.Backend, []string{BackendFile, BackendSQLite})
	switch cfg.Definitions.Backend {
	case BackendFile:
		v.NotEmpty("definitions.dir", cfg.Definitions.Dir)
		v.NotEmpty("definitions.settingsFile", cfg.Definitions.SettingsFile)
	case BackendSQLite:
		v.NotEmpty("definitions.sqlitePath", cfg.Definitions.SQLitePath)
	}

	v.NotEmpty("uploads.dir", cfg.Uploads.Dir)
	if cfg.Uploads.MaxBytes <= 0 {
		v.AddError("uploads.maxBytes", "must be positive", cfg.Uploads.MaxBytes)
	}

	v.PositiveDuration("proxy.timeout", cfg.Proxy.Timeout)
	if cfg.Proxy.HostRPS < 0 {
		v.AddError("proxy.hostRPS", "cannot be negative", cfg.Proxy.HostRPS)
	}
	v.NonNegative("proxy.hostBurst", cfg.Proxy.HostBurst)
	v.NonNegative("proxy.breakerThreshold", cfg.Proxy.BreakerThreshold)
	if cfg.Proxy.BreakerThreshold > 0 {
		v.PositiveDuration("proxy.breakerResetTimeout", cfg.Proxy.BreakerResetTimeout)
	}
	v.OneOf("proxy.cache.backend", cfg.Proxy.Cache.Backend, []string{CacheNone, CacheMemory, CacheRedis})
	if cfg.Proxy.Cache.Backend == CacheRedis {
		v.NotEmpty("proxy.cache.redisAddr", cfg.Proxy.Cache.RedisAddr)
	}
	if cfg.Proxy.Cache.Backend != CacheNone {
		v.PositiveDuration("proxy.cache.ttl", cfg.Proxy.Cache.TTL)
	}

	if cfg.Metrics.Enabled {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
	}
	v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)

	return v.Err()
}
