// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Defaults returns the configuration used when neither file nor environment
// set a key.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "scenecue",
		API: APIConfig{
			ListenAddr:     ":8000",
			BasePath:       "/api",
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 1200,
			},
		},
		Server: ServerRuntimeConfig{
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    0, // streaming proxy responses
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxHeaderBytes:  1 << 20,
		},
		Sessions: SessionsConfig{
			IdleTimeout:   300 * time.Second,
			SweepInterval: 30 * time.Second,
		},
		Definitions: DefinitionsConfig{
			Backend:      BackendFile,
			Dir:          "../frontend",
			SettingsFile: "settings.json",
			SQLitePath:   "scenecue.db",
		},
		Uploads: UploadsConfig{
			Dir:      "uploads",
			MaxBytes: 64 << 20,
		},
		Proxy: ProxyConfig{
			Timeout:   30 * time.Second,
			HostRPS:   5,
			HostBurst: 10,
			Cache: ProxyCacheConfig{
				Backend:   CacheMemory,
				TTL:       5 * time.Minute,
				RedisAddr: "localhost:6379",
			},
			BreakerThreshold:    5,
			BreakerResetTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
