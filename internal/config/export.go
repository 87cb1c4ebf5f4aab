// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

const redacted = "***"

func ptr[T any](v T) *T { return &v }

// ToFileConfig renders cfg in the YAML file layout. Loading the result as a
// config file reproduces cfg, secrets aside.
func ToFileConfig(cfg AppConfig) FileConfig {
	return FileConfig{
		LogLevel:   ptr(cfg.LogLevel),
		LogService: ptr(cfg.LogService),
		API: &fileAPIConfig{
			ListenAddr:     ptr(cfg.API.ListenAddr),
			BasePath:       ptr(cfg.API.BasePath),
			AllowedOrigins: cfg.API.AllowedOrigins,
			RateLimit: &fileRateLimitConfig{
				Enabled:           ptr(cfg.API.RateLimit.Enabled),
				RequestsPerMinute: ptr(cfg.API.RateLimit.RequestsPerMinute),
				Whitelist:         cfg.API.RateLimit.Whitelist,
			},
		},
		Server: &fileServerConfig{
			ReadTimeout:     ptr(cfg.Server.ReadTimeout),
			WriteTimeout:    ptr(cfg.Server.WriteTimeout),
			IdleTimeout:     ptr(cfg.Server.IdleTimeout),
			ShutdownTimeout: ptr(cfg.Server.ShutdownTimeout),
			MaxHeaderBytes:  ptr(cfg.Server.MaxHeaderBytes),
		},
		Sessions: &fileSessionsConfig{
			IdleTimeout:   ptr(cfg.Sessions.IdleTimeout),
			SweepInterval: ptr(cfg.Sessions.SweepInterval),
		},
		Definitions: &fileDefinitionsConfig{
			Backend:      ptr(cfg.Definitions.Backend),
			Dir:          ptr(cfg.Definitions.Dir),
			SettingsFile: ptr(cfg.Definitions.SettingsFile),
			SQLitePath:   ptr(cfg.Definitions.SQLitePath),
		},
		Uploads: &fileUploadsConfig{
			Dir:      ptr(cfg.Uploads.Dir),
			MaxBytes: ptr(cfg.Uploads.MaxBytes),
		},
		Frontend: &fileFrontendConfig{
			Dir: ptr(cfg.Frontend.Dir),
		},
		Proxy: &fileProxyConfig{
			Timeout:      ptr(cfg.Proxy.Timeout),
			HostRPS:      ptr(cfg.Proxy.HostRPS),
			HostBurst:    ptr(cfg.Proxy.HostBurst),
			AllowedHosts: cfg.Proxy.AllowedHosts,

			BreakerThreshold:    ptr(cfg.Proxy.BreakerThreshold),
			BreakerResetTimeout: ptr(cfg.Proxy.BreakerResetTimeout),
			Cache: &fileProxyCacheConfig{
				Backend:       ptr(cfg.Proxy.Cache.Backend),
				TTL:           ptr(cfg.Proxy.Cache.TTL),
				RedisAddr:     ptr(cfg.Proxy.Cache.RedisAddr),
				RedisPassword: ptr(cfg.Proxy.Cache.RedisPassword),
				RedisDB:       ptr(cfg.Proxy.Cache.RedisDB),
			},
		},
		Metrics: &fileMetricsConfig{
			Enabled:    ptr(cfg.Metrics.Enabled),
			ListenAddr: ptr(cfg.Metrics.ListenAddr),
		},
		Telemetry: &fileTelemetryConfig{
			Enabled:      ptr(cfg.Telemetry.Enabled),
			Exporter:     ptr(cfg.Telemetry.Exporter),
			Endpoint:     ptr(cfg.Telemetry.Endpoint),
			SamplingRate: ptr(cfg.Telemetry.SamplingRate),
		},
	}
}

// RedactSecrets masks credentials in a rendered config.
func RedactSecrets(fc *FileConfig) {
	if fc == nil || fc.Proxy == nil || fc.Proxy.Cache == nil {
		return
	}
	if p := fc.Proxy.Cache.RedisPassword; p != nil && *p != "" {
		fc.Proxy.Cache.RedisPassword = ptr(redacted)
	}
}
