// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty path skips the file.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt64(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load resolves the configuration: defaults, then the strict YAML file, then
// environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version
	cfg.API.BasePath = NormalizeBasePath(cfg.API.BasePath)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with strict parsing. Unknown
// fields and trailing documents are errors.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src []string) {
	if src != nil {
		*dst = src
	}
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) {
	set(&cfg.LogLevel, f.LogLevel)
	set(&cfg.LogService, f.LogService)

	if a := f.API; a != nil {
		set(&cfg.API.ListenAddr, a.ListenAddr)
		set(&cfg.API.BasePath, a.BasePath)
		setList(&cfg.API.AllowedOrigins, a.AllowedOrigins)
		if rl := a.RateLimit; rl != nil {
			set(&cfg.API.RateLimit.Enabled, rl.Enabled)
			set(&cfg.API.RateLimit.RequestsPerMinute, rl.RequestsPerMinute)
			setList(&cfg.API.RateLimit.Whitelist, rl.Whitelist)
		}
	}
	if s := f.Server; s != nil {
		set(&cfg.Server.ReadTimeout, s.ReadTimeout)
		set(&cfg.Server.WriteTimeout, s.WriteTimeout)
		set(&cfg.Server.IdleTimeout, s.IdleTimeout)
		set(&cfg.Server.ShutdownTimeout, s.ShutdownTimeout)
		set(&cfg.Server.MaxHeaderBytes, s.MaxHeaderBytes)
	}
	if s := f.Sessions; s != nil {
		set(&cfg.Sessions.IdleTimeout, s.IdleTimeout)
		set(&cfg.Sessions.SweepInterval, s.SweepInterval)
	}
	if d := f.Definitions; d != nil {
		set(&cfg.Definitions.Backend, d.Backend)
		set(&cfg.Definitions.Dir, d.Dir)
		set(&cfg.Definitions.SettingsFile, d.SettingsFile)
		set(&cfg.Definitions.SQLitePath, d.SQLitePath)
	}
	if u := f.Uploads; u != nil {
		set(&cfg.Uploads.Dir, u.Dir)
		set(&cfg.Uploads.MaxBytes, u.MaxBytes)
	}
	if fe := f.Frontend; fe != nil {
		set(&cfg.Frontend.Dir, fe.Dir)
	}
	if p := f.Proxy; p != nil {
		set(&cfg.Proxy.Timeout, p.Timeout)
		set(&cfg.Proxy.HostRPS, p.HostRPS)
		set(&cfg.Proxy.HostBurst, p.HostBurst)
		setList(&cfg.Proxy.AllowedHosts, p.AllowedHosts)
		set(&cfg.Proxy.BreakerThreshold, p.BreakerThreshold)
		set(&cfg.Proxy.BreakerResetTimeout, p.BreakerResetTimeout)
		if c := p.Cache; c != nil {
			set(&cfg.Proxy.Cache.Backend, c.Backend)
			set(&cfg.Proxy.Cache.TTL, c.TTL)
			set(&cfg.Proxy.Cache.RedisAddr, c.RedisAddr)
			set(&cfg.Proxy.Cache.RedisPassword, c.RedisPassword)
			set(&cfg.Proxy.Cache.RedisDB, c.RedisDB)
		}
	}
	if m := f.Metrics; m != nil {
		set(&cfg.Metrics.Enabled, m.Enabled)
		set(&cfg.Metrics.ListenAddr, m.ListenAddr)
	}
	if t := f.Telemetry; t != nil {
		set(&cfg.Telemetry.Enabled, t.Enabled)
		set(&cfg.Telemetry.Exporter, t.Exporter)
		set(&cfg.Telemetry.Endpoint, t.Endpoint)
		set(&cfg.Telemetry.SamplingRate, t.SamplingRate)
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("LOG_SERVICE", cfg.LogService)

	cfg.API.ListenAddr = l.envString("SCENECUE_LISTEN", cfg.API.ListenAddr)
	cfg.API.BasePath = l.envString("SCENECUE_API_BASE_PATH", cfg.API.BasePath)
	cfg.API.AllowedOrigins = l.envList("SCENECUE_ALLOWED_ORIGINS", cfg.API.AllowedOrigins)
	cfg.API.RateLimit.Enabled = l.envBool("SCENECUE_RATELIMIT_ENABLED", cfg.API.RateLimit.Enabled)
	cfg.API.RateLimit.RequestsPerMinute = l.envInt("SCENECUE_RATELIMIT_RPM", cfg.API.RateLimit.RequestsPerMinute)
	cfg.API.RateLimit.Whitelist = l.envList("SCENECUE_RATELIMIT_WHITELIST", cfg.API.RateLimit.Whitelist)

	cfg.Server.ReadTimeout = l.envDuration("SCENECUE_SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration("SCENECUE_SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration("SCENECUE_SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration("SCENECUE_SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxHeaderBytes = l.envInt("SCENECUE_SERVER_MAX_HEADER_BYTES", cfg.Server.MaxHeaderBytes)

	cfg.Sessions.IdleTimeout = l.envDuration("SCENECUE_SESSION_IDLE_TIMEOUT", cfg.Sessions.IdleTimeout)
	cfg.Sessions.SweepInterval = l.envDuration("SCENECUE_SESSION_SWEEP_INTERVAL", cfg.Sessions.SweepInterval)

	cfg.Definitions.Backend = l.envString("SCENECUE_DEFINITIONS_BACKEND", cfg.Definitions.Backend)
	cfg.Definitions.Dir = l.envString("SCENECUE_DEFINITIONS_DIR", cfg.Definitions.Dir)
	cfg.Definitions.SettingsFile = l.envString("SCENECUE_DEFINITIONS_SETTINGS_FILE", cfg.Definitions.SettingsFile)
	cfg.Definitions.SQLitePath = l.envString("SCENECUE_DEFINITIONS_SQLITE_PATH", cfg.Definitions.SQLitePath)

	cfg.Uploads.Dir = l.envString("SCENECUE_UPLOAD_DIR", cfg.Uploads.Dir)
	cfg.Uploads.MaxBytes = l.envInt64("SCENECUE_UPLOAD_MAX_BYTES", cfg.Uploads.MaxBytes)
	cfg.Frontend.Dir = l.envString("SCENECUE_FRONTEND_DIR", cfg.Frontend.Dir)

	cfg.Proxy.Timeout = l.envDuration("SCENECUE_PROXY_TIMEOUT", cfg.Proxy.Timeout)
	cfg.Proxy.HostRPS = l.envFloat("SCENECUE_PROXY_HOST_RPS", cfg.Proxy.HostRPS)
	cfg.Proxy.HostBurst = l.envInt("SCENECUE_PROXY_HOST_BURST", cfg.Proxy.HostBurst)
	cfg.Proxy.AllowedHosts = l.envList("SCENECUE_PROXY_ALLOWED_HOSTS", cfg.Proxy.AllowedHosts)
	cfg.Proxy.BreakerThreshold = l.envInt("SCENECUE_PROXY_BREAKER_THRESHOLD", cfg.Proxy.BreakerThreshold)
	cfg.Proxy.BreakerResetTimeout = l.envDuration("SCENECUE_PROXY_BREAKER_RESET", cfg.Proxy.BreakerResetTimeout)
	cfg.Proxy.Cache.Backend = l.envString("SCENECUE_PROXY_CACHE_BACKEND", cfg.Proxy.Cache.Backend)
	cfg.Proxy.Cache.TTL = l.envDuration("SCENECUE_PROXY_CACHE_TTL", cfg.Proxy.Cache.TTL)
	cfg.Proxy.Cache.RedisAddr = l.envString("SCENECUE_REDIS_ADDR", cfg.Proxy.Cache.RedisAddr)
	cfg.Proxy.Cache.RedisPassword = l.envString("SCENECUE_REDIS_PASSWORD", cfg.Proxy.Cache.RedisPassword)
	cfg.Proxy.Cache.RedisDB = l.envInt("SCENECUE_REDIS_DB", cfg.Proxy.Cache.RedisDB)

	cfg.Metrics.Enabled = l.envBool("SCENECUE_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString("SCENECUE_METRICS_LISTEN", cfg.Metrics.ListenAddr)

	cfg.Telemetry.Enabled = l.envBool("SCENECUE_TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("SCENECUE_TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("SCENECUE_TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("SCENECUE_TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}

// NormalizeBasePath returns the base path with one leading slash and no
// trailing slash. "/" and "" both mean the root.
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
