// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version    string
	LogLevel   string
	LogService string

	API         APIConfig
	Server      ServerRuntimeConfig
	Sessions    SessionsConfig
	Definitions DefinitionsConfig
	Uploads     UploadsConfig
	Frontend    FrontendConfig
	Proxy       ProxyConfig
	Metrics     MetricsConfig
	Telemetry   TelemetryConfig
}

type APIConfig struct {
	ListenAddr     string
	BasePath       string
	AllowedOrigins []string
	RateLimit      RateLimitConfig
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Whitelist         []string
}

// ServerRuntimeConfig holds the http.Server timeouts.
type ServerRuntimeConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
}

type SessionsConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type DefinitionsConfig struct {
	Backend      string
	Dir          string
	SettingsFile string
	SQLitePath   string
}

type UploadsConfig struct {
	Dir      string
	MaxBytes int64
}

type FrontendConfig struct {
	Dir string
}

type ProxyConfig struct {
	Timeout      time.Duration
	HostRPS      float64
	HostBurst    int
	AllowedHosts []string
	Cache        ProxyCacheConfig

	// BreakerThreshold consecutive upstream failures open a host's breaker
	// for BreakerResetTimeout. Zero disables the breaker.
	BreakerThreshold    int
	BreakerResetTimeout time.Duration
}

type ProxyCacheConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type MetricsConfig struct {
	Enabled    bool
	ListenAddr string
}

type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML file. Pointers distinguish unset keys from
// zero values.
type FileConfig struct {
	LogLevel    *string                `yaml:"logLevel"`
	LogService  *string                `yaml:"logService"`
	API         *fileAPIConfig         `yaml:"api"`
	Server      *fileServerConfig      `yaml:"server"`
	Sessions    *fileSessionsConfig    `yaml:"sessions"`
	Definitions *fileDefinitionsConfig `yaml:"definitions"`
	Uploads     *fileUploadsConfig     `yaml:"uploads"`
	Frontend    *fileFrontendConfig    `yaml:"frontend"`
	Proxy       *fileProxyConfig       `yaml:"proxy"`
	Metrics     *fileMetricsConfig     `yaml:"metrics"`
	Telemetry   *fileTelemetryConfig   `yaml:"telemetry"`
}

type fileAPIConfig struct {
	ListenAddr     *string              `yaml:"listenAddr"`
	BasePath       *string              `yaml:"basePath"`
	AllowedOrigins []string             `yaml:"allowedOrigins"`
	RateLimit      *fileRateLimitConfig `yaml:"rateLimit"`
}

type fileRateLimitConfig struct {
	Enabled           *bool    `yaml:"enabled"`
	RequestsPerMinute *int     `yaml:"requestsPerMinute"`
	Whitelist         []string `yaml:"whitelist"`
}

type fileServerConfig struct {
	ReadTimeout     *time.Duration `yaml:"readTimeout"`
	WriteTimeout    *time.Duration `yaml:"writeTimeout"`
	IdleTimeout     *time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout *time.Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  *int           `yaml:"maxHeaderBytes"`
}

type fileSessionsConfig struct {
	IdleTimeout   *time.Duration `yaml:"idleTimeout"`
	SweepInterval *time.Duration `yaml:"sweepInterval"`
}

type fileDefinitionsConfig struct {
	Backend      *string `yaml:"backend"`
	Dir          *string `yaml:"dir"`
	SettingsFile *string `yaml:"settingsFile"`
	SQLitePath   *string `yaml:"sqlitePath"`
}

type fileUploadsConfig struct {
	Dir      *string `yaml:"dir"`
	MaxBytes *int64  `yaml:"maxBytes"`
}

type fileFrontendConfig struct {
	Dir *string `yaml:"dir"`
}

type fileProxyConfig struct {
	Timeout      *time.Duration        `yaml:"timeout"`
	HostRPS      *float64              `yaml:"hostRPS"`
	HostBurst    *int                  `yaml:"hostBurst"`
	AllowedHosts []string              `yaml:"allowedHosts"`
	Cache        *fileProxyCacheConfig `yaml:"cache"`

	BreakerThreshold    *int           `yaml:"breakerThreshold"`
	BreakerResetTimeout *time.Duration `yaml:"breakerResetTimeout"`
}

type fileProxyCacheConfig struct {
	Backend       *string        `yaml:"backend"`
	TTL           *time.Duration `yaml:"ttl"`
	RedisAddr     *string        `yaml:"redisAddr"`
	RedisPassword *string        `yaml:"redisPassword"`
	RedisDB       *int           `yaml:"redisDB"`
}

type fileMetricsConfig struct {
	Enabled    *bool   `yaml:"enabled"`
	ListenAddr *string `yaml:"listenAddr"`
}

type fileTelemetryConfig struct {
	Enabled      *bool    `yaml:"enabled"`
	Exporter     *string  `yaml:"exporter"`
	Endpoint     *string  `yaml:"endpoint"`
	SamplingRate *float64 `yaml:"samplingRate"`
}
