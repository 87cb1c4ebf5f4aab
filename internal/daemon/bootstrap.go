// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/ManuGH/scenecue/internal/api"
	"github.com/ManuGH/scenecue/internal/audit"
	"github.com/ManuGH/scenecue/internal/cache"
	"github.com/ManuGH/scenecue/internal/config"
	"github.com/ManuGH/scenecue/internal/control/middleware"
	"github.com/ManuGH/scenecue/internal/definitions"
	sessionmgr "github.com/ManuGH/scenecue/internal/domain/session/manager"
	"github.com/ManuGH/scenecue/internal/domain/session/store"
	"github.com/ManuGH/scenecue/internal/health"
	"github.com/ManuGH/scenecue/internal/log"
	platformnet "github.com/ManuGH/scenecue/internal/platform/net"
	"github.com/ManuGH/scenecue/internal/platform/httpx"
	"github.com/ManuGH/scenecue/internal/proxy"
	"github.com/ManuGH/scenecue/internal/ratelimit"
	"github.com/ManuGH/scenecue/internal/resilience"
	"github.com/ManuGH/scenecue/internal/telemetry"
	"github.com/ManuGH/scenecue/internal/uploads"
)

// hostLimiterIdleTTL drops per-host proxy budgets unused for this long.
const hostLimiterIdleTTL = 10 * time.Minute

// Runtime is the assembled service: the API handler, the background tasks
// and the resources released on shutdown.
type Runtime struct {
	Handler        http.Handler
	MetricsHandler http.Handler // nil when metrics are disabled
	Health         *health.Manager
	Tasks          []Task

	closers []namedHook
}

// RegisterShutdownHooks hands every opened resource to m. Hooks run LIFO, so
// resources close in reverse order of opening.
func (rt *Runtime) RegisterShutdownHooks(m Manager) {
	for _, c := range rt.closers {
		m.RegisterShutdownHook(c.name, c.hook)
	}
}

// Close releases every resource without a Manager, newest first.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].hook(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.closers[i].name, err))
		}
	}
	return errors.Join(errs...)
}

func (rt *Runtime) onClose(name string, hook ShutdownHook) {
	rt.closers = append(rt.closers, namedHook{name: name, hook: hook})
}

// Bootstrap builds the runtime from cfg. On failure everything opened so far
// is closed again.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (_ *Runtime, err error) {
	logger := log.WithComponent("bootstrap")
	rt := &Runtime{}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
		}
	}()

	dirs := []string{cfg.Uploads.Dir}
	switch cfg.Definitions.Backend {
	case definitions.BackendSQLite:
		dirs = append(dirs, filepath.Dir(cfg.Definitions.SQLitePath))
	default:
		dirs = append(dirs, cfg.Definitions.Dir)
	}
	if err := health.PrepareDirs(dirs...); err != nil {
		return nil, fmt.Errorf("startup check: %w", err)
	}

	tracingService := ""
	if cfg.Telemetry.Enabled {
		provider, err := telemetry.NewProvider(ctx, telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.LogService,
			ServiceVersion: cfg.Version,
			Environment:    "production",
			ExporterType:   cfg.Telemetry.Exporter,
			Endpoint:       cfg.Telemetry.Endpoint,
			SamplingRate:   cfg.Telemetry.SamplingRate,
		})
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		rt.onClose("telemetry", provider.Shutdown)
		tracingService = cfg.LogService
		logger.Info().
			Str("exporter", cfg.Telemetry.Exporter).
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("telemetry initialized")
	}

	defStore, err := definitions.Open(ctx, definitions.Config{
		Backend:      cfg.Definitions.Backend,
		Dir:          cfg.Definitions.Dir,
		SettingsFile: cfg.Definitions.SettingsFile,
		SQLitePath:   cfg.Definitions.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("definitions: %w", err)
	}
	rt.onClose("definitions", func(context.Context) error { return defStore.Close() })
	if fs, ok := defStore.(*definitions.FileStore); ok {
		rt.Tasks = append(rt.Tasks, Task{Name: "definitions-watch", Run: fs.Watch})
	}
	catalog := definitions.NewCatalog(defStore)

	up, err := uploads.New(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("uploads: %w", err)
	}

	extrasCache, err := cache.New(ctx, cache.Options{
		Backend: cfg.Proxy.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:     cfg.Proxy.Cache.RedisAddr,
			Password: cfg.Proxy.Cache.RedisPassword,
			DB:       cfg.Proxy.Cache.RedisDB,
		},
	}, log.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("proxy cache: %w", err)
	}
	rt.onClose("proxy-cache", func(context.Context) error { return extrasCache.Close() })

	policy, err := platformnet.NewHostPolicy(cfg.Proxy.AllowedHosts)
	if err != nil {
		return nil, fmt.Errorf("proxy allowed hosts: %w", err)
	}
	var breakers *resilience.Registry
	if cfg.Proxy.BreakerThreshold > 0 {
		breakers = resilience.NewRegistry(resilience.RegistryConfig{
			Component:    "proxy",
			Threshold:    cfg.Proxy.BreakerThreshold,
			ResetTimeout: cfg.Proxy.BreakerResetTimeout,
		}, clockwork.NewRealClock())
	}
	proxySvc := proxy.New(proxy.Options{
		Client:       httpx.NewClient(cfg.Proxy.Timeout),
		StreamClient: httpx.NewStreamingClient(cfg.Proxy.Timeout),
		Limiter: ratelimit.New(ratelimit.Config{
			PerHostRate:  rate.Limit(cfg.Proxy.HostRPS),
			PerHostBurst: cfg.Proxy.HostBurst,
			IdleTTL:      hostLimiterIdleTTL,
		}, clockwork.NewRealClock()),
		Policy:   policy,
		Cache:    extrasCache,
		CacheTTL: cfg.Proxy.Cache.TTL,
		Breakers: breakers,
	})

	sessions := store.New()
	sweeper := &sessionmgr.Sweeper{
		Store: sessions,
		Conf: sessionmgr.SweeperConfig{
			Interval:    cfg.Sessions.SweepInterval,
			IdleTimeout: cfg.Sessions.IdleTimeout,
		},
	}
	rt.Tasks = append(rt.Tasks, Task{Name: "session-sweeper", Run: func(ctx context.Context) error {
		sweeper.Run(ctx)
		return nil
	}})

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPingChecker("definitions", catalog.Ping))
	hm.RegisterChecker(health.NewPingChecker("uploads", up.Ping))
	if rc, ok := extrasCache.(*cache.RedisCache); ok {
		hm.RegisterChecker(health.NewOptionalPingChecker("proxy_cache", rc.HealthCheck))
	}
	rt.Health = hm

	stack := middleware.StackConfig{
		EnableMetrics:  cfg.Metrics.Enabled,
		TracingService: tracingService,
		EnableLogging:  true,
	}
	if len(cfg.API.AllowedOrigins) > 0 {
		stack.AllowedOrigins = cfg.API.AllowedOrigins
	}
	if cfg.API.RateLimit.Enabled {
		stack.RateLimitRequests = cfg.API.RateLimit.RequestsPerMinute
		stack.RateLimitWindow = time.Minute
		stack.RateLimitWhitelist = cfg.API.RateLimit.Whitelist
	}

	rt.Handler = api.New(api.Deps{
		BasePath:    cfg.API.BasePath,
		Dispatcher:  sessionmgr.NewDispatcher(sessions, catalog),
		Status:      sessionmgr.NewStatusChannel(sessions),
		Catalog:     catalog,
		Uploads:     up,
		Proxy:       proxySvc,
		Health:      hm,
		Audit:       audit.NewLogger(),
		FrontendDir: cfg.Frontend.Dir,
		Stack:       stack,
	})
	if cfg.Metrics.Enabled {
		rt.MetricsHandler = promhttp.Handler()
	}

	logger.Info().
		Str("event", "bootstrap.done").
		Str("definitions_backend", cfg.Definitions.Backend).
		Str("proxy_cache", cfg.Proxy.Cache.Backend).
		Str("base_path", cfg.API.BasePath).
		Strs("health_checks", hm.Names()).
		Msg("runtime assembled")
	return rt, nil
}
