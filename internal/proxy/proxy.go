// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package proxy relays remote media and metadata for browser clients that
// cannot fetch cross-origin themselves.
package proxy

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ManuGH/scenecue/internal/cache"
	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/metrics"
	platformnet "github.com/ManuGH/scenecue/internal/platform/net"
	"github.com/ManuGH/scenecue/internal/ratelimit"
	"github.com/ManuGH/scenecue/internal/resilience"
	"github.com/ManuGH/scenecue/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// maxExtrasBody caps how much of an extras response is buffered.
const maxExtrasBody = 10 << 20

// Options wires the proxy's collaborators. Nil fields get defaults.
type Options struct {
	Client       *http.Client // bounded client for extras fetches
	StreamClient *http.Client // header-bounded client for audio streams
	Limiter      *ratelimit.Limiter
	Policy       *platformnet.HostPolicy
	Cache        cache.Cache
	CacheTTL     time.Duration
	Breakers     *resilience.Registry // per-host; nil disables
}

// Service performs the outbound fetches.
type Service struct {
	client   *http.Client
	stream   *http.Client
	limiter  *ratelimit.Limiter
	policy   *platformnet.HostPolicy
	cache    cache.Cache
	cacheTTL time.Duration
	breakers *resilience.Registry
}

// New returns a proxy service.
func New(opts Options) *Service {
	s := &Service{
		client:   opts.Client,
		stream:   opts.StreamClient,
		limiter:  opts.Limiter,
		policy:   opts.Policy,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		breakers: opts.Breakers,
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	if s.stream == nil {
		s.stream = s.client
	}
	if s.cache == nil {
		s.cache = cache.NewNoopCache()
	}
	return s
}

// Audio is an open upstream audio response. The caller must close Body.
type Audio struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// AudioContentType picks the media type from the URL path extension.
func AudioContentType(u *url.URL) string {
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

// OpenAudio starts streaming a remote audio file. Any upstream status other
// than 200 is returned as a *StatusError.
func (s *Service) OpenAudio(ctx context.Context, raw string) (*Audio, error) {
	u, host, err := s.admit(ctx, metrics.ProxyAudio, raw)
	if err != nil {
		return nil, err
	}

	if err := s.guard(ctx, metrics.ProxyAudio, host); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := s.do(ctx, s.stream, u)
	if err != nil {
		s.breakers.Report(host, false)
		metrics.RecordProxyFetch(metrics.ProxyAudio, "transport_error", time.Since(start))
		return nil, err
	}
	s.breakers.Report(host, resp.StatusCode < http.StatusInternalServerError)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(telemetry.ProxyAttributes(metrics.ProxyAudio, host, resp.StatusCode, false)...)

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		metrics.RecordProxyFetch(metrics.ProxyAudio, "upstream_status", time.Since(start))
		return nil, &StatusError{Status: resp.StatusCode}
	}
	metrics.RecordProxyFetch(metrics.ProxyAudio, "ok", time.Since(start))

	return &Audio{
		Body:          &countingBody{ReadCloser: resp.Body},
		ContentType:   AudioContentType(u),
		ContentLength: resp.ContentLength,
	}, nil
}

// FetchExtras fetches raw and returns a JSON document for the client: the
// upstream body itself when it is JSON, otherwise an object holding the text
// and status. The upstream status does not change the outcome.
func (s *Service) FetchExtras(ctx context.Context, raw string) ([]byte, error) {
	u, host, err := s.admit(ctx, metrics.ProxyExtras, raw)
	if err != nil {
		return nil, err
	}

	key := extrasKey(u)
	if body, ok := s.cache.Get(ctx, key); ok {
		metrics.RecordProxyCache(true)
		trace.SpanFromContext(ctx).SetAttributes(telemetry.ProxyAttributes(metrics.ProxyExtras, host, 0, true)...)
		return body, nil
	}
	metrics.RecordProxyCache(false)

	if err := s.guard(ctx, metrics.ProxyExtras, host); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := s.do(ctx, s.client, u)
	if err != nil {
		s.breakers.Report(host, false)
		metrics.RecordProxyFetch(metrics.ProxyExtras, "transport_error", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExtrasBody))
	if err != nil {
		s.breakers.Report(host, false)
		metrics.RecordProxyFetch(metrics.ProxyExtras, "transport_error", time.Since(start))
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	s.breakers.Report(host, resp.StatusCode < http.StatusInternalServerError)
	metrics.RecordProxyFetch(metrics.ProxyExtras, "ok", time.Since(start))
	trace.SpanFromContext(ctx).SetAttributes(telemetry.ProxyAttributes(metrics.ProxyExtras, host, resp.StatusCode, false)...)

	out, err := extrasDocument(data, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, out, s.cacheTTL)
	return out, nil
}

// admit validates the URL, applies the host policy and the per-host budget.
func (s *Service) admit(ctx context.Context, endpoint, raw string) (*url.URL, string, error) {
	u, err := platformnet.ParseHTTPURL(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrBadURL, err)
	}
	host, err := s.policy.Check(u)
	if err != nil {
		if errors.Is(err, platformnet.ErrOutboundNotAllowed) {
			return nil, "", fmt.Errorf("%w: %w", ErrHostNotAllowed, err)
		}
		return nil, "", fmt.Errorf("%w: %w", ErrBadURL, err)
	}
	if !s.limiter.Allow(host) {
		metrics.RecordProxyFetch(endpoint, "rate_limited", 0)
		logger := log.WithComponentFromContext(ctx, "proxy")
		logger.Warn().
			Str(log.FieldEvent, "proxy.rate_limited").
			Str("host", host).
			Msg("upstream host budget exhausted")
		return nil, "", fmt.Errorf("%w: %s", ErrRateLimited, host)
	}
	return u, host, nil
}

// guard consults the host's circuit breaker. A nil return obliges the caller
// to report the fetch outcome.
func (s *Service) guard(ctx context.Context, endpoint, host string) error {
	if s.breakers.Allow(host) {
		return nil
	}
	metrics.RecordProxyFetch(endpoint, "circuit_open", 0)
	logger := log.WithComponentFromContext(ctx, "proxy")
	logger.Debug().
		Str(log.FieldEvent, "proxy.circuit_open").
		Str("host", host).
		Msg("upstream host circuit open")
	return fmt.Errorf("%w: %s", ErrUnavailable, host)
}

func (s *Service) do(ctx context.Context, client *http.Client, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "proxy")
		logger.Warn().
			Err(err).
			Str(log.FieldURL, platformnet.SanitizeURL(u.String())).
			Msg("upstream fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return resp, nil
}

type extrasText struct {
	Text   string `json:"_text"`
	Status int    `json:"_status"`
}

func extrasDocument(body []byte, status int) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return trimmed, nil
	}
	out, err := json.Marshal(extrasText{Text: string(body), Status: status})
	if err != nil {
		return nil, fmt.Errorf("encode extras text: %w", err)
	}
	return out, nil
}

func extrasKey(u *url.URL) string {
	sum := sha256.Sum256([]byte(u.String()))
	return "extras:" + hex.EncodeToString(sum[:])
}

// countingBody feeds the streamed byte counter.
type countingBody struct {
	io.ReadCloser
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	metrics.AddProxyAudioBytes(int64(n))
	return n, err
}
