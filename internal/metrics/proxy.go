// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Proxy endpoints.
const (
	ProxyAudio  = "audio"
	ProxyExtras = "extras"
)

var (
	proxyFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_proxy_fetch_total",
		Help: "Outbound proxy fetches by endpoint and outcome",
	}, []string{"endpoint", "outcome"}) // outcome=ok|upstream_status|transport_error|rate_limited|circuit_open

	proxyFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scenecue_proxy_fetch_duration_seconds",
		Help:    "Time until upstream response headers arrived",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	proxyCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_proxy_cache_total",
		Help: "Extras proxy cache lookups by result",
	}, []string{"result"}) // result=hit|miss

	proxyBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenecue_proxy_audio_bytes_total",
		Help: "Audio bytes streamed through the proxy",
	})

	definitionsWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_definitions_writes_total",
		Help: "Definition document writes by collection and outcome",
	}, []string{"collection", "outcome"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenecue_uploads_total",
		Help: "File uploads by outcome",
	}, []string{"outcome"}) // outcome=stored|rejected|too_large|error
)

func RecordProxyFetch(endpoint, outcome string, d time.Duration) {
	proxyFetchTotal.WithLabelValues(endpoint, outcome).Inc()
	if d > 0 {
		proxyFetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

func RecordProxyCache(hit bool) {
	if hit {
		proxyCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	proxyCacheTotal.WithLabelValues("miss").Inc()
}

func AddProxyAudioBytes(n int64) {
	if n > 0 {
		proxyBytesTotal.Add(float64(n))
	}
}

func RecordDefinitionsWrite(collection string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	definitionsWritesTotal.WithLabelValues(collection, outcome).Inc()
}

func RecordUpload(outcome string) { uploadsTotal.WithLabelValues(outcome).Inc() }
