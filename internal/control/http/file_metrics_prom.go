// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package http

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type promFileMetrics struct {
	deniedTotal  *prometheus.CounterVec
	allowedTotal prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

var (
	promFileMetricsOnce sync.Once
	promFileMetricsInst *promFileMetrics
)

// NewPromFileMetrics returns the process-wide Prometheus FileMetrics. The
// collectors are registered with the default registry on first use.
func NewPromFileMetrics() FileMetrics {
	promFileMetricsOnce.Do(func() {
		promFileMetricsInst = &promFileMetrics{
			deniedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "vidserve_thumbnail_requests_denied_total",
				Help: "Thumbnail file requests refused by reason",
			}, []string{"reason"}),
			allowedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vidserve_thumbnail_requests_allowed_total",
				Help: "Thumbnail file requests served",
			}),
			cacheHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vidserve_thumbnail_http_cache_hits_total",
				Help: "Thumbnail requests answered with 304 Not Modified",
			}),
			cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "vidserve_thumbnail_http_cache_misses_total",
				Help: "Thumbnail requests answered with content",
			}),
		}
	})
	return promFileMetricsInst
}

func (m *promFileMetrics) Denied(reason string) {
	m.deniedTotal.WithLabelValues(reason).Inc()
}

func (m *promFileMetrics) Allowed() {
	m.allowedTotal.Inc()
}

func (m *promFileMetrics) CacheHit() {
	m.cacheHits.Inc()
}

func (m *promFileMetrics) CacheMiss() {
	m.cacheMisses.Inc()
}
