// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stream outcomes.
const (
	StreamFull          = "full"
	StreamPartial       = "partial"
	StreamUnsatisfiable = "unsatisfiable"
	StreamNotFound      = "not_found"
	StreamError         = "error"
	StreamAborted       = "aborted"
)

var (
	// StreamRequestsTotal counts video stream requests by outcome.
	StreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidserve_stream_requests_total",
		Help: "Video stream requests by outcome",
	}, []string{"outcome"})

	// StreamBytesTotal counts body bytes written to clients.
	StreamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidserve_stream_bytes_total",
		Help: "Video body bytes written to clients",
	})

	// StreamsActive tracks in-flight body copies.
	StreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidserve_streams_active",
		Help: "Number of video bodies currently being streamed",
	})

	// ProbeCacheTotal counts duration probe cache lookups.
	ProbeCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidserve_probe_cache_total",
		Help: "Duration probe cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)

// IncStream records the outcome of one stream request.
func IncStream(outcome string) {
	StreamRequestsTotal.WithLabelValues(outcome).Inc()
}

// AddStreamBytes records body bytes written.
func AddStreamBytes(n int64) {
	if n > 0 {
		StreamBytesTotal.Add(float64(n))
	}
}

// IncProbeCache records a probe cache lookup result.
func IncProbeCache(result string) {
	ProbeCacheTotal.WithLabelValues(result).Inc()
}
