// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Thumbnail outcomes.
const (
	ThumbnailHit       = "hit"
	ThumbnailGenerated = "generated"
	ThumbnailFailed    = "failed"
)

var (
	// ThumbnailTotal counts thumbnail requests by outcome.
	ThumbnailTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidserve_thumbnail_requests_total",
		Help: "Thumbnail requests by outcome (hit, generated, failed)",
	}, []string{"outcome"})

	// ThumbnailExtractDuration tracks frame extraction latency, slot wait included.
	ThumbnailExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidserve_thumbnail_extract_duration_seconds",
		Help:    "Time spent producing a thumbnail artifact",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 20, 30},
	}, []string{"outcome"})

	// WarmerEventsTotal counts filesystem events handled by the thumbnail warmer.
	WarmerEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidserve_thumbnail_warmer_events_total",
		Help: "Filesystem events seen by the thumbnail warmer by action",
	}, []string{"action"})
)

// ObserveThumbnail records a thumbnail outcome. Hits carry no latency.
func ObserveThumbnail(outcome string, d time.Duration) {
	ThumbnailTotal.WithLabelValues(outcome).Inc()
	if outcome != ThumbnailHit {
		ThumbnailExtractDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// IncWarmerEvent records a warmer action (queued, skipped, warmed, failed).
func IncWarmerEvent(action string) {
	WarmerEventsTotal.WithLabelValues(action).Inc()
}
