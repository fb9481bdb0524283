// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics declares the Prometheus collectors of the catalog, thumbnail
// and streaming paths.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogListTotal counts listing builds by result.
	CatalogListTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidserve_catalog_list_total",
		Help: "Total number of catalog listings by result",
	}, []string{"result"})

	// CatalogListDuration tracks how long a full listing takes, thumbnails included.
	CatalogListDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vidserve_catalog_list_duration_seconds",
		Help:    "Time to enumerate the video directory and assemble the listing",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// CatalogVideos reports the entry count of the most recent successful listing.
	CatalogVideos = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidserve_catalog_videos",
		Help: "Number of videos in the last successful listing",
	})

	// CatalogThumbnailMissing counts entries listed without a thumbnail.
	CatalogThumbnailMissing = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidserve_catalog_thumbnail_missing_total",
		Help: "Listing entries returned with a null thumbnail reference",
	})
)

// ObserveCatalogList records one listing outcome.
func ObserveCatalogList(success bool, d time.Duration, videos int) {
	result := "failure"
	if success {
		result = "success"
		CatalogVideos.Set(float64(videos))
	}
	CatalogListTotal.WithLabelValues(result).Inc()
	CatalogListDuration.Observe(d.Seconds())
}

// IncCatalogThumbnailMissing records an entry whose thumbnail could not be produced.
func IncCatalogThumbnailMissing() {
	CatalogThumbnailMissing.Inc()
}
