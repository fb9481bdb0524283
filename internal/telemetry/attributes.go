// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on catalog and streaming spans.
const (
	VideoIDKey      = "video.id"
	VideoSizeKey    = "video.size"
	RangeStartKey   = "http.range.start"
	RangeEndKey     = "http.range.end"
	CatalogCountKey = "catalog.videos"
	ThumbnailHitKey = "thumbnail.cached"
	ThumbnailIDKey  = "thumbnail.id"
)

// StreamAttributes describes a served byte range. start and end are
// inclusive; pass -1 for both when the full file is served.
func StreamAttributes(videoID string, size, start, end int64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(VideoIDKey, videoID),
		attribute.Int64(VideoSizeKey, size),
	}
	if start >= 0 && end >= start {
		attrs = append(attrs,
			attribute.Int64(RangeStartKey, start),
			attribute.Int64(RangeEndKey, end),
		)
	}
	return attrs
}

// CatalogAttributes describes a catalog listing.
func CatalogAttributes(count int) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Int(CatalogCountKey, count)}
}

// ThumbnailAttributes describes a thumbnail lookup.
func ThumbnailAttributes(id string, cached bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ThumbnailIDKey, id),
		attribute.Bool(ThumbnailHitKey, cached),
	}
}
