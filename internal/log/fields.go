// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldVideoID   = "video_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Media fields
	FieldContentType = "content_type"
	FieldRange       = "range"
	FieldSize        = "size"
	FieldDuration    = "duration_ms"

	// Path / URL fields
	FieldPath      = "path"
	FieldThumbnail = "thumbnail"
)
