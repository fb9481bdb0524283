// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package http

// FileMetrics records thumbnail file serving outcomes.
type FileMetrics interface {
	// Denied records a refused request. Reasons: "method_not_allowed",
	// "path_escape", "not_found", "internal_error".
	Denied(reason string)

	// Allowed records a served file.
	Allowed()

	// CacheHit records a 304 Not Modified response (ETag match).
	CacheHit()

	// CacheMiss records a 200 OK response (content served).
	CacheMiss()
}

type noopFileMetrics struct{}

func (noopFileMetrics) Denied(string) {}
func (noopFileMetrics) Allowed()      {}
func (noopFileMetrics) CacheHit()     {}
func (noopFileMetrics) CacheMiss()    {}

// NewNoopFileMetrics returns a FileMetrics that records nothing.
func NewNoopFileMetrics() FileMetrics {
	return noopFileMetrics{}
}
