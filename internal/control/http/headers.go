// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package http

// Canonical header names.
const (
	// HeaderRequestID is the header for request correlation, set by the
	// request ID middleware and echoed on error envelopes.
	HeaderRequestID = "X-Request-ID"

	HeaderAcceptRanges  = "Accept-Ranges"
	HeaderContentRange  = "Content-Range"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderRange         = "Range"
)
