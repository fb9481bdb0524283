// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package problem writes the JSON error envelopes of the public API.
//
// Two shapes exist. The listing API reports {"status":"error","message":...};
// the streaming API reports {"success":false,"message":...}. Handlers pick the
// writer matching their route and never build error bodies themselves.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/vidserve/internal/log"
)

// HeaderRequestID mirrors the control/http header name without importing it.
const HeaderRequestID = "X-Request-ID"

// StatusEnvelope is the listing API success shape. Data is always present,
// so an empty catalog encodes as "data":[].
type StatusEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// StatusErrorEnvelope is the listing API error shape.
type StatusErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SuccessEnvelope is the streaming API error shape.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteStatusError writes {"status":"error","message":message}.
func WriteStatusError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, StatusErrorEnvelope{Status: "error", Message: message})
}

// WriteStatusSuccess writes {"status":"success","data":data} with 200.
func WriteStatusSuccess(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusOK, StatusEnvelope{Status: "success", Data: data})
}

// WriteFailure writes {"success":false,"message":message}.
func WriteFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, SuccessEnvelope{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	if r != nil {
		if reqID := log.RequestIDFromContext(r.Context()); reqID != "" && w.Header().Get(HeaderRequestID) == "" {
			w.Header().Set(HeaderRequestID, reqID)
		}
	}
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.L()
		if r != nil {
			logger = log.FromContext(r.Context())
		}
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response envelope")
	}
}
