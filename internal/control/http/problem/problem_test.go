// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package problem

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/vidserve/internal/log"
)

func TestWriteFailure(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/videos/x", nil)
	r = r.WithContext(log.ContextWithRequestID(r.Context(), "rid-9"))
	w := httptest.NewRecorder()
	w.Header().Set("Content-Length", "4096")

	WriteFailure(w, r, http.StatusNotFound, "Video not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Length"))
	assert.Equal(t, "rid-9", w.Header().Get(HeaderRequestID))
	assert.JSONEq(t, `{"success":false,"message":"Video not found"}`, w.Body.String())
}

func TestWriteStatusError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteStatusError(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil), http.StatusInternalServerError, "Failed to retrieve videos")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Failed to retrieve videos"}`, w.Body.String())
}

func TestWriteStatusSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteStatusSuccess(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil), []string{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":[]}`, w.Body.String())
}
