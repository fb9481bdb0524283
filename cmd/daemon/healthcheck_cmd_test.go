// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/readyz" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, runHealthcheck([]string{"-mode", "live", "-addr", srv.URL}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "successful (live)")

	assert.Equal(t, 1, runHealthcheck([]string{"-addr", srv.URL}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "503")
}

func TestHealthcheck_Unreachable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, runHealthcheck([]string{"-addr", "http://127.0.0.1:1", "-timeout", "500ms"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "network")
}
