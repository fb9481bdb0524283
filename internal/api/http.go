// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api wires the public HTTP surface of vidserve: catalog listing,
// range streaming, thumbnail delivery and the health probes.
package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/ManuGH/vidserve/internal/config"
	"github.com/ManuGH/vidserve/internal/health"
	"github.com/ManuGH/vidserve/internal/library"
)

// Catalog produces the video listing.
type Catalog interface {
	ListVideos(ctx context.Context) ([]library.VideoFile, error)
}

// VideoStreamer writes the bytes of the video named id.
type VideoStreamer interface {
	Stream(w http.ResponseWriter, r *http.Request, id string)
}

// ThumbnailServer writes a stored thumbnail artifact.
type ThumbnailServer interface {
	Serve(w http.ResponseWriter, r *http.Request, filename string)
}

// Deps carries the collaborators of the Server.
type Deps struct {
	Catalog    Catalog
	Streamer   VideoStreamer
	Thumbnails ThumbnailServer
	Health     *health.Manager
}

// Server represents the HTTP API server for vidserve.
type Server struct {
	cfg     config.AppConfig
	deps    Deps
	handler atomic.Pointer[http.Handler]
}

// New creates a Server. A nil Health manager is replaced by one without checks.
func New(cfg config.AppConfig, deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager(cfg.Version)
	}
	return &Server{cfg: cfg, deps: deps}
}

// Handler returns the configured HTTP handler with all routes and middleware
// applied. It is built once and reused.
func (s *Server) Handler() http.Handler {
	if h := s.handler.Load(); h != nil {
		return *h
	}
	h := s.routes()
	if s.handler.CompareAndSwap(nil, &h) {
		return h
	}
	return *s.handler.Load()
}
