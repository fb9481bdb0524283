// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vidserve/internal/control/middleware"
	"github.com/ManuGH/vidserve/internal/log"
)

// Route patterns.
const (
	RouteVideos    = "/api/videos"
	RouteVideo     = "/api/videos/{videoId}"
	RouteThumbnail = "/api/thumbnails/{filename}"
	RouteHealthz   = "/healthz"
	RouteReadyz    = "/readyz"

	tracingService = "vidserve"
	paramVideoID   = "videoId"
	paramThumbnail = "filename"
)

func (s *Server) routes() http.Handler {
	r := s.newRouter()

	r.Get(RouteHealthz, s.deps.Health.ServeHealth)
	r.Get(RouteReadyz, s.deps.Health.ServeReady)

	r.Get(RouteVideos, s.handleListVideos)
	r.Get(RouteVideo, s.handleStreamVideo)
	r.Head(RouteVideo, s.handleStreamVideo)
	r.Get(RouteThumbnail, s.handleThumbnail)
	r.Head(RouteThumbnail, s.handleThumbnail)

	return r
}

func (s *Server) newRouter() chi.Router {
	tracing := ""
	if s.cfg.Tracing.Enabled {
		tracing = tracingService
	}
	return middleware.NewRouter(middleware.StackConfig{
		EnableCORS:           true,
		AllowedOrigins:       s.cfg.CORSOrigins,
		CORSAllowCredentials: false,

		EnableMetrics:  s.cfg.MetricsEnabled,
		TracingService: tracing,
		EnableLogging:  true,

		RateLimit: middleware.RateLimitConfig{
			Enabled:   s.cfg.RateLimit.Enabled,
			RPS:       s.cfg.RateLimit.RPS,
			Burst:     s.cfg.RateLimit.Burst,
			Whitelist: s.cfg.RateLimit.Whitelist,
		},
	})
}

// pathParam returns the decoded value of a route parameter. chi matches on
// RawPath when the request carries one, leaving parameters escaped.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		log.FromContext(r.Context()).Debug().Err(err).Str("param", name).Msg("undecodable path parameter")
		return v
	}
	return decoded
}
