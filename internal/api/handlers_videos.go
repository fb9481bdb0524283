// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/vidserve/internal/control/http/problem"
	"github.com/ManuGH/vidserve/internal/library"
	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/telemetry"
)

// MsgListFailed is the listing failure message.
const MsgListFailed = "Failed to retrieve videos"

// handleListVideos returns the catalog.
// Path: /api/videos
func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	videos, err := s.deps.Catalog.ListVideos(r.Context())
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "catalog.list_failed").Msg("failed to list videos")
		problem.WriteStatusError(w, r, http.StatusInternalServerError, MsgListFailed)
		return
	}
	if videos == nil {
		videos = []library.VideoFile{}
	}
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.CatalogAttributes(len(videos))...)

	problem.WriteStatusSuccess(w, r, videos)
}

// handleStreamVideo streams one video, honouring Range.
// Path: /api/videos/{videoId}
func (s *Server) handleStreamVideo(w http.ResponseWriter, r *http.Request) {
	s.deps.Streamer.Stream(w, r, pathParam(r, paramVideoID))
}

// handleThumbnail serves a stored thumbnail.
// Path: /api/thumbnails/{filename}
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	s.deps.Thumbnails.Serve(w, r, pathParam(r, paramThumbnail))
}
