// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vidserve/internal/fsutil"
	"github.com/ManuGH/vidserve/internal/log"
)

// MsgThumbnailNotFound is the plain-text body for missing thumbnails.
const MsgThumbnailNotFound = "Thumbnail not found"

var errNotRegular = errors.New("not a regular file")

// ThumbnailServer serves artifacts by exact file name from a flat directory.
// Names that could address anything outside the directory are answered as
// missing.
type ThumbnailServer struct {
	dir     string
	metrics FileMetrics
}

// NewThumbnailServer returns a server for dir. A nil metrics uses the noop
// implementation.
func NewThumbnailServer(dir string, metrics FileMetrics) *ThumbnailServer {
	if metrics == nil {
		metrics = NewNoopFileMetrics()
	}
	return &ThumbnailServer{dir: dir, metrics: metrics}
}

// Serve writes the artifact named filename.
func (s *ThumbnailServer) Serve(w http.ResponseWriter, r *http.Request, filename string) {
	logger := log.WithComponentFromContext(r.Context(), "thumbnails")

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.metrics.Denied("method_not_allowed")
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := fsutil.ValidateFileName(filename); err != nil {
		logger.Warn().Err(err).
			Str(log.FieldEvent, "file_req.denied").
			Str(log.FieldPath, filename).
			Str("reason", "path_escape").
			Msg("rejected thumbnail name")
		s.metrics.Denied("path_escape")
		s.notFound(w)
		return
	}

	realPath, err := fsutil.ConfineRelPath(s.dir, filename)
	if err != nil {
		if errors.Is(err, fsutil.ErrEscapesRoot) {
			logger.Warn().Err(err).
				Str(log.FieldEvent, "file_req.denied").
				Str(log.FieldPath, filename).
				Str("reason", "path_escape").
				Msg("thumbnail resolves outside store")
			s.metrics.Denied("path_escape")
			s.notFound(w)
			return
		}
		if errors.Is(err, os.ErrNotExist) {
			s.metrics.Denied("not_found")
			s.notFound(w)
			return
		}
		s.internal(w, logger, filename, err)
		return
	}

	if err := s.serveContent(w, r, realPath, logger); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errNotRegular) {
			s.metrics.Denied("not_found")
			s.notFound(w)
			return
		}
		s.internal(w, logger, realPath, err)
	}
}

func (s *ThumbnailServer) serveContent(w http.ResponseWriter, r *http.Request, realPath string, logger zerolog.Logger) error {
	f, err := os.Open(realPath) // #nosec G304 -- confined to s.dir
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Str(log.FieldPath, realPath).Msg("failed to close file")
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat opened file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errNotRegular
	}

	etag := fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		s.metrics.CacheHit()
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	if strings.HasSuffix(strings.ToLower(info.Name()), ".jpg") {
		w.Header().Set(HeaderContentType, "image/jpeg")
	}
	s.metrics.Allowed()
	s.metrics.CacheMiss()
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return nil
}

func (s *ThumbnailServer) notFound(w http.ResponseWriter) {
	http.Error(w, MsgThumbnailNotFound, http.StatusNotFound)
}

func (s *ThumbnailServer) internal(w http.ResponseWriter, logger zerolog.Logger, path string, err error) {
	logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Str(log.FieldPath, path).Msg("could not serve thumbnail")
	s.metrics.Denied("internal_error")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
