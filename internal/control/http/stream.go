// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/vidserve/internal/control/http/problem"
	"github.com/ManuGH/vidserve/internal/library"
	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/metrics"
	"github.com/ManuGH/vidserve/internal/telemetry"
)

// Client-facing messages for the streaming envelope.
const (
	MsgVideoNotFound    = "Video not found"
	MsgRangeNotSatisfy  = "Requested range not satisfiable"
	MsgStreamServerFail = "Server error while streaming video"
)

// Streamer serves video bytes from a flat directory, honoring single byte ranges.
type Streamer struct {
	dir string
}

// NewStreamer returns a Streamer rooted at dir.
func NewStreamer(dir string) *Streamer {
	return &Streamer{dir: dir}
}

// Stream resolves id and writes the file, or the requested slice of it, to w.
// HEAD requests receive the same headers without a body.
func (s *Streamer) Stream(w http.ResponseWriter, r *http.Request, id string) {
	logger := log.WithComponentFromContext(r.Context(), "stream").With().Str(log.FieldVideoID, id).Logger()

	path, err := library.Locate(s.dir, id)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			metrics.IncStream(metrics.StreamNotFound)
			problem.WriteFailure(w, r, http.StatusNotFound, MsgVideoNotFound)
			return
		}
		s.fail(w, r, logger, err, "resolve video")
		return
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from a directory listing of s.dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Removed between listing and open.
			metrics.IncStream(metrics.StreamNotFound)
			problem.WriteFailure(w, r, http.StatusNotFound, MsgVideoNotFound)
			return
		}
		s.fail(w, r, logger, err, "open video")
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Debug().Err(cerr).Msg("close video file")
		}
	}()

	info, err := f.Stat()
	if err != nil {
		s.fail(w, r, logger, err, "stat video")
		return
	}
	if !info.Mode().IsRegular() {
		metrics.IncStream(metrics.StreamNotFound)
		problem.WriteFailure(w, r, http.StatusNotFound, MsgVideoNotFound)
		return
	}

	size := info.Size()
	contentType := library.ContentType(filepath.Ext(path))
	span := trace.SpanFromContext(r.Context())
	h := w.Header()
	h.Set(HeaderAcceptRanges, "bytes")

	rangeHeader := r.Header.Get(HeaderRange)
	if rangeHeader == "" {
		span.SetAttributes(telemetry.StreamAttributes(id, size, -1, -1)...)
		h.Set(HeaderContentType, contentType)
		h.Set(HeaderContentLength, strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		s.copy(r.Context(), w, logger, io.NewSectionReader(f, 0, size), size, metrics.StreamFull)
		return
	}

	rng, err := ParseRange(rangeHeader, size)
	if err != nil {
		logger.Debug().Err(err).
			Str(log.FieldRange, rangeHeader).
			Int64(log.FieldSize, size).
			Str(log.FieldEvent, "stream.range_rejected").
			Msg("range not satisfiable")
		metrics.IncStream(metrics.StreamUnsatisfiable)
		h.Set(HeaderContentRange, Format416ContentRange(size))
		problem.WriteFailure(w, r, http.StatusRequestedRangeNotSatisfiable, MsgRangeNotSatisfy)
		return
	}

	span.SetAttributes(telemetry.StreamAttributes(id, size, rng.Start, rng.End)...)
	length := rng.Length()
	h.Set(HeaderContentType, contentType)
	h.Set(HeaderContentRange, FormatContentRange(rng, size))
	h.Set(HeaderContentLength, strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	s.copy(r.Context(), w, logger, io.NewSectionReader(f, rng.Start, length), length, metrics.StreamPartial)
}

// copy writes exactly n bytes from src. Headers are already sent, so a
// failure can only be logged; net/http drops the connection on the short body.
func (s *Streamer) copy(ctx context.Context, w io.Writer, logger zerolog.Logger, src io.Reader, n int64, outcome string) {
	metrics.StreamsActive.Inc()
	defer metrics.StreamsActive.Dec()

	written, err := io.CopyN(w, src, n)
	metrics.AddStreamBytes(written)
	if err == nil {
		metrics.IncStream(outcome)
		return
	}

	evt := logger.Warn()
	event := "stream.failed"
	if ctx.Err() != nil {
		evt = logger.Debug()
		event = "stream.aborted"
		metrics.IncStream(metrics.StreamAborted)
	} else {
		metrics.IncStream(metrics.StreamError)
	}
	evt.Err(err).
		Str(log.FieldEvent, event).
		Int64("written", written).
		Int64("expected", n).
		Msg("video body copy ended early")
}

func (s *Streamer) fail(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error, op string) {
	logger.Error().Err(err).Str(log.FieldEvent, "stream.error").Msg(op)
	metrics.IncStream(metrics.StreamError)
	problem.WriteFailure(w, r, http.StatusInternalServerError, MsgStreamServerFail)
}
