// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package thumbnail

import (
	"context"
	"io"
	"time"
)

// FrameRequest describes the single frame to extract.
type FrameRequest struct {
	VideoPath string
	Offset    time.Duration
	Width     int
	Height    int
}

// Extractor writes one JPEG frame of a video to w.
type Extractor interface {
	ExtractFrame(ctx context.Context, req FrameRequest, w io.Writer) error
}

// DurationProber reports the playback duration of a video file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, req FrameRequest, w io.Writer) error

// ExtractFrame calls f.
func (f ExtractorFunc) ExtractFrame(ctx context.Context, req FrameRequest, w io.Writer) error {
	return f(ctx, req, w)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
