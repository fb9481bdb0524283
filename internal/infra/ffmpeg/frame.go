// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"context"
	"io"
	"time"

	"github.com/ManuGH/vidserve/internal/thumbnail"
)

var _ thumbnail.Extractor = (*FrameExtractor)(nil)

// FrameExtractor grabs one frame with ffmpeg.
type FrameExtractor struct {
	runner Runner
}

// NewFrameExtractor returns an extractor using the ffmpeg binary at bin.
func NewFrameExtractor(bin string, killTimeout time.Duration) *FrameExtractor {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FrameExtractor{runner: Runner{Bin: bin, KillTimeout: killTimeout}}
}

// ExtractFrame writes a JPEG of the frame at req.Offset to w.
func (e *FrameExtractor) ExtractFrame(ctx context.Context, req thumbnail.FrameRequest, w io.Writer) error {
	return e.runner.Run(ctx, frameArgs(req), w)
}

// Available reports whether ffmpeg can be executed.
func (e *FrameExtractor) Available() error {
	return e.runner.Available()
}
