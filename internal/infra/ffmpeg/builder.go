// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/ManuGH/vidserve/internal/thumbnail"
)

// frameArgs builds the ffmpeg flags for a single scaled JPEG frame on stdout.
// -ss precedes -i so ffmpeg seeks on the demuxer instead of decoding up to the offset.
func frameArgs(req thumbnail.FrameRequest) []string {
	args := []string{"-nostdin", "-hide_banner", "-loglevel", "error"}
	if req.Offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(req.Offset.Seconds(), 'f', 3, 64))
	}
	args = append(args,
		"-i", req.VideoPath,
		"-frames:v", "1",
		"-an", "-sn",
		"-vf", fmt.Sprintf("scale=%d:%d", req.Width, req.Height),
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"pipe:1",
	)
	return args
}

// probeArgs builds the ffprobe flags that report the container duration as JSON.
func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_entries", "format=duration",
		path,
	}
}
