// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrNoDuration is returned when ffprobe reports no usable duration.
var ErrNoDuration = errors.New("no duration reported")

// Prober reads container durations with ffprobe.
type Prober struct {
	runner Runner
}

// NewProber returns a prober using the ffprobe binary at bin.
func NewProber(bin string, killTimeout time.Duration) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{runner: Runner{Bin: bin, KillTimeout: killTimeout}}
}

// Duration returns the container duration of the file at path.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	var out bytes.Buffer
	if err := p.runner.Run(ctx, probeArgs(path), &out); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseDuration(out.Bytes())
}

// Available reports whether ffprobe can be executed.
func (p *Prober) Available() error {
	return p.runner.Available()
}

type probeData struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseDuration(raw []byte) (time.Duration, error) {
	var data probeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("json decode: %w", err)
	}
	if data.Format.Duration == "" || data.Format.Duration == "N/A" {
		return 0, ErrNoDuration
	}
	secs, err := strconv.ParseFloat(data.Format.Duration, 64)
	if err != nil || secs <= 0 || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, data.Format.Duration)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
