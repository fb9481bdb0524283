// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ffmpeg adapts the ffmpeg and ffprobe binaries to the thumbnail
// extractor and duration prober interfaces.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/vidserve/internal/procgroup"
)

const stderrLines = 20

// ErrBinaryNotFound is returned when the configured binary cannot be resolved.
var ErrBinaryNotFound = errors.New("binary not found")

// Runner executes a helper binary in its own process group and keeps the
// stderr tail for diagnostics.
type Runner struct {
	Bin         string
	KillTimeout time.Duration
}

// Available reports whether the binary resolves on PATH or as given.
func (r Runner) Available() error {
	if _, err := exec.LookPath(r.Bin); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBinaryNotFound, r.Bin, err)
	}
	return nil
}

// Run executes the binary with args, copying stdout to w.
func (r Runner) Run(ctx context.Context, args []string, w io.Writer) error {
	// #nosec G204 -- binary comes from operator config; args are built internally
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	procgroup.Bind(cmd, r.KillTimeout)
	cmd.Stdout = w

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("pipe stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBinaryNotFound, r.Bin)
		}
		return fmt.Errorf("start %s: %w", r.Bin, err)
	}

	ring := NewRingBuffer(stderrLines)
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		ring.Add(scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", r.Bin, ctxErr)
		}
		if tail := ring.GetAll(); len(tail) > 0 {
			return fmt.Errorf("%s: %w (stderr: %s)", r.Bin, err, strings.Join(tail, " | "))
		}
		return fmt.Errorf("%s: %w", r.Bin, err)
	}
	return nil
}

// RingBuffer keeps the last N lines written to it.
type RingBuffer struct {
	lines []string
	pos   int
	full  bool
	mu    sync.Mutex
}

// NewRingBuffer returns a buffer retaining size lines.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{lines: make([]string, size)}
}

// Add appends a line, evicting the oldest when full.
func (r *RingBuffer) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.pos] = line
	r.pos = (r.pos + 1) % len(r.lines)
	if r.pos == 0 {
		r.full = true
	}
}

// GetAll returns the retained lines, oldest first.
func (r *RingBuffer) GetAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]string(nil), r.lines[:r.pos]...)
	}
	res := make([]string, len(r.lines))
	copy(res, r.lines[r.pos:])
	copy(res[len(r.lines)-r.pos:], r.lines[:r.pos])
	return res
}
