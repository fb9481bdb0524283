// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid range")
	ErrMultiRange    = errors.New("multi-range not supported")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// Range represents a byte range [Start, End] (inclusive).
type Range struct {
	Start int64
	End   int64
}

// Length is the number of bytes covered by r.
func (r Range) Length() int64 { return r.End - r.Start + 1 }

// ParseRange parses a "Range" header against a resource of size bytes and
// returns a single satisfiable Range. Multiple ranges are rejected with
// ErrMultiRange. An end past the resource is clamped to size-1.
func ParseRange(header string, size int64) (Range, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return Range{}, ErrInvalidRange
	}

	set := strings.TrimPrefix(header, prefix)
	if strings.Contains(set, ",") {
		return Range{}, ErrMultiRange
	}

	startStr, endStr, ok := strings.Cut(set, "-")
	if !ok {
		return Range{}, ErrInvalidRange
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	var r Range
	if startStr == "" {
		// Suffix range: bytes=-500 (last 500 bytes)
		n, err := parseOffset(endStr)
		if err != nil {
			return Range{}, err
		}
		if n == 0 || size == 0 {
			return Range{}, ErrUnsatisfiable
		}
		if n > size {
			n = size
		}
		r.Start = size - n
		r.End = size - 1
		return r, nil
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return Range{}, err
	}
	if start >= size {
		return Range{}, ErrUnsatisfiable
	}
	r.Start = start

	if endStr == "" {
		r.End = size - 1
		return r, nil
	}
	end, err := parseOffset(endStr)
	if err != nil {
		return Range{}, err
	}
	if end < start {
		return Range{}, ErrInvalidRange
	}
	if end >= size {
		end = size - 1
	}
	r.End = end
	return r, nil
}

// parseOffset accepts only non-negative decimal digits.
func parseOffset(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrInvalidRange
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidRange
	}
	return n, nil
}

// FormatContentRange formats the Content-Range header.
func FormatContentRange(r Range, size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// Format416ContentRange formats the Content-Range header for a 416 response.
func Format416ContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}
