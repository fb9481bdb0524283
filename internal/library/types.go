// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package library implements the flat-directory video catalog: identity
// derivation, content types and the per-request listing.
package library

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no file in the directory matches an identifier.
	ErrNotFound = errors.New("video not found")
	// ErrFilesystem marks listing failures caused by directory or metadata reads.
	ErrFilesystem = errors.New("filesystem error")
)

// VideoFile is one catalog entry. It is built fresh for every listing and
// never persisted.
type VideoFile struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Size         int64     `json:"size"`
	Path         string    `json:"path"`
	CreatedAt    time.Time `json:"createdAt"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	// Duration in seconds; nil when unknown or probing is disabled.
	Duration  *float64 `json:"duration"`
	Extension string   `json:"-"`
}
