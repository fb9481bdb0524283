// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SplitName splits a filename into stem and extension. A leading dot does not
// start an extension, so ".hidden" has stem ".hidden" and no extension.
func SplitName(filename string) (stem, ext string) {
	ext = filepath.Ext(filename)
	if ext == filename {
		ext = ""
	}
	return filename[:len(filename)-len(ext)], ext
}

// Resolve derives the video identifier from a filename: the stem, verbatim.
func Resolve(filename string) string {
	stem, _ := SplitName(filename)
	return stem
}

// Lookup returns the first filename in snapshot whose identifier equals id.
func Lookup(id string, snapshot []string) (string, error) {
	for _, name := range snapshot {
		if Resolve(name) == id {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Files lists the non-directory entries of dir in directory-read (filename)
// order, whatever their extension.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %w", ErrFilesystem, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Snapshot lists the video files in dir, in directory-read (filename) order.
// Subdirectories and files without a video extension are skipped.
func Snapshot(dir string) ([]string, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	return videosOnly(files), nil
}

func videosOnly(files []string) []string {
	names := make([]string, 0, len(files))
	for _, name := range files {
		if _, ext := SplitName(name); IsVideoExtension(ext) {
			names = append(names, name)
		}
	}
	return names
}

// Locate resolves id to an absolute file path inside dir. A file with a video
// extension wins, so streaming picks the same file the listing shows; any
// other file with a matching stem is served as a fallback.
func Locate(dir, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	files, err := Files(dir)
	if err != nil {
		return "", err
	}
	name, err := Lookup(id, videosOnly(files))
	if err != nil {
		if name, err = Lookup(id, files); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, name), nil
}
