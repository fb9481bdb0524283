// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"movie.mp4", "movie"},
		{"My Holiday - 2024.MOV", "My Holiday - 2024"},
		{"archive.tar.mkv", "archive.tar"},
		{"noext", "noext"},
		{".hidden", ".hidden"},
		{".mp4", ".mp4"},
		{"Grüße.webm", "Grüße"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.filename))
		})
	}
}

func TestLookup(t *testing.T) {
	snapshot := []string{"a.mkv", "a.mp4", "b clip.webm"}

	name, err := Lookup("a", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "a.mkv", name, "first match in snapshot order wins")

	name, err = Lookup("b clip", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "b clip.webm", name)

	_, err = Lookup("A", snapshot)
	assert.True(t, errors.Is(err, ErrNotFound), "identifiers are case sensitive")

	_, err = Lookup("missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshot_FiltersExtensionsAndDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MKV", "notes.txt", ".DS_Store", "c.webm"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o750))

	names, err := Snapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.MKV", "b.mp4", "c.webm"}, names)
}

func TestSnapshot_MissingDir(t *testing.T) {
	_, err := Snapshot(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilesystem)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mov"), []byte("x"), 0o600))

	path, err := Locate(dir, "clip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip.mov"), path)

	for _, id := range []string{"", "../clip", "sub/clip", "nope"} {
		_, err := Locate(dir, id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestLocate_UnknownExtensionFallback(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"clip.m4v", "movie.ass", "movie.mp4"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	path, err := Locate(dir, "clip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip.m4v"), path)

	// "movie.ass" sorts first, but the listed video is preferred.
	path, err = Locate(dir, "movie")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "movie.mp4"), path)
}

func TestFiles_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ts"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp4"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.mp4"), 0o750))

	names, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4", "b.ts"}, names)
}
