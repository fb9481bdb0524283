// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"clip.jpg", false},
		{"My Video..final.jpg", false},
		{".hidden", false},
		{"", true},
		{".", true},
		{"..", true},
		{"a/b.jpg", true},
		{`a\b.jpg`, true},
		{"nul\x00.jpg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidName))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jpg"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.jpg"), []byte("x"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.jpg"), filepath.Join(root, "link.jpg")))

	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	got, err := ConfineRelPath(root, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "a.jpg"), got)

	got, err = ConfineRelPath(root, "missing.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "missing.jpg"), got)

	_, err = ConfineRelPath(root, "../x.jpg")
	assert.ErrorIs(t, err, ErrEscapesRoot)

	_, err = ConfineRelPath(root, "link.jpg")
	assert.ErrorIs(t, err, ErrEscapesRoot)

	_, err = ConfineRelPath(root, `..\x.jpg`)
	assert.Error(t, err)
}
