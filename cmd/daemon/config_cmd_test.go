// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VIDSERVE_VIDEOS_DIR", filepath.Join(dir, "videos"))
	t.Setenv("VIDSERVE_THUMBNAILS_DIR", filepath.Join(dir, "thumbnails"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, "logLevel: debug\napi:\n  listenAddr: \":3001\"\n")

	var stdout, stderr bytes.Buffer
	code := runConfig([]string{"validate", "-f", path}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "is valid")
}

func TestConfigValidate_UnknownKey(t *testing.T) {
	path := writeConfig(t, "logLevel: info\nunexpectedRootKey: true\n")

	var stdout, stderr bytes.Buffer
	code := runConfig([]string{"validate", "--file", path}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Configuration error")
}

func TestConfigDump_JSONRedactsSecrets(t *testing.T) {
	path := writeConfig(t, "cache:\n  backend: redis\n  redisAddr: \"localhost:6379\"\n  redisPassword: hunter2\n")

	var stdout, stderr bytes.Buffer
	code := runConfig([]string{"dump", "--effective", "-f", path, "--format=json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.NotContains(t, stdout.String(), "hunter2")

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	cache, ok := out["Cache"].(map[string]any)
	require.True(t, ok, "cache section present")
	assert.Equal(t, redacted, cache["RedisPassword"])
}

func TestConfigDump_YAMLRoundTripsThroughLoader(t *testing.T) {
	path := writeConfig(t, "thumbnails:\n  width: 640\n  height: 360\n")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, runConfig([]string{"dump", "--effective", "-f", path}, &stdout, &stderr), stderr.String())

	dumped := filepath.Join(t.TempDir(), "dumped.yaml")
	require.NoError(t, os.WriteFile(dumped, stdout.Bytes(), 0o600))

	stdout.Reset()
	assert.Equal(t, 0, runConfig([]string{"validate", "-f", dumped}, &stdout, &stderr), stderr.String())
}

func TestConfigCLI_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, runConfig(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	assert.Equal(t, 2, runConfig([]string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Unknown subcommand")

	stderr.Reset()
	assert.Equal(t, 2, runConfig([]string{"dump"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--effective is required")
}
