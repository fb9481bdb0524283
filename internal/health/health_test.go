// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ManuGH/vidserve/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestNewManager(t *testing.T) {
	m := NewManager("v1.2.3")
	assert.Equal(t, "v1.2.3", m.version)
	assert.Empty(t, m.checkers)
}

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks)
}

func TestManager_Health_WithCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusDegraded, resp.Checks["degraded"].Status)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []Status
		wantReady bool
		want      Status
	}{
		{name: "no checkers", wantReady: true, want: StatusHealthy},
		{name: "all healthy", statuses: []Status{StatusHealthy, StatusHealthy}, wantReady: true, want: StatusHealthy},
		{name: "degraded stays ready", statuses: []Status{StatusHealthy, StatusDegraded}, wantReady: true, want: StatusDegraded},
		{name: "unhealthy wins", statuses: []Status{StatusDegraded, StatusUnhealthy}, wantReady: false, want: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1")
			for i, s := range tt.statuses {
				m.RegisterChecker(&mockChecker{name: string(rune('a' + i)), status: s})
			}
			resp := m.Ready(context.Background(), false)
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
			if !tt.wantReady {
				assert.NotEmpty(t, resp.Checks, "failing checks are always reported")
			}
		})
	}
}

func TestServeHealth(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "ffmpeg", status: StatusDegraded})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Contains(t, resp.Checks, "ffmpeg")
}

func TestServeReady(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "videos_dir", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Checks["videos_dir"].Status)
}

func TestDirChecker(t *testing.T) {
	dir := t.TempDir()

	res := NewDirChecker("videos_dir", dir, false).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)

	res = NewDirChecker("thumbnails_dir", dir, true).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")

	res = NewDirChecker("missing", filepath.Join(dir, "nope"), false).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "directory not found", res.Error)
}

func TestDirChecker_NotWritable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	res := NewDirChecker("thumbnails_dir", dir, true).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Contains(t, res.Error, "not writable")
}

func TestFuncChecker(t *testing.T) {
	ok := NewFuncChecker("ffmpeg", StatusDegraded, "available", func(context.Context) error { return nil })
	assert.Equal(t, CheckResult{Status: StatusHealthy, Message: "available"}, ok.Check(context.Background()))

	bad := NewFuncChecker("ffmpeg", StatusDegraded, "available", func(context.Context) error {
		return errors.New("binary not found")
	})
	res := bad.Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, "binary not found", res.Error)
}

func TestPerformStartupChecks(t *testing.T) {
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.VideosDir = filepath.Join(root, "videos")
	cfg.ThumbnailsDir = filepath.Join(root, "thumbnails")
	cfg.FFmpeg.Bin = "vidserve-no-such-ffmpeg"
	cfg.FFmpeg.FFprobeBin = "vidserve-no-such-ffprobe"

	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
	assert.DirExists(t, cfg.VideosDir)
	assert.DirExists(t, cfg.ThumbnailsDir)
	assert.NoFileExists(t, filepath.Join(cfg.ThumbnailsDir, ".write_test"))
}

func TestPerformStartupChecks_Errors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	base := config.Defaults()
	base.VideosDir = filepath.Join(root, "videos")
	base.ThumbnailsDir = filepath.Join(root, "thumbnails")

	notDir := base
	notDir.VideosDir = file
	assert.Error(t, PerformStartupChecks(context.Background(), notDir))

	badAddr := base
	badAddr.APIListenAddr = "no-port"
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), badAddr), "invalid listen address")

	badPort := base
	badPort.MetricsListenAddr = ":99999"
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), badPort), "invalid listen port")
}
