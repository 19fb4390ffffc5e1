package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetio/internal/config"
	apperrors "sheetio/internal/errors"
	"sheetio/internal/services"
)

func TestHealthHandler(t *testing.T) {
	base := t.TempDir()
	paths := &config.Paths{TempDir: filepath.Join(base, "tmp"), OutputDir: filepath.Join(base, "out")}
	h := NewHealthHandler(services.NewHealthService("1.0.0", paths, quietLogger()), quietLogger())

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)

	rec = httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_NotReady(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	paths := &config.Paths{TempDir: filepath.Join(blocker, "tmp"), OutputDir: filepath.Join(base, "out")}
	h := NewHealthHandler(services.NewHealthService("1.0.0", paths, quietLogger()), quietLogger())

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestMetricsHandler(t *testing.T) {
	problems := apperrors.NewErrorHandler(quietLogger(), false)

	rec := httptest.NewRecorder()
	NewMetricsHandler(nil, problems).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP up\n"))
	})
	rec = httptest.NewRecorder()
	NewMetricsHandler(exporter, problems).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP up")
}
