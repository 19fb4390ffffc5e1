package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"sheetio/internal/config"
	"sheetio/internal/infrastructure"
	"sheetio/internal/validation"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	files     *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Ready reports whether every checked service is ready
func (s HealthStatus) Ready() bool {
	return s.Status == "ready"
}

// NewHealthService creates a health service checking the working
// directories in paths
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	logger = infrastructure.WithComponent(logger, "health_service")
	return &HealthService{
		version:   version,
		paths:     paths,
		files:     validation.NewFileValidator(logger),
		startTime: time.Now(),
		logger:    logger,
	}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports ready when uploads can be staged and exports
// written
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"temp_dir":   hs.checkDirectory(hs.paths.TempDir),
			"output_dir": hs.checkDirectory(hs.paths.OutputDir),
		},
	}

	for name, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}
	return status
}

func (hs *HealthService) checkDirectory(dir string) ServiceHealth {
	if err := hs.files.ValidateOutputDirectory(filepath.Join(dir, "probe")); err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready"}
}
