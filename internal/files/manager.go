package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sheetio/internal/config"
)

// ErrFileTooLarge is returned when an upload exceeds its size limit
var ErrFileTooLarge = errors.New("file exceeds size limit")

// Manager provides file management operations
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// SaveUpload copies r into a uniquely named file in the temp directory,
// keeping the original name's suffix so the file type still resolves.
// It fails with ErrFileTooLarge once more than limit bytes are read.
func (m *Manager) SaveUpload(name string, r io.Reader, limit int64) (string, int64, error) {
	if err := os.MkdirAll(m.paths.TempDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create temp directory: %w", err)
	}

	path := m.paths.GetTempPath(uuid.NewString() + "-" + filepath.Base(name))

	slog.Info("Saving upload",
		slog.String("name", name),
		slog.String("path", path))

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(r, limit+1))
	closeErr := dst.Close()
	if err == nil && written > limit {
		err = ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrFileTooLarge) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("failed to copy upload content: %w", err)
	}

	return path, written, nil
}

// DeleteFile deletes a file
func (m *Manager) DeleteFile(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Deleting file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.Remove(fullPath)
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Ensuring directory exists",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.MkdirAll(fullPath, 0755)
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "tmp/"):
		return m.paths.GetTempPath(strings.TrimPrefix(path, "tmp/"))
	default:
		return m.paths.GetOutputPath(path)
	}
}
