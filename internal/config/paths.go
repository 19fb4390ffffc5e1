package config

import (
	"fmt"
	"path/filepath"
)

// Paths holds the resolved working directories
type Paths struct {
	TempDir   string
	OutputDir string
}

// GetPaths resolves the configured directories to absolute paths.
// Relative directories are taken from the current working directory.
func (c PathsConfig) GetPaths() (*Paths, error) {
	temp, err := filepath.Abs(c.TempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp dir: %w", err)
	}
	output, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}
	return &Paths{TempDir: temp, OutputDir: output}, nil
}

// GetTempPath returns the path of filename inside the temp directory
func (p *Paths) GetTempPath(filename string) string {
	return filepath.Join(p.TempDir, filename)
}

// GetOutputPath returns the path of filename inside the output directory
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}
