package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/internal/shared/testutil"
)

func TestFileValidator_ValidateSpreadsheetFile(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantType files.FileType
		wantErr  error
	}{
		{
			name: "csv file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))
				return path
			},
			wantType: files.TypeCSV,
		},
		{
			name: "unknown suffix reads as xlsx",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "book.bin")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantType: files.TypeXLSX,
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.ods")
			},
			wantErr: apperrors.ErrResourceNotFound,
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "office lock file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$book.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			got, err := v.ValidateSpreadsheetFile(tt.setup(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	out := filepath.Join(t.TempDir(), "a", "b", "out.xlsx")
	require.NoError(t, v.ValidateOutputDirectory(out))

	info, err := os.Stat(filepath.Dir(out))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Empty(t, entries, "the write probe is removed")
	testutil.AssertNoErrors(t, handler)
}
