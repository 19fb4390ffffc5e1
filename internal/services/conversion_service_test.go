package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetio/internal/config"
	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/internal/shared/testutil"
	"sheetio/pkg/contracts/domain"
	"sheetio/pkg/spreadsheet"
)

func newTestService(t *testing.T, mutate func(*config.Config)) (*ConversionService, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	cfg.CSV.BOM = false
	if mutate != nil {
		mutate(cfg)
	}

	base := t.TempDir()
	paths := &config.Paths{
		TempDir:   filepath.Join(base, "tmp"),
		OutputDir: filepath.Join(base, "out"),
	}
	logger, _ := testutil.NewTestLogger(t)

	svc, err := NewConversionService(cfg, files.NewManager(paths), spreadsheet.Telemetry{}, logger)
	require.NoError(t, err)
	return svc, paths
}

func boolPtr(b bool) *bool { return &b }

func TestConversionService_Export(t *testing.T) {
	svc, _ := newTestService(t, nil)

	req := &ExportRequest{
		Filename: "people.csv",
		SessionOptions: SessionOptions{
			CSV: &CSVOptions{Delimiter: ";"},
		},
		Sheets: []SheetPayload{{Records: domain.RecordSet{
			domain.NewRecord("name", "Ann", "age", int64(30)),
		}}},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), req, &buf))
	assert.Equal(t, "name;age\nAnn;30\n", buf.String())
}

func TestConversionService_ExportValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tests := []struct {
		name string
		req  *ExportRequest
	}{
		{"no sheets", &ExportRequest{Filename: "x.csv"}},
		{"path in filename", &ExportRequest{Filename: "../x.csv", Sheets: []SheetPayload{{}}}},
		{"bad sheet name", &ExportRequest{Filename: "x.xlsx", Sheets: []SheetPayload{{Name: "a/b"}}}},
		{"bad policy", &ExportRequest{Filename: "x.xlsx", SessionOptions: SessionOptions{Unsupported: "keep"}, Sheets: []SheetPayload{{}}}},
		{"bad color", &ExportRequest{Filename: "x.xlsx", SessionOptions: SessionOptions{HeaderStyle: &StyleOptions{FillColor: "yellow"}}, Sheets: []SheetPayload{{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Export(context.Background(), tt.req, &bytes.Buffer{})
			var apiErr *apperrors.APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
		})
	}
}

func TestConversionService_ExportCSVWithSeveralSheets(t *testing.T) {
	svc, _ := newTestService(t, nil)
	err := svc.Export(context.Background(), &ExportRequest{
		Filename: "x.csv",
		Sheets:   []SheetPayload{{}, {}},
	}, &bytes.Buffer{})
	assert.ErrorIs(t, err, spreadsheet.ErrConfiguration)
}

func TestConversionService_Import(t *testing.T) {
	svc, paths := newTestService(t, nil)

	res, err := svc.Import(context.Background(),
		&ImportRequest{Filename: "upload.csv"},
		strings.NewReader("a,b\n1,2\n3\n"))
	require.NoError(t, err)

	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, 2, res.Rows)
	require.Len(t, res.Sheets, 1)
	assert.Equal(t, domain.RecordSet{
		domain.NewRecord("a", "1", "b", "2"),
		domain.NewRecord("a", "3", "b", nil),
	}, res.Sheets[0].Records)

	entries, err := os.ReadDir(paths.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged uploads are removed")
}

func TestConversionService_ImportOverrides(t *testing.T) {
	svc, _ := newTestService(t, nil)

	res, err := svc.Import(context.Background(), &ImportRequest{
		Filename: "upload.csv",
		SessionOptions: SessionOptions{
			WithHeader: boolPtr(false),
			CSV:        &CSVOptions{Delimiter: "|"},
		},
	}, strings.NewReader("x|y\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.RecordSet{domain.Positional("x", "y")}, res.Sheets[0].Records)
}

func TestConversionService_ImportTooLarge(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *config.Config) {
		cfg.Conversion.MaxUploadBytes = 4
	})

	_, err := svc.Import(context.Background(), &ImportRequest{Filename: "big.csv"}, strings.NewReader("a,b,c,d\n"))
	assert.ErrorIs(t, err, apperrors.ErrTooLarge)
}

func TestConversionService_ConvertAndInspect(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	dir := t.TempDir()

	book := filepath.Join(dir, "book.xlsx")
	_, err := spreadsheet.New().Sheets(domain.SheetCollection{
		{Name: "One", Records: domain.RecordSet{domain.NewRecord("k", "a"), domain.NewRecord("k", "b")}},
		{Name: "Two", Records: domain.RecordSet{domain.NewRecord("k", "c")}},
	}).Export(ctx, book, nil)
	require.NoError(t, err)

	summary, err := svc.Inspect(ctx, book, SessionOptions{})
	require.NoError(t, err)
	assert.Equal(t, []SheetSummary{
		{Index: 1, Name: "One", Rows: 2},
		{Index: 2, Name: "Two", Rows: 1},
	}, summary)

	out := filepath.Join(dir, "nested", "book.ods")
	res, err := svc.Convert(ctx, &ConvertRequest{Input: book, Output: out, AllSheets: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sheets)
	assert.Equal(t, 3, res.Rows)
	assert.FileExists(t, res.Output)

	summary, err = svc.Inspect(ctx, out, SessionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Two", summary[1].Name)

	single := filepath.Join(dir, "second.csv")
	res, err = svc.Convert(ctx, &ConvertRequest{Input: book, Output: single, SessionOptions: SessionOptions{Sheet: 2}})
	require.NoError(t, err)
	data, err := os.ReadFile(single)
	require.NoError(t, err)
	assert.Equal(t, "k\nc\n", string(data))
}

func TestConversionService_ConvertMissingInput(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Convert(context.Background(), &ConvertRequest{
		Input:  filepath.Join(t.TempDir(), "missing.csv"),
		Output: filepath.Join(t.TempDir(), "out.xlsx"),
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
