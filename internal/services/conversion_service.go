package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"sheetio/internal/config"
	"sheetio/internal/files"
	"sheetio/internal/infrastructure"
	"sheetio/internal/validation"
	"sheetio/pkg/contracts/domain"
	"sheetio/pkg/spreadsheet"
)

// ConversionService builds spreadsheet sessions from the configured
// defaults plus request overrides and runs them for the HTTP and CLI
// front ends
type ConversionService struct {
	defaults  config.ConversionConfig
	dialect   domain.Dialect
	files     *files.Manager
	requests  *validation.RequestValidator
	inputs    *validation.FileValidator
	telemetry spreadsheet.Telemetry
	logger    *slog.Logger
}

// NewConversionService creates a conversion service. fm stages uploads;
// it may be nil when only file conversions are used.
func NewConversionService(cfg *config.Config, fm *files.Manager, telemetry spreadsheet.Telemetry, logger *slog.Logger) (*ConversionService, error) {
	dialect, err := cfg.CSV.Dialect()
	if err != nil {
		return nil, fmt.Errorf("invalid csv defaults: %w", err)
	}

	logger = infrastructure.WithComponent(logger, "conversion_service")
	logger.Debug("ConversionService initialized",
		slog.Bool("with_header", cfg.Conversion.WithHeader),
		slog.Int("sheet", cfg.Conversion.Sheet),
		slog.Int64("max_upload_bytes", cfg.Conversion.MaxUploadBytes),
		slog.String("csv_encoding", dialect.Encoding))

	return &ConversionService{
		defaults:  cfg.Conversion,
		dialect:   dialect,
		files:     fm,
		requests:  validation.NewRequestValidator(),
		inputs:    validation.NewFileValidator(logger),
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// MaxUploadBytes is the configured upload size limit
func (s *ConversionService) MaxUploadBytes() int64 {
	return s.defaults.MaxUploadBytes
}

// NewSession returns a session configured from defaults and opts
func (s *ConversionService) NewSession(opts SessionOptions) *spreadsheet.Session {
	withHeader := s.defaults.WithHeader
	if opts.WithHeader != nil {
		withHeader = *opts.WithHeader
	}
	sheet := s.defaults.Sheet
	if opts.Sheet > 0 {
		sheet = opts.Sheet
	}

	return spreadsheet.New().
		Logger(s.logger).
		Telemetry(s.telemetry).
		WithHeaders(withHeader).
		Sheet(sheet).
		Dialect(s.dialect).
		ConfigureCSV(opts.CSV.options()...).
		HeaderStyle(opts.HeaderStyle.style()).
		Unsupported(opts.policy())
}

func (s *ConversionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.defaults.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.defaults.Timeout)
}

// Export validates req and streams the resulting file to w
func (s *ConversionService) Export(ctx context.Context, req *ExportRequest, w io.Writer) error {
	if err := s.requests.Struct(req); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	session := s.NewSession(req.SessionOptions).Sheets(fromPayload(req.Sheets))
	if err := session.Download(ctx, w, req.Filename, nil); err != nil {
		return fmt.Errorf("export %s: %w", req.Filename, err)
	}
	return nil
}

// Import stages the uploaded content in the temp directory, reads it and
// removes the staged copy
func (s *ConversionService) Import(ctx context.Context, req *ImportRequest, content io.Reader) (*ImportResult, error) {
	if err := s.requests.Struct(req); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, fmt.Errorf("import %s: no upload storage configured", req.Filename)
	}

	path, size, err := s.files.SaveUpload(req.Filename, content, s.defaults.MaxUploadBytes)
	if err != nil {
		return nil, uploadError(err, s.defaults.MaxUploadBytes)
	}
	defer func() {
		if err := s.files.DeleteFile(path); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove staged upload",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}()

	s.logger.InfoContext(ctx, "Upload staged",
		slog.String("filename", req.Filename),
		slog.Int64("size", size))

	sheets, err := s.read(ctx, path, req.AllSheets, req.SessionOptions)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", req.Filename, err)
	}

	return &ImportResult{
		Filename: req.Filename,
		Format:   string(files.ResolveType(req.Filename)),
		Rows:     sheets.Rows(),
		Sheets:   toPayload(sheets),
	}, nil
}

// Convert reads Input and writes it to Output, returning the absolute
// output path
func (s *ConversionService) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
	if err := s.requests.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.inputs.ValidateSpreadsheetFile(req.Input); err != nil {
		return nil, err
	}
	if err := s.inputs.ValidateOutputDirectory(req.Output); err != nil {
		return nil, err
	}

	sheets, err := s.read(ctx, req.Input, req.AllSheets, req.SessionOptions)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Input, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	written, err := s.NewSession(req.SessionOptions).Sheets(sheets).Export(ctx, req.Output, nil)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", req.Output, err)
	}

	return &ConvertResult{Output: written, Sheets: len(sheets), Rows: sheets.Rows()}, nil
}

// Inspect lists every sheet of the file at path with its record count
func (s *ConversionService) Inspect(ctx context.Context, path string, opts SessionOptions) ([]SheetSummary, error) {
	if _, err := s.inputs.ValidateSpreadsheetFile(path); err != nil {
		return nil, err
	}

	sheets, err := s.read(ctx, path, true, opts)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", filepath.Base(path), err)
	}
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	out := make([]SheetSummary, len(sheets))
	for i, sheet := range sheets {
		out[i] = SheetSummary{Index: i + 1, Name: sheet.Name, Rows: len(sheet.Records)}
	}
	return out, nil
}

// read imports one sheet or all sheets of path. A single sheet keeps no
// name.
func (s *ConversionService) read(ctx context.Context, path string, all bool, opts SessionOptions) (domain.SheetCollection, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	session := s.NewSession(opts)
	if all {
		return session.ImportSheets(ctx, path, nil)
	}

	records, err := session.Import(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return domain.Single(records), nil
}
