package spreadsheet

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sheetio/internal/codec"
	"sheetio/internal/dataprocessing"
	"sheetio/internal/files"
	"sheetio/internal/infrastructure"
	"sheetio/pkg/contracts/domain"
)

// Import reads the configured sheet of the file at path. The result is
// empty when the file has fewer sheets than the one selected.
func (s *Session) Import(ctx context.Context, path string, filter Filter) (domain.RecordSet, error) {
	t := files.ResolveType(path)
	sheets, err := s.read(ctx, "import", t, path, false, filter, func() (codec.Reader, error) {
		return codec.OpenReader(t, path, s.dialect)
	})
	return firstSheet(sheets), err
}

// ImportSheets reads every sheet of the file at path, in order
func (s *Session) ImportSheets(ctx context.Context, path string, filter Filter) (domain.SheetCollection, error) {
	t := files.ResolveType(path)
	return s.read(ctx, "import_sheets", t, path, true, filter, func() (codec.Reader, error) {
		return codec.OpenReader(t, path, s.dialect)
	})
}

// ImportFrom reads the configured sheet from in-memory or uploaded
// content. name only selects the file type.
func (s *Session) ImportFrom(ctx context.Context, r io.ReaderAt, size int64, name string, filter Filter) (domain.RecordSet, error) {
	t := files.ResolveType(name)
	sheets, err := s.read(ctx, "import", t, name, false, filter, func() (codec.Reader, error) {
		return codec.NewReader(t, r, size, s.dialect)
	})
	return firstSheet(sheets), err
}

// ImportSheetsFrom reads every sheet from in-memory or uploaded content
func (s *Session) ImportSheetsFrom(ctx context.Context, r io.ReaderAt, size int64, name string, filter Filter) (domain.SheetCollection, error) {
	t := files.ResolveType(name)
	return s.read(ctx, "import_sheets", t, name, true, filter, func() (codec.Reader, error) {
		return codec.NewReader(t, r, size, s.dialect)
	})
}

func firstSheet(sheets domain.SheetCollection) domain.RecordSet {
	if len(sheets) == 0 {
		return domain.RecordSet{}
	}
	return sheets[0].Records
}

func (s *Session) read(ctx context.Context, op string, t files.FileType, source string, all bool, filter Filter, open func() (codec.Reader, error)) (sheets domain.SheetCollection, err error) {
	ctx, span := s.tracer.Start(ctx, "spreadsheet."+op, trace.WithAttributes(
		attribute.String("sheetio.format", string(t)),
		attribute.String("sheetio.source", source),
		attribute.Bool("sheetio.with_header", s.withHeader),
	))
	defer span.End()

	start := time.Now()
	s.logger.DebugContext(ctx, "Import started",
		slog.String("operation", op),
		slog.String("format", string(t)),
		slog.String("source", source),
		slog.Int("sheet", s.sheet))

	defer func() {
		rows := sheets.Rows()
		s.metrics.RecordConversion(ctx, "import", string(t), rows, time.Since(start), err)
		span.SetAttributes(attribute.Int("sheetio.rows", rows))
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.ErrorContext(ctx, "Import failed",
				slog.String("operation", op),
				slog.String("source", source),
				slog.String("error", err.Error()))
			return
		}
		s.logger.InfoContext(ctx, "Import completed",
			slog.String("operation", op),
			slog.String("format", string(t)),
			slog.Int("sheets", len(sheets)),
			slog.Int("rows", rows),
			slog.Duration("duration", time.Since(start)))
	}()

	r, err := open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			sheets, err = nil, closeErr
		}
	}()

	sheets = domain.SheetCollection{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if !all && sheet.Index() != s.sheet {
			if sheet.Index() > s.sheet {
				break
			}
			continue
		}

		records, err := s.readSheet(ctx, sheet, filter)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, domain.Sheet{Name: sheet.Name(), Records: records})

		if !all {
			break
		}
	}
	return sheets, nil
}

// readSheet reconciles the rows of one sheet into records
func (s *Session) readSheet(ctx context.Context, sheet codec.SheetStream, filter Filter) (domain.RecordSet, error) {
	rec := dataprocessing.NewReconciler(s.withHeader, filter)
	records := domain.RecordSet{}

	for n := 1; ; n++ {
		if n%rowCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := sheet.NextRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		record, ok, err := rec.Push(row)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, record)
		}
	}

	if padded, truncated := rec.Adjusted(); padded+truncated > 0 {
		s.logger.DebugContext(ctx, "Rows reconciled to header length",
			slog.Int("sheet", sheet.Index()),
			slog.Int("header_length", len(rec.Header())),
			slog.Int("padded", padded),
			slog.Int("truncated", truncated))
	}
	return records, nil
}
