package spreadsheet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sheetio/internal/codec"
	"sheetio/internal/dataprocessing"
	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/internal/infrastructure"
	"sheetio/pkg/contracts/domain"
)

// Export writes the payload to path, creating missing directories, and
// returns the absolute path written. A failed export leaves no file.
func (s *Session) Export(ctx context.Context, path string, mapper Mapper) (string, error) {
	t := files.ResolveType(path)
	created := false
	err := s.write(ctx, "export", t, path, mapper, func() (codec.Writer, error) {
		w, err := codec.CreateWriter(t, path, s.dialect)
		created = err == nil
		return w, err
	})
	if err != nil {
		if created {
			os.Remove(path)
		}
		return "", err
	}
	return files.ResolvePath(path), nil
}

// Download writes the payload to w in the format named by name's suffix.
// w is never closed.
func (s *Session) Download(ctx context.Context, w io.Writer, name string, mapper Mapper) error {
	t := files.ResolveType(name)
	return s.write(ctx, "download", t, name, mapper, func() (codec.Writer, error) {
		return codec.NewWriter(t, w, s.dialect)
	})
}

func (s *Session) write(ctx context.Context, op string, t files.FileType, target string, mapper Mapper, open func() (codec.Writer, error)) (err error) {
	ctx, span := s.tracer.Start(ctx, "spreadsheet."+op, trace.WithAttributes(
		attribute.String("sheetio.format", string(t)),
		attribute.String("sheetio.target", target),
		attribute.Int("sheetio.sheets", len(s.payload)),
	))
	defer span.End()

	start := time.Now()
	rows := 0
	defer func() {
		s.metrics.RecordConversion(ctx, "export", string(t), rows, time.Since(start), err)
		span.SetAttributes(attribute.Int("sheetio.rows", rows))
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.ErrorContext(ctx, "Export failed",
				slog.String("operation", op),
				slog.String("target", target),
				slog.String("error", err.Error()))
			return
		}
		s.logger.InfoContext(ctx, "Export completed",
			slog.String("operation", op),
			slog.String("format", string(t)),
			slog.Int("sheets", len(s.payload)),
			slog.Int("rows", rows),
			slog.Duration("duration", time.Since(start)))
	}()

	if t == files.TypeCSV && len(s.payload) > 1 {
		return apperrors.NewConfigError(
			fmt.Sprintf("csv holds a single sheet, got %d", len(s.payload)), nil).
			WithContext("sheets", len(s.payload))
	}

	w, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for i, entry := range s.payload {
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.HasDisplayName() {
			if err := w.SetSheetName(entry.Name); err != nil {
				return err
			}
		}

		n, err := s.writeSheet(ctx, w, entry.Records, mapper)
		rows += n
		if err != nil {
			return err
		}

		if w.SupportsSheets() && i < len(s.payload)-1 {
			if err := w.AddSheet(); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeSheet maps and normalizes one record set and writes it to the
// current sheet. It returns the number of rows written.
func (s *Session) writeSheet(ctx context.Context, w codec.Writer, records domain.RecordSet, mapper Mapper) (int, error) {
	mapped, err := dataprocessing.MapAll(records, mapper)
	if err != nil {
		return 0, err
	}

	normalized, stats := dataprocessing.Normalize(mapped, s.policy)
	if stats.Dropped > 0 || stats.Blanked > 0 {
		s.logger.WarnContext(ctx, "Unsupported cell values replaced",
			slog.String("policy", s.policy.String()),
			slog.Int("dropped", stats.Dropped),
			slog.Int("blanked", stats.Blanked))
	}
	if len(normalized) == 0 {
		return 0, nil
	}

	written := 0
	if s.withHeader {
		keys := normalized[0].Keys()
		header := make([]domain.Value, len(keys))
		for i, k := range keys {
			header[i] = k
		}
		if err := w.WriteRow(header, s.headerStyle); err != nil {
			return written, err
		}
		written++
	}

	for i, record := range normalized {
		if i > 0 && i%rowCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
		if err := w.WriteRow(record.Values(), nil); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
