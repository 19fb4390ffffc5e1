package codec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/pkg/contracts/domain"
)

// Reader iterates the sheets of a spreadsheet in physical order
type Reader interface {
	// Next returns the next sheet, or io.EOF after the last one.
	// Advancing abandons any rows left in the previous sheet.
	Next() (SheetStream, error)
	Close() error
}

// SheetStream yields the rows of one sheet
type SheetStream interface {
	// Index is the 1-based position of the sheet
	Index() int
	Name() string
	// NextRow returns the next non-empty row, or io.EOF
	NextRow() ([]domain.Value, error)
}

// Writer appends rows to the current sheet of an output file
type Writer interface {
	WriteRow(values []domain.Value, style *domain.Style) error
	SetSheetName(name string) error
	// AddSheet creates a new sheet and makes it current
	AddSheet() error
	SupportsSheets() bool
	// Close flushes and releases the output. It is safe to call twice.
	Close() error
}

// OpenReader opens the file at path with the codec for t
func OpenReader(t files.FileType, path string, dialect domain.Dialect) (Reader, error) {
	slog.Debug("Opening spreadsheet reader",
		slog.String("type", string(t)),
		slog.String("path", path))

	switch t {
	case files.TypeCSV:
		if err := validateDialect(dialect); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewIOError("failed to open csv file", err)
		}
		r, err := newCSVReader(f, f, dialect)
		if err != nil {
			f.Close()
			return nil, err
		}
		return r, nil
	case files.TypeXLSX:
		return openXLSXReader(path)
	case files.TypeODS:
		return openODSReader(path)
	default:
		return nil, apperrors.NewUnsupportedFormatError(string(t))
	}
}

// NewReader reads a spreadsheet of type t from in-memory or uploaded content
func NewReader(t files.FileType, r io.ReaderAt, size int64, dialect domain.Dialect) (Reader, error) {
	switch t {
	case files.TypeCSV:
		if err := validateDialect(dialect); err != nil {
			return nil, err
		}
		cr, err := newCSVReader(io.NewSectionReader(r, 0, size), nil, dialect)
		if err != nil {
			return nil, err
		}
		return cr, nil
	case files.TypeXLSX:
		return newXLSXReader(io.NewSectionReader(r, 0, size))
	case files.TypeODS:
		return newODSReader(r, size)
	default:
		return nil, apperrors.NewUnsupportedFormatError(string(t))
	}
}

// CreateWriter creates the file at path, and any missing parent
// directories, for the codec of t
func CreateWriter(t files.FileType, path string, dialect domain.Dialect) (Writer, error) {
	if !t.Valid() {
		return nil, apperrors.NewUnsupportedFormatError(string(t))
	}
	if t == files.TypeCSV {
		if err := validateDialect(dialect); err != nil {
			return nil, err
		}
	}

	slog.Debug("Creating spreadsheet writer",
		slog.String("type", string(t)),
		slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewIOError("failed to create directory", err)
	}

	switch t {
	case files.TypeCSV:
		f, err := os.Create(path)
		if err != nil {
			return nil, apperrors.NewIOError("failed to create csv file", err)
		}
		w, err := newCSVWriter(f, f, dialect)
		if err != nil {
			f.Close()
			os.Remove(path)
			return nil, err
		}
		return w, nil
	case files.TypeXLSX:
		return newXLSXWriter(path, nil)
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, apperrors.NewIOError("failed to create ods file", err)
		}
		return newODSWriter(f, f), nil
	}
}

// NewWriter writes a spreadsheet of type t to w. Closing the returned
// writer flushes the content but never closes w.
func NewWriter(t files.FileType, w io.Writer, dialect domain.Dialect) (Writer, error) {
	switch t {
	case files.TypeCSV:
		if err := validateDialect(dialect); err != nil {
			return nil, err
		}
		cw, err := newCSVWriter(w, nil, dialect)
		if err != nil {
			return nil, err
		}
		return cw, nil
	case files.TypeXLSX:
		return newXLSXWriter("", w)
	case files.TypeODS:
		return newODSWriter(w, nil), nil
	default:
		return nil, apperrors.NewUnsupportedFormatError(string(t))
	}
}

// ioError wraps err as an IO failure unless it already carries a kind
func ioError(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewIOError(message, err)
}

func sheetDefaultName(n int) string {
	return fmt.Sprintf("Sheet%d", n)
}
