package codec

import (
	"encoding/csv"
	"io"

	apperrors "sheetio/internal/errors"
	"sheetio/pkg/contracts/domain"
)

// rowSource is satisfied by csv.Reader and dialectReader
type rowSource interface {
	Read() ([]string, error)
}

// rowSink is satisfied by csv.Writer and dialectWriter
type rowSink interface {
	Write(record []string) error
	Flush()
	Error() error
}

// csvReader exposes a delimited text file as a single sheet
type csvReader struct {
	closer io.Closer
	rows   rowSource
	served bool
}

func newCSVReader(r io.Reader, closer io.Closer, dialect domain.Dialect) (*csvReader, error) {
	decoded, err := decodingReader(r, dialect.Encoding)
	if err != nil {
		return nil, err
	}

	var rows rowSource
	if dialect.Enclosure == '"' {
		cr := csv.NewReader(decoded)
		cr.Comma = dialect.Delimiter
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		rows = cr
	} else {
		rows = newDialectReader(decoded, dialect)
	}

	return &csvReader{closer: closer, rows: rows}, nil
}

func (r *csvReader) Next() (SheetStream, error) {
	if r.served {
		return nil, io.EOF
	}
	r.served = true
	return &csvSheet{rows: r.rows}, nil
}

func (r *csvReader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return ioError("failed to close csv file", err)
}

type csvSheet struct {
	rows rowSource
}

func (s *csvSheet) Index() int   { return 1 }
func (s *csvSheet) Name() string { return "" }

func (s *csvSheet) NextRow() ([]domain.Value, error) {
	for {
		record, err := s.rows.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, ioError("failed to read csv row", err)
		}
		if len(record) == 0 {
			continue
		}

		values := make([]domain.Value, len(record))
		for i, field := range record {
			values[i] = field
		}
		return values, nil
	}
}

// csvWriter writes delimited text. Sheets are not supported.
type csvWriter struct {
	closer  io.Closer
	encoder io.Closer
	rows    rowSink
	closed  bool
}

func newCSVWriter(w io.Writer, closer io.Closer, dialect domain.Dialect) (*csvWriter, error) {
	out, encoder, err := encodingWriter(w, dialect.Encoding, dialect.BOM)
	if err != nil {
		return nil, err
	}

	var rows rowSink
	if dialect.Enclosure == '"' {
		cw := csv.NewWriter(out)
		cw.Comma = dialect.Delimiter
		rows = cw
	} else {
		rows = newDialectWriter(out, dialect)
	}

	return &csvWriter{closer: closer, encoder: encoder, rows: rows}, nil
}

func (w *csvWriter) WriteRow(values []domain.Value, _ *domain.Style) error {
	record := make([]string, len(values))
	for i, v := range values {
		record[i], _ = domain.FormatValue(v)
	}
	if err := w.rows.Write(record); err != nil {
		return apperrors.NewIOError("failed to write csv row", err)
	}
	return nil
}

// SetSheetName is a no-op: delimited text has no sheet names
func (w *csvWriter) SetSheetName(string) error { return nil }

func (w *csvWriter) AddSheet() error {
	return apperrors.NewConfigError("csv output holds a single sheet", nil)
}

func (w *csvWriter) SupportsSheets() bool { return false }

func (w *csvWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.rows.Flush()
	err := w.rows.Error()
	if encErr := w.encoder.Close(); err == nil {
		err = encErr
	}
	if w.closer != nil {
		if closeErr := w.closer.Close(); err == nil {
			err = closeErr
		}
	}
	return ioError("failed to finish csv output", err)
}
