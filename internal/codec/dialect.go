package codec

import (
	"bufio"
	"io"
	"strings"

	"sheetio/pkg/contracts/domain"
)

// dialectReader parses delimited text quoted with an arbitrary enclosure.
// encoding/csv only understands '"', so this covers the other dialects.
// An enclosure inside a quoted field is escaped by doubling it; text after
// a closing enclosure is kept as-is, like csv.Reader with LazyQuotes.
type dialectReader struct {
	br        *bufio.Reader
	delimiter rune
	enclosure rune
}

func newDialectReader(r io.Reader, d domain.Dialect) *dialectReader {
	return &dialectReader{
		br:        bufio.NewReader(r),
		delimiter: d.Delimiter,
		enclosure: d.Enclosure,
	}
}

// Read returns the next record, skipping blank lines
func (r *dialectReader) Read() ([]string, error) {
	for {
		record, blank, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if !blank {
			return record, nil
		}
	}
}

func (r *dialectReader) readRecord() (record []string, blank bool, err error) {
	var (
		field      strings.Builder
		inQuotes   bool
		fieldStart = true
		quoted     bool
		sawAny     bool
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
		fieldStart = true
	}

	for {
		ch, _, err := r.br.ReadRune()
		if err == io.EOF {
			if !sawAny {
				return nil, false, io.EOF
			}
			endField()
			return record, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		sawAny = true

		if inQuotes {
			if ch != r.enclosure {
				field.WriteRune(ch)
				continue
			}
			next, _, err := r.br.ReadRune()
			if err == nil && next == r.enclosure {
				field.WriteRune(r.enclosure)
				continue
			}
			if err == nil {
				_ = r.br.UnreadRune()
			}
			inQuotes = false
			continue
		}

		switch {
		case ch == r.enclosure && fieldStart:
			inQuotes, quoted, fieldStart = true, true, false
		case ch == r.delimiter:
			endField()
		case ch == '\n' || ch == '\r':
			if ch == '\r' {
				if next, _, err := r.br.ReadRune(); err == nil && next != '\n' {
					_ = r.br.UnreadRune()
				}
			}
			isBlank := len(record) == 0 && field.Len() == 0 && !quoted
			endField()
			return record, isBlank, nil
		default:
			field.WriteRune(ch)
			fieldStart = false
		}
	}
}

// dialectWriter writes delimited text quoted with an arbitrary enclosure
type dialectWriter struct {
	bw        *bufio.Writer
	delimiter rune
	enclosure rune
	err       error
}

func newDialectWriter(w io.Writer, d domain.Dialect) *dialectWriter {
	return &dialectWriter{
		bw:        bufio.NewWriter(w),
		delimiter: d.Delimiter,
		enclosure: d.Enclosure,
	}
}

func (w *dialectWriter) Write(record []string) error {
	if w.err != nil {
		return w.err
	}
	for i, field := range record {
		if i > 0 {
			w.bw.WriteRune(w.delimiter)
		}
		if !w.needsQuotes(field) {
			w.bw.WriteString(field)
			continue
		}
		w.bw.WriteRune(w.enclosure)
		for _, ch := range field {
			if ch == w.enclosure {
				w.bw.WriteRune(w.enclosure)
			}
			w.bw.WriteRune(ch)
		}
		w.bw.WriteRune(w.enclosure)
	}
	_, w.err = w.bw.WriteRune('\n')
	return w.err
}

func (w *dialectWriter) needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsRune(field, w.delimiter) || strings.ContainsRune(field, w.enclosure) ||
		strings.ContainsAny(field, "\r\n") {
		return true
	}
	return field[0] == ' ' || field[0] == '\t'
}

func (w *dialectWriter) Flush() {
	if err := w.bw.Flush(); err != nil && w.err == nil {
		w.err = err
	}
}

func (w *dialectWriter) Error() error {
	return w.err
}
