package codec

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "sheetio/internal/errors"
	"sheetio/pkg/contracts/domain"
)

const (
	nsOffice   = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsTable    = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsText     = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	nsStyle    = "urn:oasis:names:tc:opendocument:xmlns:style:1.0"
	nsFO       = "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
	nsManifest = "urn:oasis:names:tc:opendocument:xmlns:manifest:1.0"

	odsMimeType    = "application/vnd.oasis.opendocument.spreadsheet"
	odsContentPath = "content.xml"
)

var odsDateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// odsReader streams table rows out of content.xml without loading the
// whole document
type odsReader struct {
	closer  io.Closer
	content io.ReadCloser
	dec     *xml.Decoder
	index   int
	current *odsSheet
	done    bool
}

func openODSReader(path string) (Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open ods file", err)
	}
	r, err := newODSContentReader(&zr.Reader, zr)
	if err != nil {
		zr.Close()
		return nil, err
	}
	return r, nil
}

func newODSReader(ra io.ReaderAt, size int64) (Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, apperrors.NewIOError("failed to read ods content", err)
	}
	r, err := newODSContentReader(zr, nil)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func newODSContentReader(zr *zip.Reader, closer io.Closer) (*odsReader, error) {
	for _, f := range zr.File {
		if f.Name != odsContentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, apperrors.NewIOError("failed to open ods content.xml", err)
		}
		return &odsReader{closer: closer, content: rc, dec: xml.NewDecoder(rc)}, nil
	}
	return nil, apperrors.NewIOError("ods file has no content.xml", nil)
}

func (r *odsReader) Next() (SheetStream, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.current != nil && !r.current.done {
		if err := r.dec.Skip(); err != nil {
			return nil, apperrors.NewIOError("failed to skip ods table", err)
		}
	}
	r.current = nil

	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, apperrors.NewIOError("malformed ods content", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == nsTable && t.Name.Local == "table" {
				r.index++
				r.current = &odsSheet{
					dec:   r.dec,
					index: r.index,
					name:  attr(t, nsTable, "name"),
				}
				return r.current, nil
			}
		case xml.EndElement:
			if t.Name.Space == nsOffice && t.Name.Local == "spreadsheet" {
				r.done = true
				return nil, io.EOF
			}
		}
	}
}

func (r *odsReader) Close() error {
	var err error
	if r.content != nil {
		err = r.content.Close()
		r.content = nil
	}
	if r.closer != nil {
		if closeErr := r.closer.Close(); err == nil {
			err = closeErr
		}
		r.closer = nil
	}
	return ioError("failed to close ods file", err)
}

type odsSheet struct {
	dec   *xml.Decoder
	index int
	name  string
	done  bool

	// repeat of a non-empty row still owed to the caller
	pending []domain.Value
	repeat  int
}

func (s *odsSheet) Index() int   { return s.index }
func (s *odsSheet) Name() string { return s.name }

func (s *odsSheet) NextRow() ([]domain.Value, error) {
	if s.repeat > 0 {
		s.repeat--
		return cloneValues(s.pending), nil
	}
	if s.done {
		return nil, io.EOF
	}

	for {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, apperrors.NewIOError(fmt.Sprintf("malformed ods table %q", s.name), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsTable {
				if err := s.dec.Skip(); err != nil {
					return nil, apperrors.NewIOError("malformed ods content", err)
				}
				continue
			}
			switch t.Name.Local {
			case "table-row":
				values, err := readODSRow(s.dec)
				if err != nil {
					return nil, err
				}
				if len(values) == 0 {
					continue
				}
				if n := repeated(t, "number-rows-repeated"); n > 1 {
					s.pending, s.repeat = cloneValues(values), n-1
				}
				return values, nil
			case "table-header-rows", "table-rows", "table-row-group":
				// rows nested in grouping elements are read in place
			default:
				if err := s.dec.Skip(); err != nil {
					return nil, apperrors.NewIOError("malformed ods content", err)
				}
			}
		case xml.EndElement:
			if t.Name.Space == nsTable && t.Name.Local == "table" {
				s.done = true
				return nil, io.EOF
			}
		}
	}
}

// readODSRow consumes one table:table-row. Empty cells between values
// come back as nil; trailing empty cells are dropped.
func readODSRow(dec *xml.Decoder) ([]domain.Value, error) {
	var (
		values       []domain.Value
		pendingEmpty int
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, apperrors.NewIOError("malformed ods row", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsTable || (t.Name.Local != "table-cell" && t.Name.Local != "covered-table-cell") {
				if err := dec.Skip(); err != nil {
					return nil, apperrors.NewIOError("malformed ods row", err)
				}
				continue
			}

			value, err := readODSCell(dec, t)
			if err != nil {
				return nil, err
			}
			n := repeated(t, "number-columns-repeated")
			if value == nil {
				pendingEmpty += n
				continue
			}
			for ; pendingEmpty > 0; pendingEmpty-- {
				values = append(values, nil)
			}
			for i := 0; i < n; i++ {
				values = append(values, value)
			}
		case xml.EndElement:
			if t.Name.Local == "table-row" {
				return values, nil
			}
		}
	}
}

func readODSCell(dec *xml.Decoder, start xml.StartElement) (domain.Value, error) {
	var paragraphs []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, apperrors.NewIOError("malformed ods cell", err)
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name == start.Name {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Space == nsText && (se.Name.Local == "p" || se.Name.Local == "h") {
			text, err := readODSText(dec, se)
			if err != nil {
				return nil, err
			}
			paragraphs = append(paragraphs, text)
			continue
		}
		if err := dec.Skip(); err != nil {
			return nil, apperrors.NewIOError("malformed ods cell", err)
		}
	}

	text := strings.Join(paragraphs, "\n")
	valueType := attr(start, nsOffice, "value-type")

	switch valueType {
	case "float", "percentage", "currency":
		if f, err := strconv.ParseFloat(attr(start, nsOffice, "value"), 64); err == nil {
			return f, nil
		}
	case "date":
		if t, ok := parseODSDate(attr(start, nsOffice, "date-value")); ok {
			return t, nil
		}
	case "boolean":
		if b, err := strconv.ParseBool(attr(start, nsOffice, "boolean-value")); err == nil {
			return b, nil
		}
	case "string":
		if v := attr(start, nsOffice, "string-value"); v != "" && text == "" {
			return v, nil
		}
		return text, nil
	}

	if valueType == "" && paragraphs == nil {
		return nil, nil
	}
	return text, nil
}

// readODSText flattens a paragraph, expanding spacing elements and
// descending into spans and links
func readODSText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", apperrors.NewIOError("malformed ods text", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name == start.Name {
				return b.String(), nil
			}
		case xml.StartElement:
			if t.Name.Space == nsOffice && t.Name.Local == "annotation" {
				if err := dec.Skip(); err != nil {
					return "", apperrors.NewIOError("malformed ods text", err)
				}
				continue
			}
			if t.Name.Space != nsText {
				continue
			}
			switch t.Name.Local {
			case "s":
				n := 1
				if c, err := strconv.Atoi(attr(t, nsText, "c")); err == nil && c > 0 {
					n = c
				}
				b.WriteString(strings.Repeat(" ", n))
			case "tab":
				b.WriteByte('\t')
			case "line-break":
				b.WriteByte('\n')
			}
		}
	}
}

func parseODSDate(s string) (time.Time, bool) {
	for _, layout := range odsDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func attr(e xml.StartElement, space, local string) string {
	for _, a := range e.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func repeated(e xml.StartElement, local string) int {
	n, err := strconv.Atoi(attr(e, nsTable, local))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func cloneValues(values []domain.Value) []domain.Value {
	out := make([]domain.Value, len(values))
	copy(out, values)
	return out
}
