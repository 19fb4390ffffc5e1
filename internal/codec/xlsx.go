package codec

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "sheetio/internal/errors"
	"sheetio/pkg/contracts/domain"
)

// xlsxReader walks the worksheets of an excelize workbook. Cells are
// returned as their formatted text, and rows are padded with blank
// strings to the width of the sheet's used range.
type xlsxReader struct {
	file    *excelize.File
	sheets  []string
	next    int
	current *xlsxSheet
}

func openXLSXReader(path string) (Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open xlsx file", err)
	}
	return &xlsxReader{file: f, sheets: f.GetSheetList()}, nil
}

func newXLSXReader(r io.Reader) (Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewIOError("failed to read xlsx content", err)
	}
	return &xlsxReader{file: f, sheets: f.GetSheetList()}, nil
}

func (r *xlsxReader) Next() (SheetStream, error) {
	if err := r.closeCurrent(); err != nil {
		return nil, err
	}
	if r.next >= len(r.sheets) {
		return nil, io.EOF
	}

	name := r.sheets[r.next]
	r.next++

	width, err := sheetWidth(r.file, name)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to measure sheet %q", name), err)
	}
	rows, err := r.file.Rows(name)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to read sheet %q", name), err)
	}
	r.current = &xlsxSheet{index: r.next, name: name, rows: rows, width: width}
	return r.current, nil
}

func (r *xlsxReader) closeCurrent() error {
	if r.current == nil {
		return nil
	}
	err := r.current.rows.Close()
	r.current = nil
	return ioError("failed to close sheet rows", err)
}

func (r *xlsxReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.closeCurrent()
	if closeErr := r.file.Close(); err == nil {
		err = ioError("failed to close xlsx file", closeErr)
	}
	r.file = nil
	return err
}

type xlsxSheet struct {
	index int
	name  string
	rows  *excelize.Rows
	width int
}

func (s *xlsxSheet) Index() int   { return s.index }
func (s *xlsxSheet) Name() string { return s.name }

func (s *xlsxSheet) NextRow() ([]domain.Value, error) {
	for s.rows.Next() {
		cols, err := s.rows.Columns()
		if err != nil {
			return nil, apperrors.NewIOError(fmt.Sprintf("failed to read row of sheet %q", s.name), err)
		}

		// Columns stops at the last non-blank cell
		if len(cols) == 0 {
			continue
		}

		values := make([]domain.Value, max(len(cols), s.width))
		for i := range values {
			values[i] = ""
		}
		for i, c := range cols {
			values[i] = c
		}
		return values, nil
	}

	if err := s.rows.Error(); err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to iterate sheet %q", s.name), err)
	}
	return nil, io.EOF
}

// sheetWidth counts the columns holding any cell element, blank strings
// included
func sheetWidth(f *excelize.File, sheet string) (int, error) {
	cols, err := f.Cols(sheet)
	if err != nil {
		return 0, err
	}
	n := 0
	for cols.Next() {
		n++
	}
	return n, nil
}

// xlsxWriter streams rows into an excelize workbook, one StreamWriter per
// sheet. The workbook is saved to path, or written to out, on Close.
type xlsxWriter struct {
	file   *excelize.File
	path   string
	out    io.Writer
	sheet  string
	rename string
	stream *excelize.StreamWriter
	row    int
	styles map[domain.Style]int
	closed bool
}

func newXLSXWriter(path string, out io.Writer) (Writer, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, apperrors.NewIOError("failed to create xlsx stream writer", err)
	}

	return &xlsxWriter{
		file:   f,
		path:   path,
		out:    out,
		sheet:  sheet,
		stream: sw,
		styles: make(map[domain.Style]int),
	}, nil
}

func (w *xlsxWriter) WriteRow(values []domain.Value, style *domain.Style) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return apperrors.NewIOError("row limit exceeded", err)
	}

	cells := make([]interface{}, len(values))
	if style != nil {
		styleID, err := w.styleID(*style)
		if err != nil {
			return err
		}
		for i, v := range values {
			cells[i] = excelize.Cell{StyleID: styleID, Value: v}
		}
	} else {
		for i, v := range values {
			cells[i] = v
		}
	}

	if err := w.stream.SetRow(cell, cells); err != nil {
		return apperrors.NewIOError(fmt.Sprintf("failed to write row %d", w.row), err)
	}
	return nil
}

// styleID registers a header style once per workbook
func (w *xlsxWriter) styleID(s domain.Style) (int, error) {
	if id, ok := w.styles[s]; ok {
		return id, nil
	}

	xs := &excelize.Style{
		Font: &excelize.Font{
			Bold:   s.Bold,
			Italic: s.Italic,
			Size:   s.FontSize,
		},
	}
	if s.FontColor != "" {
		xs.Font.Color = domain.HexColor(s.FontColor)
	}
	if s.FillColor != "" {
		xs.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{domain.HexColor(s.FillColor)},
		}
	}

	id, err := w.file.NewStyle(xs)
	if err != nil {
		return 0, apperrors.NewConfigError("invalid header style", err)
	}
	w.styles[s] = id
	return id, nil
}

// SetSheetName validates name now and applies it once the sheet's rows
// are flushed, since the stream writer is bound to the current name.
func (w *xlsxWriter) SetSheetName(name string) error {
	if err := validateSheetName(name); err != nil {
		return err
	}
	w.rename = name
	return nil
}

func (w *xlsxWriter) AddSheet() error {
	if err := w.finishSheet(); err != nil {
		return err
	}

	name := w.unusedSheetName()
	if _, err := w.file.NewSheet(name); err != nil {
		return apperrors.NewIOError("failed to add sheet", err)
	}
	sw, err := w.file.NewStreamWriter(name)
	if err != nil {
		return apperrors.NewIOError("failed to create xlsx stream writer", err)
	}

	w.sheet, w.stream, w.row = name, sw, 0
	return nil
}

func (w *xlsxWriter) SupportsSheets() bool { return true }

// finishSheet flushes the current stream and applies a pending rename
func (w *xlsxWriter) finishSheet() error {
	if w.stream != nil {
		if err := w.stream.Flush(); err != nil {
			return apperrors.NewIOError(fmt.Sprintf("failed to flush sheet %q", w.sheet), err)
		}
		w.stream = nil
	}

	if w.rename == "" || w.rename == w.sheet {
		w.rename = ""
		return nil
	}

	if idx, _ := w.file.GetSheetIndex(w.rename); idx != -1 {
		return apperrors.NewConfigError(fmt.Sprintf("duplicate sheet name %q", w.rename), nil)
	}
	if err := w.file.SetSheetName(w.sheet, w.rename); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("invalid sheet name %q", w.rename), err)
	}
	w.sheet, w.rename = w.rename, ""
	return nil
}

func (w *xlsxWriter) unusedSheetName() string {
	for n := len(w.file.GetSheetList()) + 1; ; n++ {
		name := sheetDefaultName(n)
		if idx, _ := w.file.GetSheetIndex(name); idx == -1 {
			return name
		}
	}
}

func (w *xlsxWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.file.Close()

	if err := w.finishSheet(); err != nil {
		return err
	}

	if w.out != nil {
		if err := w.file.Write(w.out); err != nil {
			return apperrors.NewIOError("failed to write xlsx content", err)
		}
		return nil
	}

	if err := w.file.SaveAs(w.path); err != nil {
		return apperrors.NewIOError("failed to save xlsx file", err)
	}
	return nil
}
