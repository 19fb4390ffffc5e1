package services

import (
	"sheetio/internal/dataprocessing"
	"sheetio/pkg/contracts/domain"
)

// CSVOptions overrides the configured CSV dialect. Empty fields keep the
// default.
type CSVOptions struct {
	Delimiter string `json:"delimiter,omitempty" validate:"omitempty,singlechar"`
	Enclosure string `json:"enclosure,omitempty" validate:"omitempty,singlechar"`
	Encoding  string `json:"encoding,omitempty" validate:"omitempty,max=64"`
	BOM       *bool  `json:"bom,omitempty"`
}

func (o *CSVOptions) options() []domain.DialectOption {
	if o == nil {
		return nil
	}
	var opts []domain.DialectOption
	if o.Delimiter != "" {
		opts = append(opts, domain.WithDelimiter([]rune(o.Delimiter)[0]))
	}
	if o.Enclosure != "" {
		opts = append(opts, domain.WithEnclosure([]rune(o.Enclosure)[0]))
	}
	if o.Encoding != "" {
		opts = append(opts, domain.WithEncoding(o.Encoding))
	}
	if o.BOM != nil {
		opts = append(opts, domain.WithBOM(*o.BOM))
	}
	return opts
}

// StyleOptions describes the header row look of XLSX and ODS exports
type StyleOptions struct {
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	FontColor string  `json:"font_color,omitempty" validate:"omitempty,cellcolor"`
	FillColor string  `json:"fill_color,omitempty" validate:"omitempty,cellcolor"`
	FontSize  float64 `json:"font_size,omitempty" validate:"gte=0,lte=409"`
}

func (o *StyleOptions) style() *domain.Style {
	if o == nil {
		return nil
	}
	s := domain.NewStyle()
	if o.Bold {
		s.SetBold()
	}
	if o.Italic {
		s.SetItalic()
	}
	if o.FontColor != "" {
		s.SetFontColor(o.FontColor)
	}
	if o.FillColor != "" {
		s.SetFillColor(o.FillColor)
	}
	if o.FontSize > 0 {
		s.SetFontSize(o.FontSize)
	}
	return s
}

// SessionOptions are the per-request overrides of the configured session
// defaults
type SessionOptions struct {
	WithHeader  *bool         `json:"with_header,omitempty"`
	Sheet       int           `json:"sheet,omitempty" validate:"gte=0"`
	CSV         *CSVOptions   `json:"csv,omitempty"`
	HeaderStyle *StyleOptions `json:"header_style,omitempty"`
	Unsupported string        `json:"unsupported,omitempty" validate:"omitempty,oneof=drop blank"`
}

func (o SessionOptions) policy() dataprocessing.UnsupportedPolicy {
	p, _ := dataprocessing.ParseUnsupportedPolicy(o.Unsupported)
	return p
}

// SheetPayload is one named sheet of records
type SheetPayload struct {
	Name    string           `json:"name,omitempty" validate:"omitempty,sheetname"`
	Records domain.RecordSet `json:"records"`
}

// ExportRequest asks for the sheets to be written as Filename. The
// extension of Filename picks the format.
type ExportRequest struct {
	Filename string `json:"-" validate:"required,filename"`
	SessionOptions
	Sheets []SheetPayload `json:"sheets" validate:"required,min=1,dive"`
}

// ImportRequest describes an uploaded file to read
type ImportRequest struct {
	Filename  string `json:"filename" validate:"required,filename"`
	AllSheets bool   `json:"all_sheets"`
	SessionOptions
}

// ImportResult is the content read from an upload or a file
type ImportResult struct {
	Filename string         `json:"filename"`
	Format   string         `json:"format"`
	Rows     int            `json:"rows"`
	Sheets   []SheetPayload `json:"sheets"`
}

// ConvertRequest converts the file at Input into Output
type ConvertRequest struct {
	Input     string `json:"input" validate:"required"`
	Output    string `json:"output" validate:"required"`
	AllSheets bool   `json:"all_sheets"`
	SessionOptions
}

// ConvertResult reports a finished conversion
type ConvertResult struct {
	Output string `json:"output"`
	Sheets int    `json:"sheets"`
	Rows   int    `json:"rows"`
}

// SheetSummary describes one sheet of an inspected file
type SheetSummary struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
}

func toPayload(sheets domain.SheetCollection) []SheetPayload {
	out := make([]SheetPayload, len(sheets))
	for i, s := range sheets {
		out[i] = SheetPayload{Name: s.Name, Records: s.Records}
	}
	return out
}

func fromPayload(sheets []SheetPayload) domain.SheetCollection {
	out := make(domain.SheetCollection, len(sheets))
	for i, s := range sheets {
		out[i] = domain.Sheet{Name: s.Name, Records: s.Records}
	}
	return out
}
