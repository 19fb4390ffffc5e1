package domain

// Dialect describes how delimited text is read and written
type Dialect struct {
	Delimiter rune   `json:"delimiter" yaml:"delimiter"`
	Enclosure rune   `json:"enclosure" yaml:"enclosure"`
	Encoding  string `json:"encoding" yaml:"encoding"`
	BOM       bool   `json:"bom" yaml:"bom"`
}

// DefaultDialect is comma separated, double-quoted UTF-8 with a byte order mark
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter: ',',
		Enclosure: '"',
		Encoding:  "UTF-8",
		BOM:       true,
	}
}

// DialectOption adjusts a dialect
type DialectOption func(*Dialect)

// WithDelimiter sets the field separator
func WithDelimiter(r rune) DialectOption {
	return func(d *Dialect) { d.Delimiter = r }
}

// WithEnclosure sets the quote character
func WithEnclosure(r rune) DialectOption {
	return func(d *Dialect) { d.Enclosure = r }
}

// WithEncoding sets the text encoding by name, e.g. "UTF-8" or "windows-1252"
func WithEncoding(name string) DialectOption {
	return func(d *Dialect) { d.Encoding = name }
}

// WithBOM toggles byte order mark emission
func WithBOM(on bool) DialectOption {
	return func(d *Dialect) { d.BOM = on }
}

// Apply returns a copy of d with opts applied
func (d Dialect) Apply(opts ...DialectOption) Dialect {
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
