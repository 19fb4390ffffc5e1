package files

import (
	"path/filepath"
	"strings"
)

// FileType identifies a spreadsheet format
type FileType string

const (
	TypeCSV  FileType = "csv"
	TypeODS  FileType = "ods"
	TypeXLSX FileType = "xlsx"
)

// ResolveType derives the file type from the end of path. The suffix is
// matched without a dot and case-sensitively; anything that is not csv or
// ods is treated as an XLSX workbook.
func ResolveType(path string) FileType {
	switch {
	case strings.HasSuffix(path, string(TypeCSV)):
		return TypeCSV
	case strings.HasSuffix(path, string(TypeODS)):
		return TypeODS
	default:
		return TypeXLSX
	}
}

// ContentType returns the MIME type used when streaming a file of type t
func (t FileType) ContentType() string {
	switch t {
	case TypeCSV:
		return "text/csv"
	case TypeODS:
		return "application/vnd.oasis.opendocument.spreadsheet"
	case TypeXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether t is one of the known types
func (t FileType) Valid() bool {
	return t == TypeCSV || t == TypeODS || t == TypeXLSX
}

// ResolvePath returns the absolute, symlink-free form of path, or path
// itself when it cannot be resolved.
func ResolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
