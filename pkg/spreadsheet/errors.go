package spreadsheet

import (
	apperrors "sheetio/internal/errors"
)

// Error kinds returned by Session operations. Match them with errors.Is;
// the underlying cause stays reachable through errors.As and errors.Unwrap.
var (
	// ErrUnsupportedFormat means no codec handles the file type
	ErrUnsupportedFormat error = apperrors.ErrUnsupportedFormat
	// ErrIO means a file or stream could not be opened, read or written
	ErrIO error = apperrors.ErrIO
	// ErrConfiguration means an option is invalid, such as a malformed
	// sheet name or CSV dialect
	ErrConfiguration error = apperrors.ErrConfiguration
)
