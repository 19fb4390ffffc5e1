package codec

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "sheetio/internal/errors"
	"sheetio/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lookupEncoding resolves an encoding label such as "UTF-8", "latin1" or
// "windows-1256"
func lookupEncoding(name string) (encoding.Encoding, string, error) {
	label := strings.TrimSpace(name)
	if label == "" {
		label = "utf-8"
	}

	if enc, err := htmlindex.Get(label); err == nil {
		canonical, _ := htmlindex.Name(enc)
		return enc, canonical, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, "", apperrors.NewConfigError(fmt.Sprintf("unknown text encoding %q", name), err)
	}
	canonical, _ := ianaindex.IANA.Name(enc)
	return enc, strings.ToLower(canonical), nil
}

func isUTF8(canonical string) bool {
	return canonical == "utf-8"
}

// unicodeEncoding reports whether a byte order mark is meaningful for the encoding
func unicodeEncoding(canonical string) bool {
	return strings.HasPrefix(canonical, "utf-")
}

// decodingReader converts r to UTF-8. A leading byte order mark, in any
// Unicode form, is consumed and takes precedence over the named encoding.
func decodingReader(r io.Reader, name string) (io.Reader, error) {
	enc, _, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// encodingWriter converts UTF-8 written to the result into the named
// encoding. The returned closer flushes pending bytes and must be called
// before the underlying writer is closed.
func encodingWriter(w io.Writer, name string, bom bool) (io.Writer, io.Closer, error) {
	enc, canonical, err := lookupEncoding(name)
	if err != nil {
		return nil, nil, err
	}

	if isUTF8(canonical) {
		if bom {
			if _, err := w.Write(utf8BOM); err != nil {
				return nil, nil, apperrors.NewIOError("failed to write BOM", err)
			}
		}
		return w, nopCloser{}, nil
	}

	tw := transform.NewWriter(w, enc.NewEncoder())
	if bom && unicodeEncoding(canonical) {
		if _, err := io.WriteString(tw, "\uFEFF"); err != nil {
			return nil, nil, apperrors.NewIOError("failed to write BOM", err)
		}
	}
	return tw, tw, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// validateDialect rejects dialects the csv codec cannot honour
func validateDialect(d domain.Dialect) error {
	bad := func(msg string) error {
		return apperrors.NewConfigError(msg, nil).
			WithContext("delimiter", string(d.Delimiter)).
			WithContext("enclosure", string(d.Enclosure))
	}

	switch {
	case d.Delimiter == 0 || !utf8.ValidRune(d.Delimiter) || d.Delimiter == utf8.RuneError:
		return bad("csv delimiter must be a valid character")
	case d.Enclosure == 0 || !utf8.ValidRune(d.Enclosure) || d.Enclosure == utf8.RuneError:
		return bad("csv enclosure must be a valid character")
	case d.Delimiter == d.Enclosure:
		return bad("csv delimiter and enclosure must differ")
	case isLineBreak(d.Delimiter) || isLineBreak(d.Enclosure):
		return bad("csv delimiter and enclosure cannot be line breaks")
	}

	_, _, err := lookupEncoding(d.Encoding)
	return err
}

func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n'
}
