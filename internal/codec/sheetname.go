package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sheetio/internal/config"
	apperrors "sheetio/internal/errors"
)

const invalidSheetNameChars = `:\/?*[]`

// validateSheetName applies the worksheet naming rules shared by Excel and
// LibreOffice
func validateSheetName(name string) error {
	invalid := func(reason string) error {
		return apperrors.NewConfigError(fmt.Sprintf("invalid sheet name %q: %s", name, reason), nil).
			WithContext("sheet_name", name)
	}

	switch {
	case strings.TrimSpace(name) == "":
		return invalid("name is empty")
	case utf8.RuneCountInString(name) > config.MaxSheetNameLength:
		return invalid(fmt.Sprintf("longer than %d characters", config.MaxSheetNameLength))
	case strings.ContainsAny(name, invalidSheetNameChars):
		return invalid("contains one of " + invalidSheetNameChars)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return invalid("starts or ends with an apostrophe")
	}
	return nil
}
