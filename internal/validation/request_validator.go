package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"sheetio/internal/config"
	apperrors "sheetio/internal/errors"
)

var cellColorPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// RequestValidator validates request structs by their `validate` tags
// and reports failures as a VALIDATION_FAILED API error
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator registers the spreadsheet-specific tags:
//
//  - filename: a bare file name, no directories or traversal
//  - sheetname: a valid worksheet name
//  - cellcolor: six hex digits with an optional leading '#'
//  - singlechar: exactly one character
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("filename", isValidFilename)
	_ = v.RegisterValidation("sheetname", isValidSheetName)
	_ = v.RegisterValidation("cellcolor", isCellColor)
	_ = v.RegisterValidation("singlechar", isSingleChar)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &RequestValidator{validate: v}
}

// Struct validates s and converts field failures into an API error
func (rv *RequestValidator) Struct(s interface{}) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InvalidRequestWithError(err)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

// fieldPath drops the top-level struct name and embedded option
// structs from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := strings.ReplaceAll(fe.Namespace(), "SessionOptions.", "")
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "filename":
		return fmt.Sprintf("%s must be a plain file name", field)
	case "sheetname":
		return fmt.Sprintf("%s must be a valid sheet name of at most %d characters", field, config.MaxSheetNameLength)
	case "cellcolor":
		return fmt.Sprintf("%s must be a hex color such as FF0000", field)
	case "singlechar":
		return fmt.Sprintf("%s must be a single character", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isValidFilename rejects directory components and traversal
func isValidFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || name == "." || len(name) > 255 {
		return false
	}
	return !strings.Contains(name, "..") && !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

func isValidSheetName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > config.MaxSheetNameLength {
		return false
	}
	if strings.ContainsAny(name, `:\/?*[]`) {
		return false
	}
	return !strings.HasPrefix(name, "'") && !strings.HasSuffix(name, "'")
}

func isCellColor(fl validator.FieldLevel) bool {
	return cellColorPattern.MatchString(fl.Field().String())
}

func isSingleChar(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) == 1
}
