package services

import (
	"errors"
	"fmt"

	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
)

// ErrNoSheets is returned by Inspect for a workbook without readable sheets
var ErrNoSheets = errors.New("no sheets found")

// uploadError maps file manager failures onto application error kinds
func uploadError(err error, limit int64) error {
	if errors.Is(err, files.ErrFileTooLarge) {
		return apperrors.NewTooLargeError(limit, err)
	}
	return apperrors.NewIOError(fmt.Sprintf("failed to store upload: %v", err), err)
}
