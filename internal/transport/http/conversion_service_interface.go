package http

import (
	"context"
	"io"

	"sheetio/internal/services"
)

// ConversionServiceInterface is the part of services.ConversionService the
// handlers use
type ConversionServiceInterface interface {
	Export(ctx context.Context, req *services.ExportRequest, w io.Writer) error
	Import(ctx context.Context, req *services.ImportRequest, content io.Reader) (*services.ImportResult, error)
	MaxUploadBytes() int64
}
