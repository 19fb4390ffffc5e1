package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "sheetio/internal/errors"
	"sheetio/internal/files"
	"sheetio/internal/infrastructure"
	"sheetio/internal/middleware"
	"sheetio/internal/services"
)

// multipartMemory is how much of an upload is held in memory before the
// rest spills to disk
const multipartMemory = 8 << 20

// Response is the success envelope of JSON endpoints
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// ConversionHandler serves spreadsheet import and export
type ConversionHandler struct {
	service      ConversionServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service ConversionServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ConversionHandler {
	return &ConversionHandler{
		service:      service,
		logger:       infrastructure.WithComponent(logger, "conversion_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the conversion routes
func (h *ConversionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).
		Post("/export/{filename}", h.Export)
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
		Post("/import", h.Import)
	return r
}

// Export handles POST /api/v1/export/{filename}. The file is built in
// memory so that a failed conversion still gets a problem response.
func (h *ConversionHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := &services.ExportRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		h.errorHandler.HandleError(w, r, decodeError(err))
		return
	}
	req.Filename = chi.URLParam(r, "filename")

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), req, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Export served",
		slog.String("filename", req.Filename),
		slog.Int("sheets", len(req.Sheets)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", files.ResolveType(req.Filename).ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": req.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "Export response interrupted",
			slog.String("filename", req.Filename),
			slog.String("error", err.Error()))
	}
}

// Import handles POST /api/v1/import with a multipart "file" part and the
// optional form fields sheet, all_sheets, with_header, delimiter,
// enclosure and encoding
func (h *ConversionHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.errorHandler.HandleError(w, r, decodeError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.MissingParameter("file"))
		return
	}
	defer file.Close()

	req, err := importRequestFromForm(r, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Import(r.Context(), req, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Status: "success", Data: result})
}

func importRequestFromForm(r *http.Request, filename string) (*services.ImportRequest, error) {
	req := &services.ImportRequest{Filename: filename}
	var invalid []apperrors.ValidationError

	if v := r.FormValue("sheet"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			invalid = append(invalid, apperrors.ValidationError{Field: "sheet", Message: "sheet must be an integer"})
		}
		req.Sheet = n
	}
	if v := r.FormValue("all_sheets"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, apperrors.ValidationError{Field: "all_sheets", Message: "all_sheets must be a boolean"})
		}
		req.AllSheets = b
	}
	if v := r.FormValue("with_header"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, apperrors.ValidationError{Field: "with_header", Message: "with_header must be a boolean"})
		}
		req.WithHeader = &b
	}

	csv := services.CSVOptions{
		Delimiter: r.FormValue("delimiter"),
		Enclosure: r.FormValue("enclosure"),
		Encoding:  r.FormValue("encoding"),
	}
	if csv != (services.CSVOptions{}) {
		req.CSV = &csv
	}

	if len(invalid) > 0 {
		return nil, apperrors.NewValidationErrors(invalid)
	}
	return req, nil
}

// decodeError keeps body size failures distinct from malformed input
func decodeError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return apperrors.InvalidRequestWithError(fmt.Errorf("malformed request body: %w", err))
}
