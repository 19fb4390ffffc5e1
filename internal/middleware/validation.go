package middleware

import (
	"mime"
	"net/http"

	apperrors "sheetio/internal/errors"
)

// BodyLimit caps request bodies at limit bytes. Reads past the limit fail
// with *http.MaxBytesError, which the error handler maps to 413.
func BodyLimit(limit int64, problems *apperrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				problems.HandleError(w, r, &http.MaxBytesError{Limit: limit})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeValidator rejects bodies whose media type is not one of
// contentTypes
func ContentTypeValidator(problems *apperrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				problems.HandleError(w, r, apperrors.MissingParameter("Content-Type"))
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil {
				problems.HandleError(w, r, apperrors.InvalidRequestWithError(err))
				return
			}
			for _, allowed := range contentTypes {
				if mediaType == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			problems.HandleError(w, r, apperrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": mediaType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}
