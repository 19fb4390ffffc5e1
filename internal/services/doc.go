// Package services holds the conversion use cases shared by the HTTP
// server and the command line tool.
//
// # Services
//
//  - ConversionService: builds spreadsheet sessions from configuration
//    defaults and request overrides, stages uploads, and runs imports,
//    exports and file-to-file conversions
//  - HealthService: liveness and readiness of the working directories
//
// # Requests
//
// Request types carry `validate` tags checked by
// validation.RequestValidator before any file is touched. Failures come
// back as a VALIDATION_FAILED API error that the HTTP layer renders as
// problem details.
//
// # Error Handling
//
// Errors from pkg/spreadsheet are wrapped with the operation and file
// name and keep their kind, so errors.Is against the spreadsheet
// sentinels still works:
//
//	_, err := svc.Convert(ctx, &services.ConvertRequest{Input: in, Output: out})
//	if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
//      ...
//	}
package services
