// Package http implements the HTTP handlers of the conversion server.
// Handlers stay thin: they parse the request, call a service and render
// the result or an RFC 7807 problem.
//
// # Routes
//
//	GET  /healthz                   liveness
//	GET  /readyz                    readiness of the working directories
//	GET  /metrics                   Prometheus scrape endpoint
//	POST /api/v1/export/{filename}  JSON records in, spreadsheet file out
//	POST /api/v1/import             multipart upload in, JSON records out
//
// # Responses
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "data": {...}}
//
// Errors go through errors.ErrorHandler and are rendered as
// application/problem+json.
package http
