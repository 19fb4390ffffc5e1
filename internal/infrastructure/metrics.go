package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the conversion and HTTP instruments
type Metrics struct {
	Conversions        metric.Int64Counter
	ConversionErrors   metric.Int64Counter
	ConversionDuration metric.Float64Histogram
	RowsRead           metric.Int64Counter
	RowsWritten        metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	conversions, err := meter.Int64Counter(
		"sheetio_conversions_total",
		metric.WithDescription("Total number of import and export conversions"),
	)
	if err != nil {
		return nil, err
	}

	conversionErrors, err := meter.Int64Counter(
		"sheetio_conversion_errors_total",
		metric.WithDescription("Total number of failed conversions"),
	)
	if err != nil {
		return nil, err
	}

	conversionDuration, err := meter.Float64Histogram(
		"sheetio_conversion_duration_seconds",
		metric.WithDescription("Conversion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsRead, err := meter.Int64Counter(
		"sheetio_rows_read_total",
		metric.WithDescription("Total number of records produced by imports"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"sheetio_rows_written_total",
		metric.WithDescription("Total number of rows written by exports, header rows included"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Conversions:        conversions,
		ConversionErrors:   conversionErrors,
		ConversionDuration: conversionDuration,
		RowsRead:           rowsRead,
		RowsWritten:        rowsWritten,

		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
	}, nil
}

// RecordConversion records one finished import or export. direction is
// "import" or "export"; rows counts records read or rows written.
func (m *Metrics) RecordConversion(ctx context.Context, direction, format string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("direction", direction),
		attribute.String("format", format),
	}

	status := attribute.String("status", "success")
	if err != nil {
		status = attribute.String("status", "failure")
		m.ConversionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	m.Conversions.Add(ctx, 1, metric.WithAttributes(append(attrs, status)...))
	m.ConversionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(append(attrs, status)...))

	if direction == "import" {
		m.RowsRead.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
	} else {
		m.RowsWritten.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
	}
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
