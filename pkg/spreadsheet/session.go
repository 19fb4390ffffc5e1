package spreadsheet

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sheetio/internal/dataprocessing"
	"sheetio/internal/infrastructure"
	"sheetio/pkg/contracts/domain"
)

// Filter is the import projection; see dataprocessing.Filter
type Filter = dataprocessing.Filter

// Mapper is the export projection; see dataprocessing.Mapper
type Mapper = dataprocessing.Mapper

// UnsupportedPolicy decides how values without a cell form are written
type UnsupportedPolicy = dataprocessing.UnsupportedPolicy

const (
	DropUnsupported  = dataprocessing.DropUnsupported
	BlankUnsupported = dataprocessing.BlankUnsupported
)

// rowCheckInterval is how many rows are read or written between context
// checks
const rowCheckInterval = 1000

// Telemetry carries the tracer and metrics a session reports to
type Telemetry struct {
	Tracer  trace.Tracer
	Metrics *infrastructure.Metrics
}

// Session is one configured conversion. Settings persist across calls;
// the payload is only read by exports.
type Session struct {
	withHeader  bool
	sheet       int
	dialect     domain.Dialect
	headerStyle *domain.Style
	policy      UnsupportedPolicy
	payload     domain.SheetCollection

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.Metrics
}

// New returns a session reading and writing a header row, importing the
// first sheet and using the default CSV dialect
func New() *Session {
	return &Session{
		withHeader: true,
		sheet:      1,
		dialect:    domain.DefaultDialect(),
		policy:     DropUnsupported,
		logger:     infrastructure.WithComponent(nil, "spreadsheet"),
		tracer:     otel.Tracer(infrastructure.InstrumentationName),
	}
}

// Sheet selects the 1-based sheet Import reads
func (s *Session) Sheet(n int) *Session {
	s.sheet = n
	return s
}

// WithHeaders toggles the header row on import and export
func (s *Session) WithHeaders(on bool) *Session {
	s.withHeader = on
	return s
}

// WithoutHeaders reads and writes rows positionally
func (s *Session) WithoutHeaders() *Session {
	return s.WithHeaders(false)
}

// ConfigureCSV adjusts the CSV dialect. Options apply on top of the
// current dialect, so fields not named keep their value; the byte order
// mark stays on unless WithBOM(false) is passed.
func (s *Session) ConfigureCSV(opts ...domain.DialectOption) *Session {
	s.dialect = s.dialect.Apply(opts...)
	return s
}

// Dialect replaces the CSV dialect
func (s *Session) Dialect(d domain.Dialect) *Session {
	s.dialect = d
	return s
}

// HeaderStyle styles the header row of XLSX and ODS exports. nil restores
// the default look.
func (s *Session) HeaderStyle(style *domain.Style) *Session {
	if style == nil {
		s.headerStyle = nil
		return s
	}
	copied := *style
	s.headerStyle = &copied
	return s
}

// Unsupported sets the policy for values with no cell form
func (s *Session) Unsupported(p UnsupportedPolicy) *Session {
	s.policy = p
	return s
}

// Data sets a single record set as the export payload
func (s *Session) Data(rs domain.RecordSet) *Session {
	s.payload = domain.Single(rs)
	return s
}

// Sheets sets a workbook as the export payload, one entry per sheet
func (s *Session) Sheets(sc domain.SheetCollection) *Session {
	s.payload = sc
	return s
}

// Logger replaces the session logger
func (s *Session) Logger(l *slog.Logger) *Session {
	if l != nil {
		s.logger = l.With(slog.String("component", "spreadsheet"))
	}
	return s
}

// Telemetry routes spans and metrics to t. Zero fields keep the defaults.
func (s *Session) Telemetry(t Telemetry) *Session {
	if t.Tracer != nil {
		s.tracer = t.Tracer
	}
	if t.Metrics != nil {
		s.metrics = t.Metrics
	}
	return s
}
