// Package spreadsheet imports and exports record sets as CSV, XLSX and
// ODS files.
//
// A Session holds the conversion settings and, for exports, the payload.
// Configure it with the chainable setters, then run one operation:
//
//	s := spreadsheet.New().
//	    Data(records).
//	    HeaderStyle(domain.NewStyle().SetBold())
//	path, err := s.Export(ctx, "out/report.xlsx", nil)
//
//	records, err := spreadsheet.New().Sheet(2).Import(ctx, "in.ods", nil)
//
// The file type comes from the path's suffix: "csv" and "ods" are
// recognized, anything else is written and read as XLSX.
//
// Imports key every row by the sheet's first row unless WithoutHeaders is
// set. Short rows are padded with nil and long rows truncated. An optional
// Filter can reshape or drop rows on import; an optional Mapper reshapes
// rows on export without changing their count.
//
// A Session is not safe for concurrent use.
package spreadsheet
