// Package files resolves spreadsheet file types from paths and manages the
// working directories the service reads uploads from and writes exports to.
//
// Type resolution matches the bare suffix of a path, case-sensitively:
//
//	files.ResolveType("report.csv")  // CSV
//	files.ResolveType("report.ods")  // ODS
//	files.ResolveType("report.xlsx") // XLSX
//	files.ResolveType("report")      // XLSX
//
// Manager stores uploads in the configured temp directory and resolves
// relative export names against the output directory.
package files
