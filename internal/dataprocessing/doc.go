// Package dataprocessing holds the record/row transforms that sit between
// the spreadsheet codecs and in-memory record sets.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Normalizer: coerces a record set to string cells before writing
// 2. Reconciler: keys the rows of a sheet by its header row on import
// 3. Projection: the Filter (import) and Mapper (export) callbacks
//
// # Usage
//
// Reconciling a sheet:
//
//	rec := dataprocessing.NewReconciler(true, dataprocessing.Pick("name", "age"))
//	for _, row := range rows {
//	    record, ok, err := rec.Push(row)
//	    if err != nil {
//	        return err
//	    }
//	    if ok {
//	        out = append(out, record)
//	    }
//	}
//
// Preparing a record set for export:
//
//	mapped, err := dataprocessing.MapAll(records, mapper)
//	if err != nil {
//	    return err
//	}
//	normalized, stats := dataprocessing.Normalize(mapped, dataprocessing.DropUnsupported)
//
// # Data Flow
//
//	Export: RecordSet → Mapper → Normalize → header + body rows → codec writer
//	Import: codec reader → Reconciler → Filter → RecordSet
//
// Filters drop rows; mappers never change the row count.
package dataprocessing
