// Package codec reads and writes the byte-level spreadsheet formats.
//
// Every format exposes the same two halves. A Reader walks the sheets of a
// file in order and each sheet streams its rows; a Writer appends rows to a
// current sheet, can name it, and for workbook formats can add a new sheet
// and make it current. Readers never yield rows without cells.
//
//	r, err := codec.OpenReader(files.TypeXLSX, "in.xlsx", domain.DefaultDialect())
//	...
//	defer r.Close()
//	for {
//	    sheet, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package codec
