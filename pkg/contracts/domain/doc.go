// Package domain holds the value types shared by the codecs, the record
// transforms and the public spreadsheet API: ordered records, record sets
// and sheets, the CSV dialect and header cell styles.
package domain
