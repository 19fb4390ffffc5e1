package domain

import "strconv"

// Sheet is one named entry of a workbook
type Sheet struct {
	Name    string    `json:"name,omitempty" validate:"omitempty,max=31"`
	Records RecordSet `json:"records" validate:"dive"`
}

// SheetCollection is an ordered workbook, one entry per sheet
type SheetCollection []Sheet

// HasDisplayName reports whether the sheet name should be applied to the
// written sheet. Empty and numeric names are positional keys, not names.
func (s Sheet) HasDisplayName() bool {
	if s.Name == "" {
		return false
	}
	_, err := strconv.Atoi(s.Name)
	return err != nil
}

// Single wraps a record set as a one-entry collection
func Single(records RecordSet) SheetCollection {
	return SheetCollection{{Records: records}}
}

// Rows counts the records across every sheet
func (c SheetCollection) Rows() int {
	n := 0
	for _, s := range c {
		n += len(s.Records)
	}
	return n
}
