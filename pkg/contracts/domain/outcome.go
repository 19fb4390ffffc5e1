package domain

// Outcome is the result of an import projection: either a record to keep
// or a signal to drop the row.
type Outcome struct {
	record Record
	keep   bool
}

// Keep retains r in the imported set
func Keep(r Record) Outcome {
	return Outcome{record: r, keep: true}
}

// Drop excludes the row from the imported set
func Drop() Outcome {
	return Outcome{}
}

// Record returns the kept record and whether the row is kept
func (o Outcome) Record() (Record, bool) {
	return o.record, o.keep
}
