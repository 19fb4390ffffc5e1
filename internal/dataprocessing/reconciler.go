package dataprocessing

import (
	"sheetio/pkg/contracts/domain"
)

// ReconcilerState is the position of a Reconciler in a sheet's row stream
type ReconcilerState int

const (
	AwaitingHeader ReconcilerState = iota
	Streaming
)

func (s ReconcilerState) String() string {
	if s == AwaitingHeader {
		return "awaiting_header"
	}
	return "streaming"
}

// Reconciler turns the rows of one sheet into records. In header mode the
// first row names the columns; later rows are padded with nil or
// truncated to the header length. Without a header each row becomes a
// positional record. Malformed rows are reconciled, never rejected.
type Reconciler struct {
	withHeader bool
	filter     Filter
	state      ReconcilerState
	header     []string

	padded    int
	truncated int
}

// NewReconciler starts a reconciler for a new sheet
func NewReconciler(withHeader bool, filter Filter) *Reconciler {
	state := Streaming
	if withHeader {
		state = AwaitingHeader
	}
	return &Reconciler{withHeader: withHeader, filter: filter, state: state}
}

// State reports where the reconciler is in the row stream
func (r *Reconciler) State() ReconcilerState { return r.state }

// Header returns the captured column names, or nil before the header row
// or in headerless mode
func (r *Reconciler) Header() []string { return r.header }

// Adjusted reports how many rows were padded and truncated so far
func (r *Reconciler) Adjusted() (padded, truncated int) {
	return r.padded, r.truncated
}

// Push feeds the next row. It returns the record to keep, or ok=false for
// the header row and for rows the filter dropped.
func (r *Reconciler) Push(row []domain.Value) (record domain.Record, ok bool, err error) {
	if r.state == AwaitingHeader {
		r.header = make([]string, len(row))
		for i, cell := range row {
			r.header[i], _ = domain.FormatValue(cell)
		}
		r.state = Streaming
		return nil, false, nil
	}

	if r.withHeader {
		record = r.zip(row)
	} else {
		record = domain.Positional(row...)
	}
	return r.filter.Apply(record)
}

// zip keys row by the header. Repeated header names keep their first
// position and the last value.
func (r *Reconciler) zip(row []domain.Value) domain.Record {
	n := len(r.header)
	switch {
	case len(row) < n:
		r.padded++
	case len(row) > n:
		r.truncated++
	}

	record := make(domain.Record, 0, n)
	for i, key := range r.header {
		var v domain.Value
		if i < len(row) {
			v = row[i]
		}
		record.Set(key, v)
	}
	return record
}
