package dataprocessing

import (
	"sheetio/pkg/contracts/domain"
)

// Filter is the import projection. It runs once per reconciled record;
// returning domain.Drop() removes the row from the result.
type Filter func(domain.Record) (domain.Outcome, error)

// Mapper is the export projection. It runs once per source record and
// always yields exactly one output record.
type Mapper func(domain.Record) (domain.Record, error)

// Apply runs f on r. A nil filter keeps every record.
func (f Filter) Apply(r domain.Record) (domain.Record, bool, error) {
	if f == nil {
		return r, true, nil
	}
	outcome, err := f(r)
	if err != nil {
		return nil, false, err
	}
	kept, ok := outcome.Record()
	return kept, ok, nil
}

// MapAll runs m over every record of rs and returns a new set of the same
// length. Callback errors are returned unchanged.
func MapAll(rs domain.RecordSet, m Mapper) (domain.RecordSet, error) {
	if m == nil {
		return rs, nil
	}
	out := make(domain.RecordSet, len(rs))
	for i, r := range rs {
		mapped, err := m(r)
		if err != nil {
			return nil, err
		}
		out[i] = mapped
	}
	return out, nil
}

// Pick returns a filter keeping only the named columns, in the given
// order. Missing columns are kept as nil.
func Pick(keys ...string) Filter {
	return func(r domain.Record) (domain.Outcome, error) {
		picked := make(domain.Record, 0, len(keys))
		for _, k := range keys {
			v, _ := r.Get(k)
			picked.Set(k, v)
		}
		return domain.Keep(picked), nil
	}
}

// Where returns a filter keeping the records for which keep is true
func Where(keep func(domain.Record) bool) Filter {
	return func(r domain.Record) (domain.Outcome, error) {
		if keep(r) {
			return domain.Keep(r), nil
		}
		return domain.Drop(), nil
	}
}
