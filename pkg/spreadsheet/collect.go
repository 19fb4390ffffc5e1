package spreadsheet

import (
	"fmt"

	"sheetio/pkg/contracts/domain"
)

// Collect converts an imported record set into typed values. The first
// error stops the conversion and reports the failing row, counted from 1.
func Collect[T any](rs domain.RecordSet, fn func(domain.Record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rs))
	for i, r := range rs {
		v, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}
