package dataprocessing

import (
	"sheetio/pkg/contracts/domain"
)

// UnsupportedPolicy decides what happens to a value that has no cell form
// when a record set is coerced to strings
type UnsupportedPolicy int

const (
	// DropUnsupported removes the field from its row. The row can then
	// hold fewer values than the header.
	DropUnsupported UnsupportedPolicy = iota
	// BlankUnsupported keeps the field's position with an empty string
	BlankUnsupported
)

func (p UnsupportedPolicy) String() string {
	switch p {
	case DropUnsupported:
		return "drop"
	case BlankUnsupported:
		return "blank"
	default:
		return "unknown"
	}
}

// ParseUnsupportedPolicy maps "drop" and "blank" to their policy
func ParseUnsupportedPolicy(s string) (UnsupportedPolicy, bool) {
	switch s {
	case "", "drop":
		return DropUnsupported, true
	case "blank":
		return BlankUnsupported, true
	}
	return DropUnsupported, false
}

// NormalizeStats counts what Normalize changed
type NormalizeStats struct {
	Coerced bool
	Dropped int
	Blanked int
}

// Normalize prepares a record set for writing. Only the first record is
// inspected: when all of its values are strings the set is returned as
// is. Otherwise every scalar in every record becomes its string form and
// unsupported values are handled by policy. The input is never modified.
func Normalize(rs domain.RecordSet, policy UnsupportedPolicy) (domain.RecordSet, NormalizeStats) {
	var stats NormalizeStats
	if len(rs) == 0 || allStrings(rs[0]) {
		return rs, stats
	}

	stats.Coerced = true
	out := make(domain.RecordSet, len(rs))
	for i, record := range rs {
		normalized := make(domain.Record, 0, len(record))
		for _, field := range record {
			text, ok := domain.FormatValue(field.Value)
			if !ok {
				if policy == DropUnsupported {
					stats.Dropped++
					continue
				}
				stats.Blanked++
				text = ""
			}
			normalized = append(normalized, domain.Field{Key: field.Key, Value: text})
		}
		out[i] = normalized
	}
	return out, stats
}

func allStrings(r domain.Record) bool {
	for _, f := range r {
		if _, ok := f.Value.(string); !ok {
			return false
		}
	}
	return true
}
