package model

import "sort"

// Record is one row of a record set, keyed by column name.
type Record map[string]string

// RecordSet is an ordered set of columns with uniform records.
type RecordSet struct {
	Columns []string
	Records []Record
}

// NewRecordSet builds a record set from records alone. Column order is taken from the keys of
// the first record, sorted, since maps carry no order.
func NewRecordSet(records []Record) RecordSet {
	set := RecordSet{Records: records}
	if len(records) == 0 {
		return set
	}

	columns := make([]string, 0, len(records[0]))
	for k := range records[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	set.Columns = columns

	return set
}

// HasColumn reports whether the set has a column with exactly this name.
func (s RecordSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}
