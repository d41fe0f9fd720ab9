package table

import (
	"strings"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
)

// Entry is one non-blank address pulled from a record.
type Entry struct {
	Record  model.Record
	Address string
	// Row is the 1-based data row the address came from.
	Row int
}

// Extraction is the result of pulling a column out of a record set.
type Extraction struct {
	Column  string
	Entries []Entry
	// Skipped counts rows whose value in the column was blank.
	Skipped int
}

// Addresses returns the extracted addresses in row order.
func (e Extraction) Addresses() []string {
	out := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		out[i] = entry.Address
	}
	return out
}

// Extract pulls the trimmed, non-blank values of column from set, preserving row order.
func Extract(set model.RecordSet, column string) (Extraction, error) {
	if len(set.Columns) == 0 && len(set.Records) > 0 {
		set = model.NewRecordSet(set.Records)
	}
	if !set.HasColumn(column) {
		available := make([]string, len(set.Columns))
		copy(available, set.Columns)
		return Extraction{}, &common.InvalidSelectionError{Column: column, Available: available}
	}

	extraction := Extraction{Column: column, Entries: make([]Entry, 0, len(set.Records))}
	for i, record := range set.Records {
		value := strings.TrimSpace(record[column])
		if value == "" {
			extraction.Skipped++
			continue
		}
		extraction.Entries = append(extraction.Entries, Entry{Address: value, Row: i + 1, Record: record})
	}

	if len(extraction.Entries) == 0 {
		return extraction, &common.EmptyInputError{Reason: "column " + column + " has no values"}
	}

	return extraction, nil
}
