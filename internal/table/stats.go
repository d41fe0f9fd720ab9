package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/mailvet/internal/detect"
)

// Data quality grades.
const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
	QualityPoor      = "Poor"
	QualityUnknown   = "Unknown"
)

const maxListedRows = 5

// FileStatistics summarizes a parsed file before classification.
type FileStatistics struct {
	DataQuality          string `json:"dataQuality" yaml:"dataQuality"`
	TotalRows            int    `json:"totalRows" yaml:"totalRows"`
	TotalColumns         int    `json:"totalColumns" yaml:"totalColumns"`
	EmailColumnsDetected int    `json:"emailColumnsDetected" yaml:"emailColumnsDetected"`
	EstimatedEmails      int    `json:"estimatedEmails" yaml:"estimatedEmails"`
}

// ValidateStructure reports structural problems that do not stop processing.
func ValidateStructure(t *Table) []string {
	var issues []string

	if len(t.RaggedRows) > 0 {
		listed := t.RaggedRows
		suffix := ""
		if len(listed) > maxListedRows {
			listed = listed[:maxListedRows]
			suffix = "..."
		}
		rows := make([]string, len(listed))
		for i, r := range listed {
			rows[i] = strconv.Itoa(r)
		}
		issues = append(issues, fmt.Sprintf("Inconsistent column count in rows: %s%s", strings.Join(rows, ", "), suffix))
	}

	var empty []string
	for _, column := range t.Columns {
		if columnIsEmpty(t, column) {
			empty = append(empty, column)
		}
	}
	if len(empty) > 0 {
		issues = append(issues, "Empty columns detected: "+strings.Join(empty, ", "))
	}

	return issues
}

func columnIsEmpty(t *Table, column string) bool {
	for _, record := range t.Records {
		if strings.TrimSpace(record[column]) != "" {
			return false
		}
	}
	return true
}

// Statistics estimates how many addresses the file holds using the detection result.
func Statistics(t *Table, result detect.Result) FileStatistics {
	stats := FileStatistics{
		TotalRows:            len(t.Records),
		TotalColumns:         len(t.Columns),
		EmailColumnsDetected: len(result.EmailColumns),
		DataQuality:          QualityUnknown,
	}

	if len(result.EmailColumns) == 0 {
		return stats
	}

	best := result.EmailColumns[0]
	if best.SampledCount == 0 {
		return stats
	}

	for _, record := range t.Records {
		if strings.TrimSpace(record[best.Name]) != "" {
			stats.EstimatedEmails++
		}
	}
	stats.DataQuality = QualityGrade(best.ContentScore)

	return stats
}

// QualityGrade maps the share of well-shaped values to a grade.
func QualityGrade(ratio float64) string {
	switch {
	case ratio >= 0.9:
		return QualityExcellent
	case ratio >= 0.7:
		return QualityGood
	case ratio >= 0.5:
		return QualityFair
	default:
		return QualityPoor
	}
}
