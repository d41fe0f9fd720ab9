package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/pattern"
)

// Filter selects which verdicts an export contains.
type Filter string

// Export filters.
const (
	FilterAll      Filter = "all"
	FilterValid    Filter = "valid"
	FilterInvalid  Filter = "invalid"
	FilterBanking  Filter = "banking"
	FilterHighRisk Filter = "high-risk"
	FilterReport   Filter = "report"
)

// DefaultPrefix is the default export file name prefix.
const DefaultPrefix = "email_validation"

const (
	timestampLayout      = "20060102_15_04_05"
	validationDateLayout = "02/01/2006 15:04:05"
)

// Filters lists every export filter in the order exports are written.
func Filters() []Filter {
	return []Filter{FilterAll, FilterValid, FilterInvalid, FilterBanking, FilterHighRisk, FilterReport}
}

// ParseFilter parses a filter name.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Filters() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown export filter %q", common.ErrInvalidSelection, s)
}

// Matches reports whether v belongs in an export with this filter.
func (f Filter) Matches(v model.Verdict) bool {
	switch f {
	case FilterValid:
		return v.IsValid
	case FilterInvalid:
		return !v.IsValid
	case FilterBanking:
		return v.IsValid && v.BankingCompliance == model.BankingYes
	case FilterHighRisk:
		return v.RiskLevel == model.RiskHigh
	default:
		return true
	}
}

// ExportResult describes one written export.
type ExportResult struct {
	Path   string `json:"path" yaml:"path"`
	Filter Filter `json:"filter" yaml:"filter"`
	Count  int    `json:"count" yaml:"count"`
}

// Exporter writes filtered verdict sets to CSV files in a directory.
type Exporter struct {
	now    func() time.Time
	dir    string
	prefix string
}

// NewExporter creates an exporter. An empty prefix selects DefaultPrefix.
func NewExporter(dir, prefix string) *Exporter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Exporter{dir: dir, prefix: prefix, now: time.Now}
}

// FileName is the name an export with this filter would get at t.
func (e *Exporter) FileName(filter Filter, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", e.prefix, filter, t.Format(timestampLayout))
}

// Export writes the verdicts matching filter to a new file. It fails with common.ErrNoData when
// nothing matches.
func (e *Exporter) Export(verdicts []model.Verdict, filter Filter) (ExportResult, error) {
	selected := Select(verdicts, filter)
	if len(selected) == 0 {
		return ExportResult{}, fmt.Errorf("%w: no addresses match export filter %s", common.ErrNoData, filter)
	}

	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	now := e.now()
	path := filepath.Join(e.dir, e.FileName(filter, now))

	err := writeFile(path, func(w io.Writer) error {
		return writeExport(w, selected, filter, now)
	})
	if err != nil {
		return ExportResult{}, err
	}

	slog.Info("Wrote export", "path", path, "filter", filter, "count", len(selected))

	return ExportResult{Path: path, Filter: filter, Count: len(selected)}, nil
}

// ExportAll writes one file per distinct filter, skipping filters that match nothing.
func (e *Exporter) ExportAll(verdicts []model.Verdict, filters []Filter) ([]ExportResult, error) {
	results := make([]ExportResult, 0, len(filters))
	seen := make(map[Filter]bool, len(filters))
	for _, filter := range filters {
		if seen[filter] {
			continue
		}
		seen[filter] = true
		if len(Select(verdicts, filter)) == 0 {
			slog.Debug("Skipping empty export", "filter", filter)
			continue
		}
		result, err := e.Export(verdicts, filter)
		if err != nil {
			return results, fmt.Errorf("failed to export %s: %w", filter, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// writeFile creates path, which must not exist yet, and fills it with write. A file that could
// not be completely written is removed.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600) //nolint:gosec // path built from configured directory
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// Select returns the verdicts matching filter, in order.
func Select(verdicts []model.Verdict, filter Filter) []model.Verdict {
	out := make([]model.Verdict, 0, len(verdicts))
	for _, v := range verdicts {
		if filter.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// WriteCSV writes verdicts in the column layout of filter, without filtering them.
func WriteCSV(w io.Writer, verdicts []model.Verdict, filter Filter) error {
	return writeExport(w, verdicts, filter, time.Now())
}

func writeExport(w io.Writer, verdicts []model.Verdict, filter Filter, now time.Time) error {
	if filter == FilterReport {
		if err := writeReportHeader(w, Summarize(verdicts), now); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	header, row := layout(filter, now)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, v := range verdicts {
		if err := cw.Write(row(v)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func writeReportHeader(w io.Writer, stats Statistics, now time.Time) error {
	_, err := fmt.Fprintf(w,
		"EMAIL VALIDATION REPORT\nGenerated on: %s\n\nSUMMARY STATISTICS\n"+
			"Total Emails Processed,%d\nValid Emails,%d\nInvalid Emails,%d\nBanking Compliant,%d\n"+
			"Success Rate,%.2f%%\nBanking Compliance Rate,%.2f%%\n\nDETAILED VALIDATION RESULTS\n",
		now.Format(validationDateLayout),
		stats.Total, stats.Valid, stats.Invalid, stats.BankingCompliant,
		stats.SuccessRate(), stats.BankingRate())
	if err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	return nil
}

func status(v model.Verdict) string {
	if v.IsValid {
		return "Valid"
	}
	return "Invalid"
}

// layout returns the header and row builder for a filter.
func layout(filter Filter, now time.Time) ([]string, func(model.Verdict) []string) {
	switch filter {
	case FilterValid:
		return []string{"Email"}, func(v model.Verdict) []string {
			return []string{v.Address}
		}
	case FilterInvalid:
		return []string{"Email", "Error_Details", "Risk_Level", "Primary_Issue"}, func(v model.Verdict) []string {
			return []string{v.Address, CleanErrorDetails(v.ErrorSummary), string(v.RiskLevel), PrimaryIssue(v.ErrorSummary)}
		}
	case FilterBanking:
		return []string{"Email", "Domain", "Banking_Type", "Risk_Level", "Compliance_Level"}, func(v model.Verdict) []string {
			domain := Domain(v.Address)
			return []string{v.Address, domain, string(pattern.ClassifyBankingType(domain)), string(v.RiskLevel), string(v.BankingCompliance)}
		}
	default:
		date := now.Format(validationDateLayout)
		return []string{"Email", "Status", "Banking_Compliant", "Error_Details", "Risk_Level", "Domain", "Validation_Date"},
			func(v model.Verdict) []string {
				return []string{
					v.Address,
					status(v),
					string(v.BankingCompliance),
					CleanErrorDetails(v.ErrorSummary),
					string(v.RiskLevel),
					Domain(v.Address),
					date,
				}
			}
	}
}
