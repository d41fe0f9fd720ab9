// Package report aggregates verdicts into statistics and writes them out as CSV exports.
package report

import (
	"sort"
	"strings"

	"github.com/Veraticus/mailvet/internal/model"
)

// Summary limits.
const (
	TopDomainsLimit   = 10
	CommonErrorsLimit = 5
)

// RiskCounts counts verdicts per risk level.
type RiskCounts struct {
	Low    int `json:"low" yaml:"low"`
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

// Statistics aggregates a set of verdicts.
type Statistics struct {
	Domains          map[string]int `json:"domains" yaml:"domains"`
	ErrorTypes       map[string]int `json:"errorTypes" yaml:"errorTypes"`
	RiskLevels       RiskCounts     `json:"riskLevels" yaml:"riskLevels"`
	Total            int            `json:"total" yaml:"total"`
	Valid            int            `json:"valid" yaml:"valid"`
	Invalid          int            `json:"invalid" yaml:"invalid"`
	BankingCompliant int            `json:"bankingCompliant" yaml:"bankingCompliant"`
}

// SuccessRate is the percentage of valid addresses.
func (s Statistics) SuccessRate() float64 {
	return percent(s.Valid, s.Total)
}

// BankingRate is the percentage of fully banking-compliant addresses.
func (s Statistics) BankingRate() float64 {
	return percent(s.BankingCompliant, s.Total)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Summarize counts validity, compliance, risk levels, domains and primary issues.
func Summarize(verdicts []model.Verdict) Statistics {
	stats := Statistics{
		Total:      len(verdicts),
		Domains:    make(map[string]int),
		ErrorTypes: make(map[string]int),
	}

	for _, v := range verdicts {
		if v.IsValid {
			stats.Valid++
		} else {
			stats.Invalid++
		}

		if v.BankingCompliance == model.BankingYes {
			stats.BankingCompliant++
		}

		switch v.RiskLevel {
		case model.RiskLow:
			stats.RiskLevels.Low++
		case model.RiskMedium:
			stats.RiskLevels.Medium++
		case model.RiskHigh:
			stats.RiskLevels.High++
		}

		if domain := Domain(v.Address); domain != "" {
			stats.Domains[domain]++
		}

		if !v.IsValid && v.ErrorSummary != "" && v.ErrorSummary != model.NoErrors {
			stats.ErrorTypes[PrimaryIssue(v.ErrorSummary)]++
		}
	}

	return stats
}

// Count is a named tally.
type Count struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Summary is the dashboard view of a run: totals plus the most frequent domains and errors.
type Summary struct {
	TopDomains   []Count    `json:"topDomains" yaml:"topDomains"`
	CommonErrors []Count    `json:"commonErrors" yaml:"commonErrors"`
	Statistics   Statistics `json:"statistics" yaml:"statistics"`
}

// NewSummary builds a Summary. Common errors are keyed by the first error of each invalid
// verdict, verbatim.
func NewSummary(verdicts []model.Verdict) Summary {
	stats := Summarize(verdicts)

	firstErrors := make(map[string]int)
	for _, v := range verdicts {
		if v.IsValid || v.ErrorSummary == model.NoErrors {
			continue
		}
		if first := strings.TrimSpace(strings.Split(v.ErrorSummary, ";")[0]); first != "" {
			firstErrors[first]++
		}
	}

	return Summary{
		Statistics:   stats,
		TopDomains:   topCounts(stats.Domains, TopDomainsLimit),
		CommonErrors: topCounts(firstErrors, CommonErrorsLimit),
	}
}

// topCounts sorts by descending count, then name, and keeps the first limit entries.
func topCounts(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
