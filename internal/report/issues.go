package report

import (
	"strings"

	"github.com/Veraticus/mailvet/internal/model"
)

// Primary issue categories.
const (
	IssueMissingAt    = "Missing @ Symbol"
	IssueDomain       = "Domain Issue"
	IssueFormat       = "Format Issue"
	IssueLength       = "Length Issue"
	IssueCharacters   = "Invalid Characters"
	IssueUnknown      = "Unknown"
	IssueUnclassified = "Validation Error"
)

// Domain returns the text between the first and second '@', or "" when there is no '@'.
func Domain(address string) string {
	parts := strings.Split(address, "@")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// PrimaryIssue categorises the first error of an error summary.
func PrimaryIssue(errorSummary string) string {
	if errorSummary == "" || errorSummary == model.NoErrors {
		return IssueUnknown
	}

	first := strings.TrimSpace(strings.Split(errorSummary, ";")[0])

	switch {
	case strings.Contains(first, "@ symbol"):
		return IssueMissingAt
	case strings.Contains(first, "domain"):
		return IssueDomain
	case strings.Contains(first, "format"):
		return IssueFormat
	case strings.Contains(first, "length"):
		return IssueLength
	case strings.Contains(first, "character"):
		return IssueCharacters
	case first != "":
		return first
	default:
		return IssueUnclassified
	}
}

// CleanErrorDetails normalises an error summary for export: "None" becomes empty and stray
// separators are collapsed.
func CleanErrorDetails(errorSummary string) string {
	if errorSummary == "" || errorSummary == model.NoErrors {
		return ""
	}

	parts := strings.Split(errorSummary, ";")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "; ")
}
