package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/report"
	"github.com/Veraticus/mailvet/internal/table"
)

var stageTitles = map[string]string{
	"basicFormat":      "Basic Format",
	"rfcCompliance":    "RFC Compliance",
	"rbiCompliance":    "RBI Guidelines",
	"domainValidation": "Domain Validation",
	"bankingDomain":    "Banking Domain",
	"securityCheck":    "Security",
}

// StageTitle returns the display title of a stage.
func StageTitle(name string) string {
	if title, ok := stageTitles[name]; ok {
		return title
	}
	return name
}

// RenderVerdict renders one verdict as a box with a header block and per-stage details.
func RenderVerdict(v model.Verdict) string {
	var b strings.Builder

	status := SuccessStyle.Render(SuccessIcon + " Valid")
	if !v.IsValid {
		status = ErrorStyle.Render(ErrorIcon + " Invalid")
	}

	fmt.Fprintf(&b, "%s  %s\n", BoldStyle.Render("Status:"), status)
	fmt.Fprintf(&b, "%s  %s\n", BoldStyle.Render("Banking:"), ComplianceStyle(v.BankingCompliance).Render(string(v.BankingCompliance)))
	fmt.Fprintf(&b, "%s  %s (score %d)\n", BoldStyle.Render("Risk:"), RiskStyle(v.RiskLevel).Render(string(v.RiskLevel)), v.RiskScore)
	if domain := report.Domain(v.Address); domain != "" {
		fmt.Fprintf(&b, "%s  %s\n", BoldStyle.Render("Domain:"), domain)
	}

	for _, stage := range v.Checks.Stages() {
		fmt.Fprintf(&b, "\n%s %s\n", PassFail(stage.Result.Passed), BoldStyle.Render(StageTitle(stage.Name)))
		for _, d := range stage.Result.Details {
			fmt.Fprintf(&b, "    %s %s\n", PassFail(d.Passed), SubtleStyle.Render(d.Name))
		}
	}

	if v.ErrorSummary != model.NoErrors {
		fmt.Fprintf(&b, "\n%s %s", BoldStyle.Render("Errors:"), ErrorStyle.Render(v.ErrorSummary))
	}

	return RenderBox(v.Address, strings.TrimRight(b.String(), "\n"))
}

// RenderProfiles renders column profiles as an aligned table.
func RenderProfiles(profiles []model.ColumnProfile) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, TableHeaderStyle.Render("COLUMN")+"\t"+
		TableHeaderStyle.Render("CONFIDENCE")+"\t"+
		TableHeaderStyle.Render("MATCHED")+"\t"+
		TableHeaderStyle.Render("EMAIL")+"\t"+
		TableHeaderStyle.Render("EXAMPLES"))

	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%d%%\t%d/%d\t%s\t%s\n",
			p.Name, p.Confidence, p.MatchedCount, p.SampledCount, PassFail(p.IsEmail), strings.Join(p.Examples, ", "))
	}

	_ = w.Flush()
	return b.String()
}

// RenderStructure describes a detected table structure.
func RenderStructure(s model.TableStructure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Structure:"), s.Description)

	if primary, ok := s.Primary(); ok {
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Primary email column:"), SuccessStyle.Render(primary))
	}
	if len(s.Alternatives) > 0 {
		names := make([]string, len(s.Alternatives))
		for i, a := range s.Alternatives {
			names[i] = a.Name
		}
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Alternatives:"), strings.Join(names, ", "))
	}
	if s.RequiresManualSelection {
		b.WriteString(FormatWarning("Manual column selection required") + "\n")
	}

	return b.String()
}

// RenderDetection renders a detection result with file statistics and structure issues.
func RenderDetection(result detect.Result, stats table.FileStatistics, issues []string) string {
	var b strings.Builder

	b.WriteString(RenderProfiles(result.Profiles))
	b.WriteString("\n")
	b.WriteString(RenderStructure(result.Structure))
	fmt.Fprintf(&b, "\n%s %d rows, %d columns, ~%d addresses, data quality %s\n",
		ChartIcon, stats.TotalRows, stats.TotalColumns, stats.EstimatedEmails, stats.DataQuality)

	for _, issue := range issues {
		b.WriteString(FormatWarning(issue) + "\n")
	}

	return b.String()
}

// RenderSummary renders run statistics, top domains and common errors.
func RenderSummary(s report.Summary) string {
	var b strings.Builder
	st := s.Statistics

	fmt.Fprintf(&b, "Total: %d\n", st.Total)
	fmt.Fprintf(&b, "%s %d (%.1f%%)\n", SuccessStyle.Render("Valid:"), st.Valid, st.SuccessRate())
	fmt.Fprintf(&b, "%s %d\n", ErrorStyle.Render("Invalid:"), st.Invalid)
	fmt.Fprintf(&b, "%s %d (%.1f%%)\n", BankIcon+" Banking compliant:", st.BankingCompliant, st.BankingRate())
	fmt.Fprintf(&b, "Risk: %s / %s / %s\n",
		SuccessStyle.Render(fmt.Sprintf("%d low", st.RiskLevels.Low)),
		WarningStyle.Render(fmt.Sprintf("%d medium", st.RiskLevels.Medium)),
		ErrorStyle.Render(fmt.Sprintf("%d high", st.RiskLevels.High)))

	if len(s.TopDomains) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Top domains") + "\n")
		for _, c := range s.TopDomains {
			fmt.Fprintf(&b, "  • %s (%d)\n", c.Name, c.Count)
		}
	}
	if len(s.CommonErrors) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Common errors") + "\n")
		for _, c := range s.CommonErrors {
			fmt.Fprintf(&b, "  • %s (%d)\n", c.Name, c.Count)
		}
	}

	return RenderBox(ChartIcon+" Validation Summary", strings.TrimRight(b.String(), "\n"))
}
