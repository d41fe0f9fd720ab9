// Package classification runs the layered rule set over email addresses and aggregates the
// stage results into a verdict.
package classification

import (
	"strings"

	"github.com/Veraticus/mailvet/internal/model"
)

// Risk thresholds. A score at or below RiskLowMax is Low, at or below RiskMediumMax is Medium.
const (
	RiskLowMax    = 10
	RiskMediumMax = 30
)

// riskRule adjusts the risk score when it applies to a set of checks.
type riskRule struct {
	applies func(model.Checks) bool
	Name    string
	Impact  int
}

var riskRules = []riskRule{
	{Name: "basic format failed", Impact: 30, applies: func(c model.Checks) bool { return !c.BasicFormat.Passed }},
	{Name: "rfc compliance failed", Impact: 25, applies: func(c model.Checks) bool { return !c.RFCCompliance.Passed }},
	{Name: "banking guidelines failed", Impact: 20, applies: func(c model.Checks) bool { return !c.RBICompliance.Passed }},
	{Name: "domain validation failed", Impact: 25, applies: func(c model.Checks) bool { return !c.DomainValidation.Passed }},
	{Name: "security check failed", Impact: 40, applies: func(c model.Checks) bool { return !c.SecurityCheck.Passed }},
	{Name: "bank domain", Impact: -20, applies: func(c model.Checks) bool { return detail(c.BankingDomain, CheckIsBank) }},
	{Name: "trusted domain", Impact: -10, applies: func(c model.Checks) bool { return detail(c.BankingDomain, CheckIsTrusted) }},
	{Name: "government domain", Impact: -15, applies: func(c model.Checks) bool { return detail(c.BankingDomain, CheckIsGovernment) }},
}

// Classifier classifies email addresses. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct{}

// NewClassifier creates a new classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

var defaultClassifier = NewClassifier()

// Classify classifies a single address with the default classifier.
func Classify(address string) model.Verdict {
	return defaultClassifier.Classify(address)
}

// Classify runs every stage over the address and aggregates the results. It never fails:
// malformed input yields an invalid verdict with a populated error summary.
func (c *Classifier) Classify(address string) model.Verdict {
	cand := newCandidate(address)

	checks := model.Checks{
		BasicFormat:      basicFormat(cand),
		RFCCompliance:    rfcCompliance(cand),
		RBICompliance:    rbiCompliance(cand),
		DomainValidation: domainValidation(cand),
		BankingDomain:    bankingDomain(cand),
		SecurityCheck:    securityCheck(cand),
	}

	score := RiskScore(checks)

	return model.Verdict{
		Address:           cand.raw,
		IsValid:           IsValid(checks),
		BankingCompliance: BankingCompliance(checks),
		RiskScore:         score,
		RiskLevel:         RiskLevelForScore(score),
		ErrorSummary:      ErrorSummary(checks),
		Checks:            checks,
	}
}

// IsValid reports whether the address passed basic format, RFC compliance, domain validation
// and security. The banking guideline and domain reputation stages are advisory.
func IsValid(checks model.Checks) bool {
	return checks.BasicFormat.Passed &&
		checks.RFCCompliance.Passed &&
		checks.DomainValidation.Passed &&
		checks.SecurityCheck.Passed
}

// BankingCompliance derives the banking compliance level from the reputation stage.
func BankingCompliance(checks model.Checks) model.BankingCompliance {
	switch {
	case detail(checks.BankingDomain, CheckIsBank):
		return model.BankingYes
	case detail(checks.BankingDomain, CheckIsTrusted), detail(checks.BankingDomain, CheckIsGovernment):
		return model.BankingPartial
	default:
		return model.BankingNo
	}
}

// RiskScore sums the weighted stage failures and domain reputation credits.
func RiskScore(checks model.Checks) int {
	score := 0
	for _, rule := range riskRules {
		if rule.applies(checks) {
			score += rule.Impact
		}
	}
	return score
}

// RiskLevelForScore buckets a risk score. Negative scores are Low.
func RiskLevelForScore(score int) model.RiskLevel {
	switch {
	case score <= RiskLowMax:
		return model.RiskLow
	case score <= RiskMediumMax:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// ErrorSummary joins the reasons of every failed stage in stage order, or returns "None".
func ErrorSummary(checks model.Checks) string {
	var errs []string
	for _, stage := range checks.Stages() {
		if !stage.Result.Passed {
			errs = append(errs, stage.Result.Errors...)
		}
	}
	if len(errs) == 0 {
		return model.NoErrors
	}
	return strings.Join(errs, "; ")
}

func detail(result model.CheckResult, name string) bool {
	passed, _ := result.Detail(name)
	return passed
}
