// Package model defines the core domain models used throughout the application.
package model

// BankingCompliance is the three-level banking classification of an address.
type BankingCompliance string

// Banking compliance levels.
const (
	BankingYes     BankingCompliance = "Yes"
	BankingPartial BankingCompliance = "Partial"
	BankingNo      BankingCompliance = "No"
)

// RiskLevel is the coarse severity bucket derived from the risk score.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// NoErrors is the error summary of an address that passed every stage.
const NoErrors = "None"

// CheckDetail is the outcome of a single named sub-check.
type CheckDetail struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
}

// CheckResult is the result of one classification stage.
type CheckResult struct {
	Details []CheckDetail `json:"details" yaml:"details"`
	Errors  []string      `json:"errors" yaml:"errors"`
	Passed  bool          `json:"passed" yaml:"passed"`
}

// Detail reports the outcome of the named sub-check and whether it exists.
func (r CheckResult) Detail(name string) (passed, ok bool) {
	for _, d := range r.Details {
		if d.Name == name {
			return d.Passed, true
		}
	}
	return false, false
}

// Checks holds the result of every stage, in stage order.
type Checks struct {
	BasicFormat      CheckResult `json:"basicFormat" yaml:"basicFormat"`
	RFCCompliance    CheckResult `json:"rfcCompliance" yaml:"rfcCompliance"`
	RBICompliance    CheckResult `json:"rbiCompliance" yaml:"rbiCompliance"`
	DomainValidation CheckResult `json:"domainValidation" yaml:"domainValidation"`
	BankingDomain    CheckResult `json:"bankingDomain" yaml:"bankingDomain"`
	SecurityCheck    CheckResult `json:"securityCheck" yaml:"securityCheck"`
}

// Stage pairs a stage name with its result.
type Stage struct {
	Name   string
	Result CheckResult
}

// Stages returns the stage results in stage order.
func (c Checks) Stages() []Stage {
	return []Stage{
		{Name: "basicFormat", Result: c.BasicFormat},
		{Name: "rfcCompliance", Result: c.RFCCompliance},
		{Name: "rbiCompliance", Result: c.RBICompliance},
		{Name: "domainValidation", Result: c.DomainValidation},
		{Name: "bankingDomain", Result: c.BankingDomain},
		{Name: "securityCheck", Result: c.SecurityCheck},
	}
}

// Verdict is the complete classification output for one address.
type Verdict struct {
	Address           string            `json:"address" yaml:"address"`
	BankingCompliance BankingCompliance `json:"bankingCompliance" yaml:"bankingCompliance"`
	RiskLevel         RiskLevel         `json:"riskLevel" yaml:"riskLevel"`
	ErrorSummary      string            `json:"errorSummary" yaml:"errorSummary"`
	Checks            Checks            `json:"checks" yaml:"checks"`
	RiskScore         int               `json:"riskScore" yaml:"riskScore"`
	IsValid           bool              `json:"isValid" yaml:"isValid"`
}
