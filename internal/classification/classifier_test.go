package classification

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ConcreteCases(t *testing.T) {
	tests := []struct {
		name            string
		address         string
		errorContains   string
		wantBanking     model.BankingCompliance
		wantRisk        model.RiskLevel
		wantValid       bool
		checkBanking    bool
		checkRiskLevel  bool
		wantSecurityOff bool
	}{
		{
			name:           "bank domain",
			address:        "user@sbi.co.in",
			wantValid:      true,
			wantBanking:    model.BankingYes,
			wantRisk:       model.RiskLow,
			checkBanking:   true,
			checkRiskLevel: true,
		},
		{
			name:          "missing at symbol",
			address:       "bad-email",
			wantValid:     false,
			errorContains: "Missing @ symbol",
		},
		{
			name:          "consecutive dots in domain",
			address:       "a@b..com",
			wantValid:     false,
			errorContains: "Consecutive dots",
		},
		{
			name:            "disposable domain",
			address:         "test@mailinator.com",
			wantValid:       false,
			wantBanking:     model.BankingNo,
			wantRisk:        model.RiskHigh,
			checkBanking:    true,
			checkRiskLevel:  true,
			wantSecurityOff: true,
			errorContains:   "Disposable email domain",
		},
		{
			name:           "trusted provider",
			address:        "  Jane.Doe@Gmail.com ",
			wantValid:      true,
			wantBanking:    model.BankingPartial,
			wantRisk:       model.RiskLow,
			checkBanking:   true,
			checkRiskLevel: true,
		},
		{
			name:           "government suffix",
			address:        "officer@incometax.gov.in",
			wantValid:      true,
			wantBanking:    model.BankingPartial,
			wantRisk:       model.RiskLow,
			checkBanking:   true,
			checkRiskLevel: true,
		},
		{
			name:          "numeric tld",
			address:       "user@host.123",
			wantValid:     false,
			errorContains: "Numeric TLD not allowed",
		},
		{
			name:          "script injection",
			address:       "<script>@evil.com",
			wantValid:     false,
			errorContains: "Contains script tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.address)

			assert.Equal(t, tt.wantValid, v.IsValid)
			if tt.checkBanking {
				assert.Equal(t, tt.wantBanking, v.BankingCompliance)
			}
			if tt.checkRiskLevel {
				assert.Equal(t, tt.wantRisk, v.RiskLevel)
			}
			if tt.wantSecurityOff {
				assert.False(t, v.Checks.SecurityCheck.Passed)
			}
			if tt.errorContains != "" {
				assert.Contains(t, v.ErrorSummary, tt.errorContains)
			}
		})
	}
}

func TestClassify_Normalizes(t *testing.T) {
	v := Classify("  USER@SBI.CO.IN\t")
	assert.Equal(t, "user@sbi.co.in", v.Address)
	assert.Equal(t, model.BankingYes, v.BankingCompliance)
}

func TestClassify_ErrorSummaryOrder(t *testing.T) {
	v := Classify("bad-email")

	parts := strings.Split(v.ErrorSummary, "; ")
	require.NotEmpty(t, parts)
	assert.Equal(t, "Missing @ symbol", parts[0])
	assert.Equal(t, "Missing domain part", parts[2])
	assert.Equal(t, "Invalid RFC format", parts[3])
}

func TestClassify_NoneWhenEverythingPasses(t *testing.T) {
	v := Classify("priya.sharma@hdfcbank.com")

	assert.True(t, v.IsValid)
	assert.Equal(t, model.NoErrors, v.ErrorSummary)
	for _, stage := range v.Checks.Stages() {
		assert.True(t, stage.Result.Passed, stage.Name)
		assert.Empty(t, stage.Result.Errors, stage.Name)
	}
	assert.Equal(t, -20, v.RiskScore)
}

func TestClassify_Totality(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"@",
		"@@@@",
		"no-at-symbol",
		strings.Repeat("a", 10000),
		strings.Repeat("a", 5000) + "@" + strings.Repeat("b", 5000) + ".com",
		"\x00\x01\x02@\x7f.com",
		"user@\xff\xfe.com",
		"ünïcødé@例え.jp",
		"a@b@c@d",
		".",
		"@domain.com",
		"local@",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			v := Classify(in)
			assert.False(t, v.IsValid, "%q should be invalid", in)
			assert.NotEqual(t, model.NoErrors, v.ErrorSummary)
			assert.NotEmpty(t, v.ErrorSummary)
		})
	}
}

func TestClassify_EmptyString(t *testing.T) {
	v := Classify("")

	assert.False(t, v.IsValid)
	assert.Equal(t, model.BankingNo, v.BankingCompliance)
	assert.Equal(t, model.RiskHigh, v.RiskLevel)
	assert.Contains(t, v.ErrorSummary, "Missing @ symbol")
}

func TestClassify_Deterministic(t *testing.T) {
	inputs := []string{"user@sbi.co.in", "bad-email", "a@b..com", "test@mailinator.com", "", "x@y"}

	for _, in := range inputs {
		first, err := json.Marshal(Classify(in))
		require.NoError(t, err)
		second, err := json.Marshal(NewClassifier().Classify(in))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), in)
	}
}

func TestClassify_MonotonicRiskForBanks(t *testing.T) {
	for _, domain := range pattern.BankDomains() {
		v := Classify("accounts@" + domain)
		if !allStagesPass(v.Checks) {
			continue
		}
		assert.Equal(t, model.RiskLow, v.RiskLevel, domain)
		assert.Equal(t, model.BankingYes, v.BankingCompliance, domain)
	}
}

func TestClassify_BankingTiering(t *testing.T) {
	for _, domain := range pattern.BankDomains() {
		assert.Equal(t, model.BankingYes, Classify("ops@"+domain).BankingCompliance, domain)
	}
	for _, domain := range pattern.TrustedDomains() {
		assert.Equal(t, model.BankingPartial, Classify("ops@"+domain).BankingCompliance, domain)
	}
	for _, domain := range []string{"example.com", "startup.io", "mailinator.com", "college.ac.in"} {
		assert.Equal(t, model.BankingNo, Classify("ops@"+domain).BankingCompliance, domain)
	}
}

func TestClassify_AdvisoryStagesDoNotInvalidate(t *testing.T) {
	tests := []struct {
		name    string
		address string
		failing func(model.Checks) bool
	}{
		{
			name:    "guideline stage fails",
			address: "john_@gmail.com",
			failing: func(c model.Checks) bool { return !c.RBICompliance.Passed },
		},
		{
			name:    "reputation stage fails",
			address: "john@example.com",
			failing: func(c model.Checks) bool { return !c.BankingDomain.Passed },
		},
		{
			name:    "both advisory stages fail",
			address: "-john@example.org",
			failing: func(c model.Checks) bool { return !c.RBICompliance.Passed && !c.BankingDomain.Passed },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.address)
			require.True(t, tt.failing(v.Checks))
			assert.True(t, v.IsValid)
		})
	}
}

func TestClassify_EducationalDomainIsAdvisoryOnly(t *testing.T) {
	v := Classify("student@college.edu.in")

	passed, ok := v.Checks.BankingDomain.Detail(CheckIsEducational)
	require.True(t, ok)
	assert.True(t, passed)
	assert.False(t, v.Checks.BankingDomain.Passed)
	assert.Equal(t, model.BankingNo, v.BankingCompliance)
	assert.True(t, v.IsValid)
}

func TestRiskLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  model.RiskLevel
	}{
		{score: -35, want: model.RiskLow},
		{score: 0, want: model.RiskLow},
		{score: 10, want: model.RiskLow},
		{score: 11, want: model.RiskMedium},
		{score: 30, want: model.RiskMedium},
		{score: 31, want: model.RiskHigh},
		{score: 140, want: model.RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelForScore(tt.score), "score %d", tt.score)
	}
}

func TestRiskScore_Weights(t *testing.T) {
	v := Classify("john_@gmail.com")
	// guideline failure +20, trusted -10
	assert.Equal(t, 10, v.RiskScore)
	assert.Equal(t, model.RiskLow, v.RiskLevel)

	v = Classify("test@mailinator.com")
	assert.Equal(t, 40, v.RiskScore)
}

func TestBankingDomainErrors(t *testing.T) {
	v := Classify("user@mailinator.com")

	assert.Equal(t, []string{"Suspicious/temporary domain", "Not from recognized banking/trusted domain"},
		v.Checks.BankingDomain.Errors)
	assert.Contains(t, v.ErrorSummary, "Not from recognized banking/trusted domain")
}

func TestStages_DetailOrder(t *testing.T) {
	v := Classify("user@sbi.co.in")

	names := make([]string, 0, len(v.Checks.BasicFormat.Details))
	for _, d := range v.Checks.BasicFormat.Details {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{CheckHasAtSymbol, CheckSingleAtSymbol, CheckHasLocalPart, CheckHasDomainPart, CheckValidLength}, names)
	assert.Len(t, v.Checks.RFCCompliance.Details, 6)
	assert.Len(t, v.Checks.RBICompliance.Details, 7)
	assert.Len(t, v.Checks.DomainValidation.Details, 6)
	assert.Len(t, v.Checks.BankingDomain.Details, 6)
	assert.Len(t, v.Checks.SecurityCheck.Details, 5)
}

func TestDomainIsSecondSegment(t *testing.T) {
	v := Classify("a@sbi.co.in@evil.com")

	assert.False(t, v.IsValid)
	assert.Contains(t, v.ErrorSummary, "Multiple @ symbols")
	assert.Equal(t, model.BankingYes, v.BankingCompliance)
}

func allStagesPass(c model.Checks) bool {
	for _, s := range c.Stages() {
		if !s.Result.Passed {
			return false
		}
	}
	return true
}

func BenchmarkClassify(b *testing.B) {
	addresses := []string{"user@sbi.co.in", "bad-email", "test@mailinator.com", "john.doe@example.com"}
	c := NewClassifier()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Classify(addresses[i%len(addresses)])
	}
}
