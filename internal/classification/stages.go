package classification

import (
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/mailvet/internal/model"
	"github.com/Veraticus/mailvet/internal/pattern"
)

// Sub-check names reported in CheckResult.Details.
const (
	CheckHasAtSymbol    = "hasAtSymbol"
	CheckSingleAtSymbol = "singleAtSymbol"
	CheckHasLocalPart   = "hasLocalPart"
	CheckHasDomainPart  = "hasDomainPart"
	CheckValidLength    = "validLength"

	CheckRFCPattern        = "rfcPattern"
	CheckNoLeadingDot      = "noLeadingDot"
	CheckNoTrailingDot     = "noTrailingDot"
	CheckNoConsecutiveDots = "noConsecutiveDots"
	CheckValidLocalChars   = "validLocalChars"
	CheckValidDomainChars  = "validDomainChars"

	CheckCorporatePattern = "corporatePattern"
	CheckValidCharsOnly   = "validCharsOnly"
	CheckMinLength        = "minLength"
	CheckMaxLength        = "maxLength"
	CheckNoSpecialStart   = "noSpecialStart"
	CheckNoSpecialEnd     = "noSpecialEnd"

	CheckHasDomain         = "hasDomain"
	CheckValidDomainFormat = "validDomainFormat"
	CheckHasTLD            = "hasTLD"
	CheckValidTLD          = "validTLD"
	CheckNotNumericTLD     = "notNumericTLD"
	CheckDomainLength      = "domainLength"

	CheckIsBank        = "isIndianBank"
	CheckIsTrusted     = "isTrustedDomain"
	CheckIsGovernment  = "isGovernmentDomain"
	CheckIsEducational = "isEducationalDomain"
	CheckIsCorporate   = "isCorporateDomain"
	CheckNotSuspicious = "isNotSuspicious"

	CheckNotDisposable        = "notDisposable"
	CheckNoSuspiciousPatterns = "noSuspiciousPatterns"
	CheckValidCharacterSet    = "validCharacterSet"
	CheckNoSQLInjection       = "noSQLInjection"
	CheckNoScriptTags         = "noScriptTags"
)

// candidate is a normalised address split the way every stage sees it: the local part is
// everything before the first @, the domain is the text between the first and second @.
type candidate struct {
	raw     string
	local   string
	domain  string
	atCount int
}

func newCandidate(address string) candidate {
	normalized := strings.ToLower(strings.TrimSpace(address))
	parts := strings.Split(normalized, "@")

	c := candidate{
		raw:     normalized,
		local:   parts[0],
		atCount: len(parts) - 1,
	}
	if len(parts) > 1 {
		c.domain = parts[1]
	}
	return c
}

// checkList accumulates sub-checks for one stage.
type checkList struct {
	details []model.CheckDetail
	errors  []string
}

func newCheckList(capacity int) *checkList {
	return &checkList{
		details: make([]model.CheckDetail, 0, capacity),
		errors:  []string{},
	}
}

// add records a sub-check; reason is reported only when the sub-check fails.
func (l *checkList) add(name string, passed bool, reason string) {
	l.details = append(l.details, model.CheckDetail{Name: name, Passed: passed})
	if !passed && reason != "" {
		l.errors = append(l.errors, reason)
	}
}

func (l *checkList) allPassed() bool {
	for _, d := range l.details {
		if !d.Passed {
			return false
		}
	}
	return true
}

func (l *checkList) result() model.CheckResult {
	return model.CheckResult{
		Passed:  l.allPassed(),
		Details: l.details,
		Errors:  l.errors,
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func basicFormat(c candidate) model.CheckResult {
	n := runeLen(c.raw)

	l := newCheckList(5)
	l.add(CheckHasAtSymbol, c.atCount > 0, "Missing @ symbol")
	l.add(CheckSingleAtSymbol, c.atCount == 1, "Multiple @ symbols")
	l.add(CheckHasLocalPart, c.local != "", "Missing local part")
	l.add(CheckHasDomainPart, c.domain != "", "Missing domain part")
	l.add(CheckValidLength, n >= 6 && n <= 254, "Invalid email length")
	return l.result()
}

func rfcCompliance(c candidate) model.CheckResult {
	l := newCheckList(6)
	l.add(CheckRFCPattern, pattern.RFCAddress.MatchString(c.raw), "Invalid RFC format")
	l.add(CheckNoLeadingDot, !strings.HasPrefix(c.raw, "."), "Starts with dot")
	l.add(CheckNoTrailingDot, !strings.HasSuffix(c.raw, "."), "Ends with dot")
	l.add(CheckNoConsecutiveDots, !strings.Contains(c.raw, ".."), "Consecutive dots")
	l.add(CheckValidLocalChars, pattern.LocalPartChars.MatchString(c.local), "Invalid local characters")
	l.add(CheckValidDomainChars, pattern.DomainPartChars.MatchString(c.domain), "Invalid domain characters")
	return l.result()
}

func rbiCompliance(c candidate) model.CheckResult {
	l := newCheckList(7)
	l.add(CheckCorporatePattern, pattern.CorporateAddress.MatchString(c.raw), "Non-corporate format")
	l.add(CheckNoConsecutiveDots, !strings.Contains(c.local, ".."), "Consecutive dots in local part")
	l.add(CheckValidCharsOnly, pattern.BankingChars.MatchString(c.raw), "Invalid characters for banking")
	l.add(CheckMinLength, pattern.MinLength.MatchString(c.raw), "Too short for banking standards")
	l.add(CheckMaxLength, pattern.MaxLength.MatchString(c.raw), "Too long for banking standards")
	l.add(CheckNoSpecialStart, !pattern.SpecialStart.MatchString(c.raw), "Starts with special character")
	l.add(CheckNoSpecialEnd, !pattern.SpecialEnd.MatchString(c.raw), "Ends with special character")
	return l.result()
}

func domainValidation(c candidate) model.CheckResult {
	d := c.domain
	n := runeLen(d)

	hasTLD := false
	if i := strings.LastIndex(d, "."); i >= 0 {
		hasTLD = runeLen(d[i+1:]) >= 2
	}

	l := newCheckList(6)
	l.add(CheckHasDomain, d != "", "No domain specified")
	l.add(CheckValidDomainFormat, pattern.DomainFormat.MatchString(d), "Invalid domain format")
	l.add(CheckHasTLD, hasTLD, "Missing top-level domain")
	l.add(CheckValidTLD, pattern.AlphaTLD.MatchString(d), "Invalid TLD format")
	l.add(CheckNotNumericTLD, !pattern.NumericTLD.MatchString(d), "Numeric TLD not allowed")
	l.add(CheckDomainLength, n >= 4 && n <= 253, "Invalid domain length")
	return l.result()
}

// bankingDomain is advisory: it passes when the domain is a bank, trusted, or government
// domain. Educational and generic corporate domains are recorded but never pass it alone.
func bankingDomain(c candidate) model.CheckResult {
	d := c.domain
	isBank := pattern.IsBankDomain(d)
	isTrusted := pattern.IsTrustedDomain(d)
	isGovernment := pattern.IsGovernmentDomain(d)
	notSuspicious := !pattern.IsSuspiciousDomain(d)

	l := newCheckList(6)
	l.add(CheckIsBank, isBank, "")
	l.add(CheckIsTrusted, isTrusted, "")
	l.add(CheckIsGovernment, isGovernment, "")
	l.add(CheckIsEducational, pattern.IsEducationalDomain(d), "")
	l.add(CheckIsCorporate, pattern.IsCorporateDomain(d), "")
	l.add(CheckNotSuspicious, notSuspicious, "Suspicious/temporary domain")

	recognized := isBank || isTrusted || isGovernment
	if !recognized {
		l.errors = append(l.errors, "Not from recognized banking/trusted domain")
	}

	return model.CheckResult{
		Passed:  recognized,
		Details: l.details,
		Errors:  l.errors,
	}
}

func securityCheck(c candidate) model.CheckResult {
	l := newCheckList(5)
	l.add(CheckNotDisposable, !pattern.IsSuspiciousDomain(c.domain), "Disposable email domain")
	l.add(CheckNoSuspiciousPatterns, !pattern.HasSuspiciousPattern(c.raw), "Suspicious email pattern")
	l.add(CheckValidCharacterSet, !pattern.UnsafeChars.MatchString(c.raw), "Contains unsafe characters")
	l.add(CheckNoSQLInjection, !pattern.HasSQLPattern(c.raw), "Potential SQL injection")
	l.add(CheckNoScriptTags, !pattern.ScriptTag.MatchString(c.raw), "Contains script tags")
	return l.result()
}
