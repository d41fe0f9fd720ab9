package pattern

import (
	"regexp"
)

// Address shape expressions. Inputs are lower-cased before they reach these, the upper-case
// ranges only matter for callers that skip normalisation.
var (
	// RFCAddress is the anchored RFC 5322 style address pattern.
	RFCAddress = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	// LocalPartChars restricts the local part to RFC atext plus dots.
	LocalPartChars = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+$")

	// DomainPartChars restricts the domain to letters, digits, dots and hyphens.
	DomainPartChars = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)

	// CorporateAddress is the stricter banking guideline shape: alphanumeric at both ends of the
	// local part and an alphabetic top-level label.
	CorporateAddress = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*[a-zA-Z0-9]@[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,}$`)

	// BankingChars is the character set accepted for banking correspondence.
	BankingChars = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// MinLength and MaxLength mirror the banking length limits, counted on a single line.
	MinLength = regexp.MustCompile(`.{6,}`)
	MaxLength = regexp.MustCompile(`^.{1,254}$`)

	// SpecialStart and SpecialEnd catch separators at the start of the address or right before @.
	SpecialStart = regexp.MustCompile(`^[._-]`)
	SpecialEnd   = regexp.MustCompile(`[._-]@`)

	// DomainFormat requires an alphanumeric first and last character.
	DomainFormat = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*[a-zA-Z0-9]$`)

	// AlphaTLD and NumericTLD test the final domain label.
	AlphaTLD   = regexp.MustCompile(`\.[a-zA-Z]{2,}$`)
	NumericTLD = regexp.MustCompile(`\.\d+$`)

	// UnsafeChars are characters rejected by the security stage.
	UnsafeChars = regexp.MustCompile(`[<>"'%;()&+]`)

	// ScriptTag catches script tags and javascript: URLs.
	ScriptTag = regexp.MustCompile(`(?i)<script|javascript:`)

	// LikelyEmail is the cheap shape test used by column detection.
	LikelyEmail = regexp.MustCompile(`^[^\s\v\p{Z}@]+@[^\s\v\p{Z}@]+\.[^\s\v\p{Z}@]+$`)
)

// Pattern is a named expression in one of the heuristic batteries.
type Pattern struct {
	regex *regexp.Regexp
	Name  string
	Expr  string
}

// MatchString reports whether s matches the pattern.
func (p Pattern) MatchString(s string) bool {
	return p.regex.MatchString(s)
}

func compileAll(defs [][2]string) []Pattern {
	out := make([]Pattern, 0, len(defs))
	for _, d := range defs {
		out = append(out, Pattern{Name: d[0], Expr: d[1], regex: regexp.MustCompile(d[1])})
	}
	return out
}

// RepeatedCharRun is the number of identical consecutive characters treated as suspicious.
const RepeatedCharRun = 5

var suspiciousPatterns = compileAll([][2]string{
	{"repeated test", `(?i)test.*test`},
	{"repeated fake", `(?i)fake.*fake`},
	{"repeated temp", `(?i)temp.*temp`},
	{"long digit run", `\d{10,}`},
	{"repeated admin", `(?i)admin.*admin`},
})

var sqlPatterns = compileAll([][2]string{
	{"union select", `(?i)union.*select`},
	{"drop table", `(?i)drop.*table`},
	{"insert into", `(?i)insert.*into`},
	{"delete from", `(?i)delete.*from`},
	{"update set", `(?i)update.*set`},
	{"exec stored procedure", `(?i)exec.*sp_`},
})

var columnNamePatterns = compileAll([][2]string{
	{"e-mail prefix", `(?i)^e[-_]?mail`},
	{"mail address", `(?i)mail[-_]?address`},
	{"contact email", `(?i)contact[-_]?email`},
	{"user email", `(?i)user[-_]?email`},
	{"customer email", `(?i)customer[-_]?email`},
})

// emailColumnNames is the exact column-name vocabulary.
var emailColumnNames = map[string]struct{}{
	"email":         {},
	"e-mail":        {},
	"mail":          {},
	"email_address": {},
	"emailaddress":  {},
}

// SuspiciousPatterns returns the lexical battery applied by the security stage, excluding the
// repeated-character test which RE2 cannot express (see HasRepeatedRun).
func SuspiciousPatterns() []Pattern { return append([]Pattern(nil), suspiciousPatterns...) }

// SQLPatterns returns the SQL keyword-pair battery.
func SQLPatterns() []Pattern { return append([]Pattern(nil), sqlPatterns...) }

// ColumnNamePatterns returns the column-name variants scored by the detector.
func ColumnNamePatterns() []Pattern { return append([]Pattern(nil), columnNamePatterns...) }

// IsEmailColumnName reports whether name is in the exact vocabulary. name must already be
// trimmed and lower-cased.
func IsEmailColumnName(name string) bool {
	_, ok := emailColumnNames[name]
	return ok
}

// HasSuspiciousPattern reports whether s trips any lexical heuristic.
func HasSuspiciousPattern(s string) bool {
	return HasRepeatedRun(s, RepeatedCharRun) || matchAny(suspiciousPatterns, s)
}

// HasSQLPattern reports whether s contains a SQL keyword pair.
func HasSQLPattern(s string) bool {
	return matchAny(sqlPatterns, s)
}

// MatchesColumnNamePattern reports whether name matches a column-name variant.
func MatchesColumnNamePattern(name string) bool {
	return matchAny(columnNamePatterns, name)
}

func matchAny(patterns []Pattern, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// HasRepeatedRun reports whether s contains n or more identical consecutive characters.
// Line terminators never count towards a run.
func HasRepeatedRun(s string, n int) bool {
	if n <= 1 {
		return s != ""
	}

	var prev rune
	run := 0
	for _, r := range s {
		if isLineTerminator(r) {
			run = 0
			continue
		}
		if run > 0 && r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}
