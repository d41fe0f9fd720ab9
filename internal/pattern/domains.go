// Package pattern holds the static reference data used by every check: recognised bank,
// trusted and disposable domains, and the compiled expressions the classifier and the
// column detector run against addresses and column names.
//
// All data is built once at package initialisation and is never mutated afterwards, so it is
// safe to share across goroutines.
package pattern

import (
	"sort"
	"strings"
)

type domainSet map[string]struct{}

func newDomainSet(domains ...string) domainSet {
	set := make(domainSet, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

func (s domainSet) has(domain string) bool {
	_, ok := s[domain]
	return ok
}

func (s domainSet) sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

var bankDomains = newDomainSet(
	// Public sector banks
	"sbi.co.in", "statebankofindia.com", "onlinesbi.com",
	"pnb.co.in", "pnbindia.in",
	"bankofbaroda.com", "bankofbaroda.co.in",
	"canarabank.com", "canarabank.in",
	"unionbankofindia.co.in", "unionbankofindia.com",
	"indianbank.in", "indianbank.net.in",
	"boi.co.in", "bankofindia.co.in",
	"centralbankofindia.co.in",
	"indianoverseasbank.com",
	"ucobank.com", "ucobank.co.in",
	"bankofmaharashtra.in",
	"punjabsind.com",

	// Private sector banks
	"hdfcbank.com", "hdfc.com",
	"icicibank.com", "icici.com",
	"axisbank.com", "axisbank.co.in",
	"kotakbank.com", "kotak.com",
	"yesbank.in", "yesbank.co.in",
	"indusind.com", "indusindbank.com",
	"federalbank.co.in",
	"southindianbank.com",
	"karurbank.com",
	"cityunionbank.com",
	"dcbbank.com",
	"rblbank.com",
	"bandhanbank.com",
	"idfcfirstbank.com",

	// Foreign banks in India
	"standardchartered.co.in",
	"citibank.co.in", "citiindia.com",
	"hsbc.co.in",
	"deutschebank.co.in",
	"abnamro.co.in",
	"barclays.co.in",

	// Regional rural banks
	"andhragraminvikas.co.in",
	"apgvb.in",
	"kgb.co.in",
	"prathama.co.in",

	// Co-operative banks
	"saraswabank.com",
	"apexbank.in",
	"dccb.com",

	// Payment banks
	"paytm.com",
	"airtel.in",
	"jio.com",
	"fino.in",

	// Small finance banks
	"equitasbank.com",
	"esafbank.com",
	"ujjivanbank.com",
	"capitalbank.co.in",
	"suryodaybank.com",

	// NBFCs and financial services
	"bajajfinserv.in",
	"mahindrafinance.com",
	"tatacapital.com",
	"lntecc.com",
	"shriramcity.com",

	// Regulators
	"gov.in", "nic.in", "rbi.org.in",
	"sebi.gov.in", "irda.gov.in",
	"npci.org.in", "cersai.org.in",
)

var trustedDomains = newDomainSet(
	// Educational institutions
	"iitb.ac.in", "iitd.ac.in", "iitk.ac.in", "iitm.ac.in",
	"iisc.ac.in", "iimb.ac.in", "iima.ac.in",
	"du.ac.in", "jnu.ac.in", "bhu.ac.in",

	// Corporates
	"tcs.com", "infosys.com", "wipro.com",
	"hcl.com", "techm.com", "mindtree.com",
	"reliance.com", "adani.com", "tatasteel.com",
	"bhartiairtel.in", "idea.in", "vodafone.in",

	// Major providers
	"gmail.com", "yahoo.com", "outlook.com",
	"hotmail.com", "live.com", "icloud.com",
)

var suspiciousDomains = newDomainSet(
	"tempmail.org", "10minutemail.com", "guerrillamail.com",
	"mailinator.com", "throwaway.email", "temp-mail.org",
	"fakeinbox.com", "maildrop.cc", "sharklasers.com",
	"bltiwd.com",
)

var (
	governmentSuffixes  = []string{".gov.in", ".nic.in"}
	educationalSuffixes = []string{".ac.in", ".edu.in"}
	corporateSuffixes   = []string{".com", ".co.in", ".org", ".net", ".in", ".biz", ".info"}
)

// IsBankDomain reports whether domain belongs to a recognised financial institution.
func IsBankDomain(domain string) bool {
	return bankDomains.has(domain)
}

// IsTrustedDomain reports whether domain is a generally trusted provider or organisation.
func IsTrustedDomain(domain string) bool {
	return trustedDomains.has(domain)
}

// IsSuspiciousDomain reports whether domain is a known disposable provider.
func IsSuspiciousDomain(domain string) bool {
	return suspiciousDomains.has(domain)
}

// IsGovernmentDomain reports whether domain is under .gov.in or .nic.in.
func IsGovernmentDomain(domain string) bool {
	return hasAnySuffix(domain, governmentSuffixes)
}

// IsEducationalDomain reports whether domain is under .ac.in or .edu.in.
func IsEducationalDomain(domain string) bool {
	return hasAnySuffix(domain, educationalSuffixes)
}

// IsCorporateDomain reports whether domain ends in a common commercial suffix.
func IsCorporateDomain(domain string) bool {
	return hasAnySuffix(strings.ToLower(domain), corporateSuffixes)
}

// BankDomains returns the recognised financial-institution domains, sorted.
func BankDomains() []string { return bankDomains.sorted() }

// TrustedDomains returns the trusted domains, sorted.
func TrustedDomains() []string { return trustedDomains.sorted() }

// SuspiciousDomains returns the disposable domains, sorted.
func SuspiciousDomains() []string { return suspiciousDomains.sorted() }

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// BankingType names the kind of institution behind a domain.
type BankingType string

// Banking types used for reporting.
const (
	BankingTypePublicSector  BankingType = "Public Sector Bank"
	BankingTypePrivateSector BankingType = "Private Sector Bank"
	BankingTypeGovernment    BankingType = "Government"
	BankingTypePaymentBank   BankingType = "Payment Bank"
	BankingTypeOther         BankingType = "Other Financial Institution"
)

var (
	publicSectorBanks  = []string{"sbi.co.in", "pnb.co.in", "bankofbaroda.com", "canarabank.com"}
	privateSectorBanks = []string{"hdfcbank.com", "icicibank.com", "axisbank.com", "kotakbank.com"}
	paymentBanks       = []string{"paytm.com", "airtel.in", "jio.com"}
)

// ClassifyBankingType categorises a domain for reports. Matching is by substring so that
// subdomains of the flagship banks are grouped with them.
func ClassifyBankingType(domain string) BankingType {
	switch {
	case containsAny(domain, publicSectorBanks):
		return BankingTypePublicSector
	case containsAny(domain, privateSectorBanks):
		return BankingTypePrivateSector
	case IsGovernmentDomain(domain):
		return BankingTypeGovernment
	case containsAny(domain, paymentBanks):
		return BankingTypePaymentBank
	default:
		return BankingTypeOther
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
