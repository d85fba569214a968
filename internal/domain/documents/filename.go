package documents

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	rxYear       = regexp.MustCompile(`(?:^|\D)(20\d{2})(?:\D|$)`)
	rxYearMonth  = regexp.MustCompile(`(?:^|\D)(20\d{2})[-_. ]?(0[1-9]|1[0-2])(?:\D|$)`)
	rxMonthYear  = regexp.MustCompile(`(?:^|\D)(0[1-9]|1[0-2])[-_. ](20\d{2})`)
	rxTokenSplit = regexp.MustCompile(`[^a-z0-9]+`)
	rxLetterRuns = regexp.MustCompile(`[a-z]+`)
)

// fold lowercases s and strips diacritics ("Février" -> "fevrier").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func tokens(name string) []string {
	var out []string
	for _, t := range rxTokenSplit.Split(fold(name), -1) {
		if t == "" {
			continue
		}
		out = append(out, t)
		// "janvier2026" also yields "janvier"
		if run := rxLetterRuns.FindString(t); run != "" && run != t {
			out = append(out, run)
		}
	}
	return out
}

func hasToken(toks []string, candidates ...string) bool {
	for _, t := range toks {
		for _, c := range candidates {
			if t == c {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ExtractYear returns the first 4-digit token starting with "20", or 0.
func ExtractYear(name string) int {
	m := rxYear.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

func (p Period) String() string {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Full names match anywhere in the name, abbreviations only as whole tokens.
var monthNames = []struct {
	month time.Month
	full  []string
	short []string
}{
	{time.January, []string{"janvier", "january"}, []string{"jan", "janv"}},
	{time.February, []string{"fevrier", "february"}, []string{"feb", "fev", "fevr"}},
	{time.March, []string{"mars", "march"}, []string{"mar"}},
	{time.April, []string{"avril", "april"}, []string{"apr", "avr"}},
	{time.May, nil, []string{"mai", "may"}},
	{time.June, []string{"juin", "june"}, []string{"jun"}},
	{time.July, []string{"juillet", "july"}, []string{"jul", "juil"}},
	{time.August, []string{"aout", "august"}, []string{"aug"}},
	{time.September, []string{"septembre", "september"}, []string{"sep", "sept"}},
	{time.October, []string{"octobre", "october"}, []string{"oct"}},
	{time.November, []string{"novembre", "november"}, []string{"nov"}},
	{time.December, []string{"decembre", "december"}, []string{"dec"}},
}

// ExtractPeriod finds the month and year a payslip or statement covers.
func ExtractPeriod(name string) (Period, bool) {
	if m := rxYearMonth.FindStringSubmatch(name); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		return Period{Year: y, Month: time.Month(mo)}, true
	}
	if m := rxMonthYear.FindStringSubmatch(name); m != nil {
		mo, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return Period{Year: y, Month: time.Month(mo)}, true
	}

	year := ExtractYear(name)
	if year == 0 {
		return Period{}, false
	}
	folded := fold(name)
	toks := tokens(name)
	for _, mn := range monthNames {
		if containsAny(folded, mn.full...) || hasToken(toks, mn.short...) {
			return Period{Year: year, Month: mn.month}, true
		}
	}
	return Period{}, false
}

// MonthsBetween is the calendar month difference, ignoring days.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

const (
	IDPassport        = "passport"
	IDNationalID      = "national_id"
	IDResidencePermit = "residence_permit"
	IDDrivingLicence  = "driving_licence"
	Unknown           = "unknown"
)

func DetectIDType(name string) string {
	f := fold(name)
	toks := tokens(name)
	switch {
	case containsAny(f, "passeport", "passport"):
		return IDPassport
	case containsAny(f, "titre_sejour", "titre-sejour", "titredesejour", "sejour", "residence_permit", "residence-permit"):
		return IDResidencePermit
	case containsAny(f, "permis", "driving", "licence", "license"):
		return IDDrivingLicence
	case hasToken(toks, "cni", "id", "identite", "identity") || containsAny(f, "carte_identite", "carte-identite", "id_card", "idcard"):
		return IDNationalID
	}
	return Unknown
}

const (
	SideFront = "front"
	SideBack  = "back"
	SideBoth  = "both"
)

func DetectSide(name string) string {
	f := fold(name)
	toks := tokens(name)
	front := hasToken(toks, "recto", "front")
	back := hasToken(toks, "verso", "back")
	switch {
	case (front && back) || containsAny(f, "recto_verso", "recto-verso", "rectoverso", "both_sides"):
		return SideBoth
	case front:
		return SideFront
	case back:
		return SideBack
	}
	return Unknown
}

const (
	ContractCDI            = "cdi"
	ContractCDD            = "cdd"
	ContractInterim        = "interim"
	ContractInternship     = "internship"
	ContractApprenticeship = "apprenticeship"
)

func DetectContractType(name string) string {
	f := fold(name)
	toks := tokens(name)
	switch {
	case hasToken(toks, "cdi") || containsAny(f, "indetermine", "permanent"):
		return ContractCDI
	case hasToken(toks, "cdd") || containsAny(f, "determine", "fixed_term", "fixed-term"):
		return ContractCDD
	case containsAny(f, "interim", "temporaire", "temp_work"):
		return ContractInterim
	case containsAny(f, "stage", "internship"):
		return ContractInternship
	case containsAny(f, "apprenti", "alternance", "apprentice"):
		return ContractApprenticeship
	}
	return Unknown
}
