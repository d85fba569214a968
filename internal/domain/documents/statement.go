package documents

import (
	"fmt"
	"regexp"
	"time"
)

var (
	rxSIRET = regexp.MustCompile(`\b\d{3}\s?\d{3}\s?\d{3}\s?\d{5}\b`)
	rxIBAN  = regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){3,7}(?:\s?[A-Z0-9]{1,4})?\b`)
)

// Payslips and bank statements go stale after a month.
const refreshInterval = 30 * 24 * time.Hour

// recency captures the period a monthly document covers and its age.
type recency struct {
	period Period
	found  bool
	age    int
}

func periodOf(in scoreInput, res *AnalysisResult) recency {
	p, ok := ExtractPeriod(in.req.FileName)
	if !ok {
		res.warn("Period could not be determined from file name")
		return recency{age: -1}
	}
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, in.now.Location())
	age := MonthsBetween(start, in.now)
	res.ExtractedData["month"] = int(p.Month)
	res.ExtractedData["year"] = p.Year
	res.ExtractedData["period"] = p.String()
	res.ExtractedData["ageMonths"] = age
	return recency{period: p, found: true, age: age}
}

func (r recency) points(full int) int {
	switch {
	case !r.found || r.age < 0:
		return 0
	case r.age <= 1:
		return full
	case r.age <= 3:
		return full / 2
	}
	return 0
}

func (r recency) report(res *AnalysisResult, label string, now time.Time) {
	next := now.Add(refreshInterval)
	res.NextUpdateDate = &next
	if !r.found {
		return
	}
	switch {
	case r.age < 0:
		res.fail(fmt.Sprintf("%s period %s is in the future", label, r.period))
	case r.age > 3:
		res.fail(fmt.Sprintf("%s is %d months old, documents must be less than 3 months old", label, r.age))
	}
	if r.age > 1 {
		res.NeedsUpdate = true
		res.recommend(fmt.Sprintf("Upload a more recent %s", label))
	}
}

func scorePayslip(in scoreInput) (*AnalysisResult, error) {
	res := newResult(TypePayslip)
	sig := in.signals
	rec := periodOf(in, res)

	employer := rxSIRET.MatchString(sig.Text) || containsFold(sig.Text, "siret", "employeur", "employer")
	netPay := containsFold(sig.Text, "net a payer", "net paye", "net pay", "salaire net")

	score := 0
	score += rec.points(40)
	res.Validations["recent"] = rec.found && rec.age >= 0 && rec.age <= 1
	score += res.check("readable", sig.Readable, 20)
	score += res.check("employerIdentified", employer, 20)
	score += res.check("netPayFound", netPay, 20)
	res.setScore(score)

	rec.report(res, "payslip", in.now)
	if !employer {
		res.warn("Employer identification (SIRET) not found")
	}
	if !netPay {
		res.warn("Net pay amount not found")
	}
	if !sig.Readable {
		res.recommend("Upload a clearer scan of the document")
	}
	return res, nil
}

func scoreBankStatement(in scoreInput) (*AnalysisResult, error) {
	res := newResult(TypeBankStatement)
	sig := in.signals
	rec := periodOf(in, res)

	iban := rxIBAN.FindString(sig.Text)
	balance := containsFold(sig.Text, "solde", "balance")
	if iban != "" {
		res.ExtractedData["ibanSuffix"] = maskIBAN(iban)
	}

	score := 0
	score += rec.points(50)
	res.Validations["recent"] = rec.found && rec.age >= 0 && rec.age <= 1
	score += res.check("readable", sig.Readable, 20)
	score += res.check("ibanFound", iban != "", 15)
	score += res.check("balanceFound", balance, 15)
	res.setScore(score)

	rec.report(res, "bank statement", in.now)
	if iban == "" {
		res.warn("IBAN not found on the statement")
	}
	if !balance {
		res.warn("Account balance not found")
	}
	if !sig.Readable {
		res.recommend("Upload a clearer scan of the document")
	}
	return res, nil
}

func maskIBAN(iban string) string {
	compact := make([]rune, 0, len(iban))
	for _, r := range iban {
		if r != ' ' {
			compact = append(compact, r)
		}
	}
	if len(compact) <= 4 {
		return string(compact)
	}
	return "****" + string(compact[len(compact)-4:])
}
