package documents

import (
	"fmt"
	"strconv"
)

// 2D-Doc document kind for "avis d'impot sur le revenu".
const TwoDDocKindTaxNotice = "28"

// 2D-Doc data field ids used on tax notices.
const (
	fieldReferenceIncome = "41"
	fieldTaxShares       = "43"
	fieldTaxNoticeRef    = "44"
	fieldIncomeYear      = "45"
)

func scoreTaxNotice(in scoreInput) (*AnalysisResult, error) {
	res := newResult(TypeTaxNotice)
	sig := in.signals
	expected := in.now.Year() - 1

	year := ExtractYear(in.req.FileName)
	if year == 0 && sig.TwoDDoc != nil {
		year, _ = strconv.Atoi(sig.TwoDDoc.Fields[fieldIncomeYear])
	}
	if year == 0 {
		year = expected
		res.warn(fmt.Sprintf("Fiscal year not found in file name, assuming %d", expected))
	}
	res.ExtractedData["fiscalYear"] = year
	res.ExtractedData["expectedYear"] = expected

	qr := &QRCodeData{}
	if d := sig.TwoDDoc; d != nil {
		qr.Present = true
		qr.Valid = d.Valid && d.DocumentKind == TwoDDocKindTaxNotice
		qr.Version = d.Version
		qr.Issuer = d.Issuer
		qr.DocumentKind = d.DocumentKind
		if !d.EmittedAt.IsZero() {
			emitted := d.EmittedAt
			qr.EmittedAt = &emitted
		}
		qr.FiscalYear, _ = strconv.Atoi(d.Fields[fieldIncomeYear])
		qr.ReferenceIncome = d.Fields[fieldReferenceIncome]
		qr.TaxNoticeRef = d.Fields[fieldTaxNoticeRef]
		qr.Fields = d.Fields

		if qr.ReferenceIncome != "" {
			res.ExtractedData["referenceIncome"] = qr.ReferenceIncome
		}
		if shares := d.Fields[fieldTaxShares]; shares != "" {
			res.ExtractedData["taxShares"] = shares
		}
		if d.DocumentKind != TwoDDocKindTaxNotice {
			res.warn(fmt.Sprintf("2D-Doc describes document kind %s, not a tax notice", d.DocumentKind))
		}
		if qr.FiscalYear != 0 && qr.FiscalYear != year {
			res.warn(fmt.Sprintf("2D-Doc income year %d differs from file name year %d", qr.FiscalYear, year))
		}
	}
	res.QRCodeData = qr

	complete := sig.Readable && (containsFold(sig.Text, "revenu fiscal de reference", "reference tax income") ||
		(sig.TwoDDoc != nil && sig.TwoDDoc.Fields[fieldReferenceIncome] != ""))

	score := 0
	score += res.check("correctYear", year == expected, 30)
	score += res.check("qrCodePresent", qr.Present, 25)
	score += res.check("qrCodeValid", qr.Valid, 25)
	score += res.check("complete", complete, 15)
	score += res.check("readable", sig.Readable, 5)
	res.setScore(score)

	if year != expected {
		res.fail(fmt.Sprintf("Tax notice covers %d income, expected %d", year, expected))
		res.recommend(fmt.Sprintf("Upload the latest tax notice (income %d)", expected))
		if year < expected {
			res.replaceBy(in.now)
		}
	}
	switch {
	case !qr.Present:
		res.warn("No 2D-Doc authentication code detected")
		res.recommend("Upload the original PDF from impots.gouv.fr so the 2D-Doc can be read")
	case !qr.Valid:
		res.warn("2D-Doc authentication code could not be validated")
	}
	if !complete {
		res.recommend("Provide every page of the tax notice")
	}
	if !sig.Readable {
		res.recommend("Upload a clearer scan of the document")
	}
	return res, nil
}
