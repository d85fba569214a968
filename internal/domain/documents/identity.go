package documents

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Warn this long before an identity document expires.
const expiryWarningDays = 90

var rxExpiryPhrase = regexp.MustCompile(`(?:expire le|expiration|valable jusqu.au|valid until|date of expiry|expiry date|expires)\D{0,12}(\d{2})[./-](\d{2})[./-](\d{4})`)

func expiryFromText(text string) (time.Time, bool) {
	m := rxExpiryPhrase.FindStringSubmatch(fold(text))
	if m == nil {
		return time.Time{}, false
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
}

func idTypeFromMRZ(code string) string {
	if code == "" {
		return Unknown
	}
	switch code[0] {
	case 'P':
		return IDPassport
	case 'I':
		return IDNationalID
	case 'A', 'C', 'R':
		return IDResidencePermit
	}
	return Unknown
}

func scoreIdentity(in scoreInput) (*AnalysisResult, error) {
	res := newResult(TypeIdentity)
	sig := in.signals

	idType := DetectIDType(in.req.FileName)
	if idType == Unknown && sig.MRZ != nil {
		idType = idTypeFromMRZ(sig.MRZ.DocumentCode)
	}
	side := DetectSide(in.req.FileName)
	if side == Unknown && sig.MRZ != nil && sig.MRZ.Format == "TD1" {
		// ID cards carry the MRZ on the back.
		side = SideBack
	}
	res.ExtractedData["idType"] = idType
	res.ExtractedData["side"] = side

	var expiry time.Time
	expiryKnown := false
	if sig.MRZ != nil && sig.MRZ.Valid {
		expiry, expiryKnown = sig.MRZ.ExpiryDate, true
		res.ExtractedData["issuingCountry"] = sig.MRZ.IssuingCountry
	} else if t, ok := expiryFromText(sig.Text); ok {
		expiry, expiryKnown = t, true
	}

	notExpired := expiryKnown && expiry.After(in.now)
	expiringSoon := notExpired && expiry.Before(in.now.AddDate(0, 0, expiryWarningDays))
	if expiryKnown {
		res.ExtractedData["expirationDate"] = expiry.Format("2006-01-02")
		res.ExtractedData["daysUntilExpiry"] = int(expiry.Sub(in.now).Hours() / 24)
	}

	score := 0
	score += res.check("readable", sig.Readable, 20)
	score += res.check("typeDetected", idType != Unknown, 15)
	score += res.check("sideDetected", side != Unknown, 10)
	score += res.check("notExpired", notExpired, 40)
	score += res.check("mrzValid", sig.MRZ != nil && sig.MRZ.Valid, 15)
	res.setScore(score)

	switch {
	case !expiryKnown:
		res.warn("Expiration date could not be determined")
		res.recommend("Upload a scan where the machine readable zone is visible")
	case !notExpired:
		res.fail(fmt.Sprintf("Identity document expired on %s", expiry.Format("2006-01-02")))
		res.replaceBy(in.now)
		res.recommend("Provide a valid identity document")
	case expiringSoon:
		res.warn(fmt.Sprintf("Identity document expires on %s", expiry.Format("2006-01-02")))
		res.replaceBy(expiry)
	}
	if sig.MRZ != nil && !sig.MRZ.Valid {
		res.warn("Machine readable zone check digits do not match")
	}
	if idType == Unknown {
		res.warn("Identity document type not recognised")
	}
	if idType != IDPassport && (side == SideFront || side == SideBack) {
		res.warn("Only one side provided")
		res.recommend("Upload both sides of the document")
	}
	if !sig.Readable {
		res.recommend("Upload a clearer scan of the document")
	}
	return res, nil
}
