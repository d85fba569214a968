package content

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

const (
	gs = '\x1d' // end of a variable length field
	rs = '\x1e' // truncation marker
	us = '\x1f' // start of the signature
)

var (
	rx2DDocHeader    = regexp.MustCompile(`DC0[234][A-Z0-9]{4}[A-Z0-9]{4}[0-9A-F]{4}[0-9A-F]{4}[A-Z0-9]{2}`)
	rx2DDocSignature = regexp.MustCompile(`^[A-Z2-7]{16,}=*$`)
	rx2DDocFieldID   = regexp.MustCompile(`^[0-9A-Z]{2}$`)

	// Printed transcriptions spell the control characters out.
	controlMarkers = strings.NewReplacer("<GS>", string(gs), "<RS>", string(rs), "<US>", string(us))

	twoDDocEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Fixed length data fields; every other field ends at GS.
var twoDDocFixedFields = map[string]int{
	"45": 4,  // income year
	"47": 13, // tax id of the first declarant
	"49": 13, // tax id of the second declarant
	"4A": 8,  // collection date
}

func twoDDocHeaderLen(version string) int {
	switch version {
	case "02":
		return 22
	case "03":
		return 24
	case "04":
		return 26
	}
	return 0
}

// find2DDoc locates the first 2D-Doc payload in text and decodes it.
func find2DDoc(text string) *documents.TwoDDoc {
	text = controlMarkers.Replace(text)
	loc := rx2DDocHeader.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	raw := text[loc[0]:]
	if end := strings.IndexAny(raw, "\r\n"); end >= 0 {
		raw = raw[:end]
	}
	return decode2DDoc(raw)
}

func decode2DDoc(raw string) *documents.TwoDDoc {
	version := raw[2:4]
	hl := twoDDocHeaderLen(version)
	if hl == 0 || len(raw) < hl {
		return nil
	}
	doc := &documents.TwoDDoc{
		Version:       version,
		Issuer:        raw[4:8],
		CertificateID: raw[8:12],
		DocumentKind:  raw[20:22],
		Fields:        map[string]string{},
	}
	emitted, emittedOK := twoDDocDate(raw[12:16])
	doc.EmittedAt = emitted
	doc.SignedAt, _ = twoDDocDate(raw[16:20])

	body := raw[hl:]
	message, signature := body, ""
	if i := strings.IndexRune(body, us); i >= 0 {
		message, signature = body[:i], strings.TrimSpace(body[i+1:])
	}
	message = strings.ReplaceAll(message, string(rs), "")

	fieldsOK := parse2DDocFields(message, doc.Fields)
	doc.SignaturePresent = rx2DDocSignature.MatchString(signature)
	doc.Valid = emittedOK && fieldsOK && len(doc.Fields) > 0 && doc.SignaturePresent
	return doc
}

// twoDDocDate decodes a day count since 2000-01-01 in hex. FFFF means unset.
func twoDDocDate(hex string) (time.Time, bool) {
	if hex == "FFFF" {
		return time.Time{}, false
	}
	days, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return time.Time{}, false
	}
	return twoDDocEpoch.AddDate(0, 0, int(days)), true
}

func parse2DDocFields(msg string, out map[string]string) bool {
	for len(msg) > 0 {
		if len(msg) < 2 || !rx2DDocFieldID.MatchString(msg[:2]) {
			return false
		}
		id := msg[:2]
		msg = msg[2:]
		if n, ok := twoDDocFixedFields[id]; ok {
			if len(msg) < n {
				return false
			}
			out[id] = msg[:n]
			msg = strings.TrimPrefix(msg[n:], string(gs))
			continue
		}
		end := strings.IndexRune(msg, gs)
		if end < 0 {
			out[id] = msg
			return true
		}
		out[id] = msg[:end]
		msg = msg[end+1:]
	}
	return true
}
