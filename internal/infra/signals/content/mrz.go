package content

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

var rxMRZLine = regexp.MustCompile(`^(?:[A-Z0-9<]{30}|[A-Z0-9<]{36}|[A-Z0-9<]{44})$`)

var mrzWeights = [3]int{7, 3, 1}

func mrzCheckDigit(s string) int {
	sum := 0
	for i, c := range s {
		v := 0
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		}
		sum += v * mrzWeights[i%3]
	}
	return sum % 10
}

func mrzCheck(field string, digit byte) bool {
	if digit < '0' || digit > '9' {
		return false
	}
	return mrzCheckDigit(field) == int(digit-'0')
}

// mrzDate parses YYMMDD. Years above pivot belong to the previous century.
func mrzDate(s string, pivot int) (time.Time, bool) {
	if len(s) != 6 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return time.Time{}, false
	}
	yy, mm, dd := n/10000, n/100%100, n%100
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return time.Time{}, false
	}
	year := 2000 + yy
	if year > pivot {
		year -= 100
	}
	return time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC), true
}

func mrzLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(l), " ", ""))
		out = append(out, l)
	}
	return out
}

// findMRZ returns the first TD3, TD2 or TD1 zone found in text.
func findMRZ(text string) *documents.MRZ {
	lines := mrzLines(text)
	for i := range lines {
		if !rxMRZLine.MatchString(lines[i]) || i+1 >= len(lines) || len(lines[i+1]) != len(lines[i]) {
			continue
		}
		switch len(lines[i]) {
		case 44:
			return decodeTD23("TD3", lines[i], lines[i+1])
		case 36:
			return decodeTD23("TD2", lines[i], lines[i+1])
		case 30:
			return decodeTD1(lines[i], lines[i+1])
		}
	}
	return nil
}

// TD2 and TD3 share the second line layout up to the expiry date.
func decodeTD23(format, l1, l2 string) *documents.MRZ {
	m := &documents.MRZ{
		Format:         format,
		DocumentCode:   strings.TrimRight(l1[0:2], "<"),
		IssuingCountry: strings.TrimRight(l1[2:5], "<"),
		DocumentNumber: strings.TrimRight(l2[0:9], "<"),
	}
	expiry, expOK := mrzDate(l2[21:27], 2099)
	birth, birthOK := mrzDate(l2[13:19], expiry.Year())
	m.ExpiryDate, m.BirthDate = expiry, birth
	m.Valid = expOK && birthOK &&
		mrzCheck(l2[0:9], l2[9]) &&
		mrzCheck(l2[13:19], l2[19]) &&
		mrzCheck(l2[21:27], l2[27])
	return m
}

func decodeTD1(l1, l2 string) *documents.MRZ {
	m := &documents.MRZ{
		Format:         "TD1",
		DocumentCode:   strings.TrimRight(l1[0:2], "<"),
		IssuingCountry: strings.TrimRight(l1[2:5], "<"),
		DocumentNumber: strings.TrimRight(l1[5:14], "<"),
	}
	expiry, expOK := mrzDate(l2[8:14], 2099)
	birth, birthOK := mrzDate(l2[0:6], expiry.Year())
	m.ExpiryDate, m.BirthDate = expiry, birth
	m.Valid = expOK && birthOK &&
		mrzCheck(l1[5:14], l1[14]) &&
		mrzCheck(l2[0:6], l2[6]) &&
		mrzCheck(l2[8:14], l2[14])
	return m
}
