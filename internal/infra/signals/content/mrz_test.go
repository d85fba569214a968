package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	td3Line1       = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	td3Line2       = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
	td3Line2Future = "L898902C36UTO7408122F3004157ZE184226B<<<<<10"

	td1Line1       = "I<UTOD231458907<<<<<<<<<<<<<<<"
	td1Line2       = "7408122F1204159UTO<<<<<<<<<<<6"
	td1Line2Future = "7408122F3101012UTO<<<<<<<<<<<6"
	td1Line3       = "ERIKSSON<<ANNA<MARIA<<<<<<<<<<"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMRZCheckDigit(t *testing.T) {
	assert.Equal(t, 6, mrzCheckDigit("L898902C3"))
	assert.Equal(t, 2, mrzCheckDigit("740812"))
	assert.Equal(t, 9, mrzCheckDigit("120415"))
	assert.Equal(t, 7, mrzCheckDigit("D23145890"))
	assert.Equal(t, 0, mrzCheckDigit("<<<<<<<<<"))

	assert.True(t, mrzCheck("L898902C3", '6'))
	assert.False(t, mrzCheck("L898902C3", '5'))
	assert.False(t, mrzCheck("L898902C3", '<'))
}

func TestMRZDate(t *testing.T) {
	d, ok := mrzDate("740812", 2012)
	require.True(t, ok)
	assert.Equal(t, date(1974, time.August, 12), d)

	d, ok = mrzDate("300415", 2099)
	require.True(t, ok)
	assert.Equal(t, date(2030, time.April, 15), d)

	for _, bad := range []string{"741312", "740800", "7408", "74O812"} {
		_, ok := mrzDate(bad, 2099)
		assert.False(t, ok, bad)
	}
}

func TestFindMRZPassport(t *testing.T) {
	text := "PASSPORT\nUtopia\n" + td3Line1 + "\n" + td3Line2Future + "\n"

	m := findMRZ(text)

	require.NotNil(t, m)
	assert.Equal(t, "TD3", m.Format)
	assert.Equal(t, "P", m.DocumentCode)
	assert.Equal(t, "UTO", m.IssuingCountry)
	assert.Equal(t, "L898902C3", m.DocumentNumber)
	assert.Equal(t, date(1974, time.August, 12), m.BirthDate)
	assert.Equal(t, date(2030, time.April, 15), m.ExpiryDate)
	assert.True(t, m.Valid)
}

func TestFindMRZExpiredPassport(t *testing.T) {
	m := findMRZ(td3Line1 + "\n" + td3Line2)

	require.NotNil(t, m)
	assert.True(t, m.Valid)
	assert.Equal(t, date(2012, time.April, 15), m.ExpiryDate)
}

func TestFindMRZToleratesOCRSpacing(t *testing.T) {
	spaced := "p<uto eriksson<<anna<maria<<<<<<<<<<<<<<<<<<<\n  L898902C36 UTO7408122F3004157ZE184226B<<<<<10  "

	m := findMRZ(spaced)

	require.NotNil(t, m)
	assert.True(t, m.Valid)
}

func TestFindMRZBadCheckDigit(t *testing.T) {
	tampered := "L898902C35UTO7408122F3004157ZE184226B<<<<<10"

	m := findMRZ(td3Line1 + "\n" + tampered)

	require.NotNil(t, m)
	assert.False(t, m.Valid)
	assert.Equal(t, date(2030, time.April, 15), m.ExpiryDate)
}

func TestFindMRZIDCard(t *testing.T) {
	m := findMRZ(td1Line1 + "\n" + td1Line2Future + "\n" + td1Line3)

	require.NotNil(t, m)
	assert.Equal(t, "TD1", m.Format)
	assert.Equal(t, "I", m.DocumentCode)
	assert.Equal(t, "UTO", m.IssuingCountry)
	assert.Equal(t, "D23145890", m.DocumentNumber)
	assert.Equal(t, date(1974, time.August, 12), m.BirthDate)
	assert.Equal(t, date(2031, time.January, 1), m.ExpiryDate)
	assert.True(t, m.Valid)

	expired := findMRZ(td1Line1 + "\n" + td1Line2 + "\n" + td1Line3)
	require.NotNil(t, expired)
	assert.True(t, expired.Valid)
	assert.Equal(t, date(2012, time.April, 15), expired.ExpiryDate)
}

func TestFindMRZNone(t *testing.T) {
	assert.Nil(t, findMRZ(""))
	assert.Nil(t, findMRZ("Net a payer 2 480,15\nSIRET 123 456 789 00012"))
	// a lone line is not a zone
	assert.Nil(t, findMRZ(td3Line1))
}
