package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileURL(t *testing.T) {
	valid := []string{
		"https://minio.local/rental-documents/acme/payslip/bulletin.pdf",
		"http://10.0.0.5:9000/docs/avis.pdf",
		"file:///var/lib/rentdoc/acme/cni.jpg",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateFileURL(u), u)
	}

	invalid := map[string]string{
		"":                           "cannot be empty",
		"ftp://host/file.pdf":        "invalid URL scheme",
		"https:///nohost.pdf":        "no host",
		"https://user:pw@host/x.pdf": "credentials",
	}
	invalid["https://host/"+strings.Repeat("a", 2048)] = "longer than"
	for u, want := range invalid {
		err := ValidateFileURL(u)
		require.Error(t, err, u)
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateFileName(t *testing.T) {
	assert.NoError(t, ValidateFileName(""))
	assert.NoError(t, ValidateFileName("avis_imposition_2025.pdf"))
	assert.NoError(t, ValidateFileName("relevé de compte septembre.pdf"))

	assert.Error(t, ValidateFileName("../etc/passwd"))
	assert.Error(t, ValidateFileName(`C:\docs\cni.pdf`))
	assert.Error(t, ValidateFileName(".."))
	assert.Error(t, ValidateFileName("a\x00.pdf"))
	assert.Error(t, ValidateFileName(strings.Repeat("x", 256)))
}

func TestValidateUploadContentType(t *testing.T) {
	mt, err := ValidateUploadContentType("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mt)

	mt, err = ValidateUploadContentType("text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	mt, err = ValidateUploadContentType("")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mt)

	_, err = ValidateUploadContentType("application/zip")
	assert.Error(t, err)
	_, err = ValidateUploadContentType("not a type;;")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "bulletin.pdf", SanitizeString("  bul\x00let\x07in.pdf \r"))
	assert.Equal(t, "a\tb\nc", SanitizeString("a\tb\nc"))
}

func TestValidateIDs(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme_corp-01"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("acme corp"))
	assert.Error(t, ValidateTenantID(strings.Repeat("a", 65)))

	assert.NoError(t, ValidateRecordID("3f2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e"))
	assert.Error(t, ValidateRecordID(""))
	assert.Error(t, ValidateRecordID("3F2B8C1E-4D5A-4B6C-8D7E-9F0A1B2C3D4E"))
	assert.Error(t, ValidateRecordID("42"))
}

func TestPaginationBounds(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(1000))

	assert.Equal(t, 30, ValidateDays(-1))
	assert.Equal(t, 90, ValidateDays(90))
	assert.Equal(t, 365, ValidateDays(400))
}
