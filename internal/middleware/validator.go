package middleware

import (
	"fmt"
	"mime"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const (
	maxFileURLLen  = 2048
	maxFileNameLen = 255
)

var (
	rxTenantID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	rxRecordID = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
)

// Content types accepted on upload.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"text/plain":      true,
}

// ValidateFileURL checks the document URL. Only the configured file store
// is ever read, so foreign hosts are accepted and simply not inspected.
func ValidateFileURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("fileUrl cannot be empty")
	}
	if len(rawURL) > maxFileURLLen {
		return fmt.Errorf("fileUrl longer than %d characters", maxFileURLLen)
	}

	// Parse URL
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	// Check scheme
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("fileUrl has no host")
		}
	case "file":
	default:
		return fmt.Errorf("invalid URL scheme: %q (allowed: http, https, file)", u.Scheme)
	}

	// credentials in the URL would end up in the audit trail
	if u.User != nil {
		return fmt.Errorf("credentials in fileUrl are not allowed")
	}
	return nil
}

// ValidateFileName rejects names that cannot be a plain file name.
func ValidateFileName(name string) error {
	if name == "" {
		return nil // derived from the URL
	}
	if len(name) > maxFileNameLen {
		return fmt.Errorf("fileName longer than %d characters", maxFileNameLen)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("fileName is not valid UTF-8")
	}
	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return fmt.Errorf("fileName must not contain path separators")
	}
	return nil
}

// ValidateUploadContentType checks the declared MIME type of an upload.
func ValidateUploadContentType(contentType string) (string, error) {
	if contentType == "" {
		return "application/octet-stream", nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid content type: %w", err)
	}
	if mt != "application/octet-stream" && !allowedUploadTypes[mt] {
		return "", fmt.Errorf("content type %s not accepted (pdf, jpeg, png, text)", mt)
	}
	return mt, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	if !rxTenantID.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateRecordID validates analysis ID format
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	if !rxRecordID.MatchString(id) {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 30 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
