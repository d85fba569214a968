package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxExcerpt bounds how much extracted text is sent to the model.
const maxExcerpt = 6000

// SignalsSystemPrompt provides strict directions and schema for JSON output.
func SignalsSystemPrompt() string {
	return `You review supporting documents submitted with a French rental application. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Only report what the excerpt shows. Use false or 0 when unsure.
- readable is true when the excerpt is legible text from the document.
- signaturePresent is true when the document shows a handwritten or electronic signature.
- pageCount is the number of pages you can identify, 0 if unknown.
- detectedType is one of: tax_notice, payslip, identity, bank_statement, employment_contract, unknown.

Schema (example with empty values):
{
  "readable": false,
  "signaturePresent": false,
  "pageCount": 0,
  "detectedType": "unknown",
  "keyFacts": ["<string>"]
}`
}

// SignalsUserPrompt builds the user message around the declared document and
// the text the content inspector extracted.
func SignalsUserPrompt(fileName, documentType, text string) string {
	if len(text) > maxExcerpt {
		n := maxExcerpt
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	if strings.TrimSpace(text) == "" {
		text = "(no text could be extracted)"
	}
	return fmt.Sprintf("Declared type: %s\nFile name: %s\nExcerpt:\n%s", documentType, fileName, text)
}

// SignalsAnswer matches the schema used by the system prompt.
type SignalsAnswer struct {
	Readable         bool     `json:"readable"`
	SignaturePresent bool     `json:"signaturePresent"`
	PageCount        int      `json:"pageCount"`
	DetectedType     string   `json:"detectedType"`
	KeyFacts         []string `json:"keyFacts"`
}
