package documents

import (
	"strings"
	"time"
)

// DocumentType tag sent by the client
type DocumentType string

const (
	TypeTaxNotice          DocumentType = "tax_notice"
	TypePayslip            DocumentType = "payslip"
	TypeIdentity           DocumentType = "identity"
	TypeBankStatement      DocumentType = "bank_statement"
	TypeEmploymentContract DocumentType = "employment_contract"
)

// French tags used by the rental portal front-end.
var typeAliases = map[string]DocumentType{
	"avis_imposition":  TypeTaxNotice,
	"bulletin_salaire": TypePayslip,
	"piece_identite":   TypeIdentity,
	"releve_bancaire":  TypeBankStatement,
	"contrat_travail":  TypeEmploymentContract,
}

// ParseType normalises a tag. Unknown tags are returned unchanged with ok=false.
func ParseType(tag string) (DocumentType, bool) {
	t := strings.ToLower(strings.TrimSpace(tag))
	switch DocumentType(t) {
	case TypeTaxNotice, TypePayslip, TypeIdentity, TypeBankStatement, TypeEmploymentContract:
		return DocumentType(t), true
	}
	if alias, ok := typeAliases[t]; ok {
		return alias, true
	}
	return DocumentType(tag), false
}

// Request is one document to analyse.
type Request struct {
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	DocumentType string `json:"documentType"`

	// TenantID scopes which stored documents may be read. Empty is unscoped.
	TenantID string `json:"-"`
}

// QRCodeData describes the 2D-Doc found on a tax notice.
type QRCodeData struct {
	Present         bool              `json:"present"`
	Valid           bool              `json:"valid"`
	Version         string            `json:"version,omitempty"`
	Issuer          string            `json:"issuer,omitempty"`
	DocumentKind    string            `json:"documentKind,omitempty"`
	EmittedAt       *time.Time        `json:"emittedAt,omitempty"`
	FiscalYear      int               `json:"fiscalYear,omitempty"`
	ReferenceIncome string            `json:"referenceIncome,omitempty"`
	TaxNoticeRef    string            `json:"taxNoticeRef,omitempty"`
	Fields          map[string]string `json:"fields,omitempty"`
}

// AnalysisResult is the verdict for one document. It is built once per call
// and never mutated after Analyze returns.
type AnalysisResult struct {
	DocumentType    DocumentType    `json:"documentType"`
	ConfidenceScore int             `json:"confidenceScore"`
	QRCodeData      *QRCodeData     `json:"qrCodeData,omitempty"`
	ExtractedData   map[string]any  `json:"extractedData"`
	Validations     map[string]bool `json:"validations"`
	Recommendations []string        `json:"recommendations"`
	Warnings        []string        `json:"warnings"`
	Errors          []string        `json:"errors"`
	NeedsUpdate     bool            `json:"needsUpdate"`
	NextUpdateDate  *time.Time      `json:"nextUpdateDate,omitempty"`
	AutoValidated   bool            `json:"autoValidated"`
}

func newResult(t DocumentType) *AnalysisResult {
	return &AnalysisResult{
		DocumentType:    t,
		ExtractedData:   map[string]any{},
		Validations:     map[string]bool{},
		Recommendations: []string{},
		Warnings:        []string{},
		Errors:          []string{},
	}
}

// check records a validation and returns the points it earns.
func (r *AnalysisResult) check(name string, ok bool, points int) int {
	r.Validations[name] = ok
	if ok {
		return points
	}
	return 0
}

func (r *AnalysisResult) recommend(msg string) { r.Recommendations = append(r.Recommendations, msg) }
func (r *AnalysisResult) warn(msg string)      { r.Warnings = append(r.Warnings, msg) }
func (r *AnalysisResult) fail(msg string)      { r.Errors = append(r.Errors, msg) }

// replaceBy flags the document for replacement, due no later than when.
func (r *AnalysisResult) replaceBy(when time.Time) {
	r.NeedsUpdate = true
	if r.NextUpdateDate == nil || when.Before(*r.NextUpdateDate) {
		r.NextUpdateDate = &when
	}
}

func (r *AnalysisResult) setScore(score int) {
	switch {
	case score < 0:
		score = 0
	case score > 100:
		score = 100
	}
	r.ConfidenceScore = score
}
