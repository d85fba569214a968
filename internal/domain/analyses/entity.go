package analyses

import (
	"encoding/json"
	"time"
)

// RecordID identifier type
type RecordID string

// Status of a recorded analysis
type Status string

const (
	StatusAnalyzed Status = "analyzed"
	StatusDegraded Status = "degraded"
)

// Record is one analysis kept for auditing and follow-up.
type Record struct {
	ID              RecordID        `json:"id"`
	TenantID        string          `json:"tenantId"`
	FileURL         string          `json:"fileUrl"`
	FileName        string          `json:"fileName"`
	DocumentType    string          `json:"documentType"`
	ConfidenceScore int             `json:"confidenceScore"`
	AutoValidated   bool            `json:"autoValidated"`
	NeedsUpdate     bool            `json:"needsUpdate"`
	NextUpdateDate  *time.Time      `json:"nextUpdateDate,omitempty"`
	Status          Status          `json:"status"`
	Result          json.RawMessage `json:"result"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TypeSummary aggregates records of one document type.
type TypeSummary struct {
	DocumentType  string  `json:"documentType"`
	Total         int     `json:"total"`
	AutoValidated int     `json:"autoValidated"`
	Degraded      int     `json:"degraded"`
	AverageScore  float64 `json:"averageScore"`
}
