package postgres

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/bryanwahyu/rentdoc/internal/domain/analyses"
)

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// lib/pq sends []byte as bytea, jsonb wants text
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const recordColumns = `id, tenant_id, file_url, file_name, document_type, confidence_score,
       auto_validated, needs_update, next_update_date, status, result, created_at`

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var next sql.NullTime
	var result []byte
	if err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.FileURL, &rec.FileName, &rec.DocumentType, &rec.ConfidenceScore,
		&rec.AutoValidated, &rec.NeedsUpdate, &next, &rec.Status, &result, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	if next.Valid {
		t := next.Time
		rec.NextUpdateDate = &t
	}
	rec.Result = result
	return &rec, nil
}
