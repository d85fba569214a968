package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	domain "github.com/bryanwahyu/rentdoc/internal/domain/analyses"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save insert/update analysis record
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO document_analyses
(id, tenant_id, file_url, file_name, document_type, confidence_score,
 auto_validated, needs_update, next_update_date, status, result, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 confidence_score=VALUES(confidence_score),
 auto_validated=VALUES(auto_validated), needs_update=VALUES(needs_update),
 next_update_date=VALUES(next_update_date), status=VALUES(status), result=VALUES(result);
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, stringOrDash(rec.TenantID), rec.FileURL, rec.FileName,
		stringOrDash(rec.DocumentType), rec.ConfidenceScore,
		rec.AutoValidated, rec.NeedsUpdate, nullTime(rec.NextUpdateDate),
		stringOrDash(string(rec.Status)), []byte(rec.Result), created,
	)
	if err != nil {
		return fmt.Errorf("saving analysis %s: %w", rec.ID, err)
	}
	return nil
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.RecordID) (*domain.Record, error) {
	q := `SELECT ` + recordColumns + `
FROM document_analyses
WHERE tenant_id=? AND id=? LIMIT 1;`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, tenant, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// Paginate with offset + limit (classic pagination)
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int, docType string) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	where := "WHERE tenant_id=?"
	args := []any{tenant}
	if docType != "" {
		where += " AND document_type=?"
		args = append(args, docType)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_analyses "+where, args...).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("counting analyses: %w", err)
	}

	q := `SELECT ` + recordColumns + `
FROM document_analyses ` + where + `
ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, pageSize, offset)...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	data := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		data = append(data, rec)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	return domain.PaginatedResult{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Summary per document type since N days
func (r *AnalysisRepository) Summary(ctx context.Context, tenant string, sinceDays int) ([]domain.TypeSummary, error) {
	if sinceDays <= 0 {
		sinceDays = 30
	}
	cut := time.Now().UTC().AddDate(0, 0, -sinceDays)

	const q = `
SELECT document_type,
       COUNT(*),
       COALESCE(SUM(CASE WHEN auto_validated THEN 1 ELSE 0 END),0),
       COALESCE(SUM(CASE WHEN status='degraded' THEN 1 ELSE 0 END),0),
       COALESCE(AVG(confidence_score),0)
FROM document_analyses
WHERE tenant_id=? AND created_at >= ?
GROUP BY document_type
ORDER BY document_type;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, cut)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()

	out := []domain.TypeSummary{}
	for rows.Next() {
		var s domain.TypeSummary
		if err := rows.Scan(&s.DocumentType, &s.Total, &s.AutoValidated, &s.Degraded, &s.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DueForUpdate lists records that need replacing or whose refresh date has
// passed, earliest date first.
func (r *AnalysisRepository) DueForUpdate(ctx context.Context, tenant string, now time.Time, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + recordColumns + `
FROM document_analyses
WHERE tenant_id=? AND (needs_update OR (next_update_date IS NOT NULL AND next_update_date <= ?))
ORDER BY next_update_date IS NULL, next_update_date ASC LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, now, limit)
	if err != nil {
		return nil, fmt.Errorf("querying due analyses: %w", err)
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
