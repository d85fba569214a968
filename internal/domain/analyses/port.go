package analyses

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no record matches.
var ErrNotFound = errors.New("analysis not found")

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, tenant string, id RecordID) (*Record, error)
	// docType filters when non-empty
	Paginate(ctx context.Context, tenant string, page, pageSize int, docType string) (PaginatedResult, error)
	Summary(ctx context.Context, tenant string, sinceDays int) ([]TypeSummary, error)
	// DueForUpdate lists records flagged for replacement or whose next
	// update date is at or before now.
	DueForUpdate(ctx context.Context, tenant string, now time.Time, limit int) ([]*Record, error)
}
