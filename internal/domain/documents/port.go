package documents

import (
	"context"
	"io"
	"time"
)

// Signals are the facts a SignalSource could establish about the stored
// document. Zero values mean "not established".
type Signals struct {
	Source           string
	Readable         bool
	PageCount        int
	Text             string
	SignaturePresent bool
	TwoDDoc          *TwoDDoc
	MRZ              *MRZ
}

// TwoDDoc is a decoded 2D-Doc (French authenticated barcode) payload.
type TwoDDoc struct {
	Version          string
	Issuer           string
	CertificateID    string
	EmittedAt        time.Time
	SignedAt         time.Time
	DocumentKind     string
	Fields           map[string]string
	SignaturePresent bool
	// Valid means structurally well formed with a signature segment. The
	// signature itself is not checked against the issuer certificate.
	Valid bool
}

// MRZ is a decoded ICAO 9303 machine readable zone.
type MRZ struct {
	Format         string // TD1 | TD2 | TD3
	DocumentCode   string
	IssuingCountry string
	DocumentNumber string
	BirthDate      time.Time
	ExpiryDate     time.Time
	Valid          bool // every field check digit matched
}

// SignalSource inspects a document and reports deterministic signals.
type SignalSource interface {
	Inspect(ctx context.Context, req Request) (Signals, error)
}

// AutoValidator decides whether a verdict can skip manual review.
type AutoValidator interface {
	AutoValidate(ctx context.Context, r *AnalysisResult) (bool, error)
}

// FileStore port untuk penyimpanan dokumen
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Open returns ErrNotStored when fileURL does not belong to this store
	// or, for a non-empty tenant, lies outside that tenant's prefix.
	Open(ctx context.Context, tenant, fileURL string) (io.ReadCloser, error)
}

// Clock supaya gampang ditest
type Clock interface {
	Now() time.Time
}
