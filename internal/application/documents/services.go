package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/rentdoc/internal/application"
	"github.com/bryanwahyu/rentdoc/internal/domain/analyses"
	domain "github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/logger"
)

// Analyzer is satisfied by *domain.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.Request) (*domain.AnalysisResult, error)
}

// Recorder receives one event per finished analysis, for metrics.
type Recorder interface {
	AnalysisDone(res *domain.AnalysisResult, degraded bool)
	Uploaded()
}

// Service implements use-cases untuk dokumen sewa.
// Repo, Files and Metrics are optional.
type Service struct {
	Analyzer Analyzer
	Repo     analyses.Repository
	Files    domain.FileStore
	Clock    application.Clock
	Metrics  Recorder
}

//
// ==== USE CASES ====
//

// AnalyzeCommand untuk analisa satu dokumen
type AnalyzeCommand struct {
	TenantID     string
	FileURL      string
	FileName     string
	DocumentType string
}

type AnalyzeResult struct {
	ID       string                 `json:"id,omitempty"`
	Analysis *domain.AnalysisResult `json:"analysis"`
}

// Analyze scores one document and records the verdict. Analysis failures
// yield the degraded verdict, not an error. Only invalid input is an error.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	req := domain.Request{
		FileURL:      strings.TrimSpace(cmd.FileURL),
		FileName:     strings.TrimSpace(cmd.FileName),
		DocumentType: strings.TrimSpace(cmd.DocumentType),
		TenantID:     cmd.TenantID,
	}
	if req.FileURL == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: fileUrl is required", domain.ErrInvalidRequest)
	}
	if req.DocumentType == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: documentType is required", domain.ErrInvalidRequest)
	}
	if req.FileName == "" {
		req.FileName = fileNameFromURL(req.FileURL)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"tenant":       cmd.TenantID,
		"documentType": req.DocumentType,
		"fileName":     req.FileName,
	})

	res, err := s.Analyzer.Analyze(ctx, req)
	degraded := err != nil
	if degraded {
		log.WithError(err).Warn("document analysis degraded")
	} else {
		log.WithFields(logrus.Fields{
			"score":         res.ConfidenceScore,
			"autoValidated": res.AutoValidated,
		}).Info("document analysed")
	}
	if s.Metrics != nil {
		s.Metrics.AnalysisDone(res, degraded)
	}

	out := AnalyzeResult{Analysis: res}
	if s.Repo == nil {
		return out, nil
	}
	rec, err := s.record(cmd.TenantID, req, res, degraded)
	if err == nil {
		err = s.Repo.Save(ctx, rec)
	}
	if err != nil {
		// verdict is still valid without the audit row
		log.WithError(err).Error("failed to record analysis")
		return out, nil
	}
	out.ID = string(rec.ID)
	return out, nil
}

func (s *Service) record(tenant string, req domain.Request, res *domain.AnalysisResult, degraded bool) (*analyses.Record, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	status := analyses.StatusAnalyzed
	if degraded {
		status = analyses.StatusDegraded
	}
	return &analyses.Record{
		ID:              analyses.RecordID(uuid.New().String()),
		TenantID:        tenant,
		FileURL:         req.FileURL,
		FileName:        req.FileName,
		DocumentType:    string(res.DocumentType),
		ConfidenceScore: res.ConfidenceScore,
		AutoValidated:   res.AutoValidated,
		NeedsUpdate:     res.NeedsUpdate,
		NextUpdateDate:  res.NextUpdateDate,
		Status:          status,
		Result:          raw,
		CreatedAt:       s.now().UTC(),
	}, nil
}

// UploadCommand untuk upload dokumen ke file store
type UploadCommand struct {
	TenantID     string
	DocumentType string
	FileName     string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// Upload stores the document and returns its URL.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (string, error) {
	if s.Files == nil {
		return "", fmt.Errorf("%w: uploads are disabled", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(cmd.DocumentType) == "" {
		return "", fmt.Errorf("%w: documentType is required", domain.ErrInvalidRequest)
	}
	t, _ := domain.ParseType(cmd.DocumentType)
	key := fmt.Sprintf("%s/%s/%s-%s", cmd.TenantID, keySegment(string(t)), uuid.New().String(), keySegment(path.Base(cmd.FileName)))
	fileURL, err := s.Files.Put(ctx, key, cmd.Body, cmd.Size, cmd.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", cmd.FileName, err)
	}
	if s.Metrics != nil {
		s.Metrics.Uploaded()
	}
	logger.Log.WithFields(logrus.Fields{"tenant": cmd.TenantID, "key": key}).Info("document uploaded")
	return fileURL, nil
}

// UploadAndAnalyze → upload dokumen lalu langsung dianalisa
func (s *Service) UploadAndAnalyze(ctx context.Context, cmd UploadCommand) (AnalyzeResult, error) {
	fileURL, err := s.Upload(ctx, cmd)
	if err != nil {
		return AnalyzeResult{}, err
	}
	return s.Analyze(ctx, AnalyzeCommand{
		TenantID:     cmd.TenantID,
		FileURL:      fileURL,
		FileName:     cmd.FileName,
		DocumentType: cmd.DocumentType,
	})
}

// List ambil riwayat analisa per halaman
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int, docType string) (analyses.PaginatedResult, error) {
	if s.Repo == nil {
		return analyses.PaginatedResult{Data: []*analyses.Record{}, Page: 1, PageSize: pageSize}, nil
	}
	if docType != "" {
		if t, ok := domain.ParseType(docType); ok {
			docType = string(t)
		}
	}
	return s.Repo.Paginate(ctx, tenant, page, pageSize, docType)
}

// Get ambil 1 analisa by id
func (s *Service) Get(ctx context.Context, tenant string, id string) (*analyses.Record, error) {
	if s.Repo == nil {
		return nil, analyses.ErrNotFound
	}
	return s.Repo.Get(ctx, tenant, analyses.RecordID(id))
}

// Summary rekap analisa N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) ([]analyses.TypeSummary, error) {
	if s.Repo == nil {
		return []analyses.TypeSummary{}, nil
	}
	return s.Repo.Summary(ctx, tenant, sinceDays)
}

// DueForUpdate lists documents the tenant must refresh by now.
func (s *Service) DueForUpdate(ctx context.Context, tenant string, limit int) ([]*analyses.Record, error) {
	if s.Repo == nil {
		return []*analyses.Record{}, nil
	}
	return s.Repo.DueForUpdate(ctx, tenant, s.now(), limit)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// fileNameFromURL falls back to the last path segment of the URL.
func fileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return ""
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil || name == "/" || name == "." {
		return ""
	}
	return name
}

// keySegment keeps object keys to a safe character set.
func keySegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" || s == "." || s == ".." {
		return "document"
	}
	return s
}
