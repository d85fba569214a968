package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	appdocs "github.com/bryanwahyu/rentdoc/internal/application/documents"
	"github.com/bryanwahyu/rentdoc/internal/domain/ai"
	"github.com/bryanwahyu/rentdoc/internal/domain/analyses"
	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/domain/rent"
	"github.com/bryanwahyu/rentdoc/internal/logger"
	"github.com/bryanwahyu/rentdoc/internal/middleware"
)

// tenant used on the unscoped endpoint when auth is disabled
const defaultTenant = "default"

// Options configure the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// APIKeys maps tenant -> key; empty disables auth.
	APIKeys        map[string]string
	RateRPS        float64
	RateBurst      int
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	docsSvc        *appdocs.Service
	maxUploadBytes int64
}

func NewRouter(docsSvc *appdocs.Service, opts Options) http.Handler {
	r := &Router{docsSvc: docsSvc, maxUploadBytes: opts.MaxUploadBytes}
	if r.maxUploadBytes <= 0 {
		r.maxUploadBytes = 10 << 20
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.RateRPS > 0 {
		mux.Use(middleware.RateLimitMiddleware(opts.RateRPS, opts.RateBurst))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler(opts.HealthCheckers))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/api/documents/analyze", r.wrap(r.handleAnalyze))

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)
		rt.Post("/documents/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/documents", r.wrap(r.handleUpload))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/due", r.wrap(r.handleDue))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/charges/regularize", r.wrap(r.handleRegularize))
		rt.Post("/rent/revise", r.wrap(r.handleRevise))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Log.WithError(err).WithField("path", req.URL.Path).Error("handler failed")
		}
		writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
	}
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, documents.ErrInvalidRequest), errors.Is(err, rent.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, analyses.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, documents.ErrTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", documents.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// tenantOf returns the {tenant} URL param, else the authenticated tenant.
func tenantOf(req *http.Request) string {
	if t := chi.URLParam(req, "tenant"); t != "" {
		return t
	}
	if t := middleware.GetTenantFromContext(req.Context()); t != "" {
		return t
	}
	return defaultTenant
}

func decodeBody(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return invalid("malformed JSON body: %v", err)
	}
	return nil
}

// POST /api/documents/analyze
// POST /v1/{tenant}/documents/analyze
// Body: {"fileUrl": "...", "fileName": "...", "documentType": "..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, 64<<10)
	var body documents.Request
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	if body.FileURL == "" || body.DocumentType == "" {
		return invalid("fileUrl and documentType are required")
	}
	if err := middleware.ValidateFileURL(body.FileURL); err != nil {
		return invalid("%v", err)
	}
	if err := middleware.ValidateFileName(body.FileName); err != nil {
		return invalid("%v", err)
	}

	res, err := r.docsSvc.Analyze(req.Context(), appdocs.AnalyzeCommand{
		TenantID:     tenantOf(req),
		FileURL:      body.FileURL,
		FileName:     middleware.SanitizeString(body.FileName),
		DocumentType: body.DocumentType,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"analysisId": res.ID,
		"analysis":   res.Analysis,
	})
}

// POST /v1/{tenant}/documents (multipart: file, documentType)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	// small allowance for the multipart envelope
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUploadBytes+1<<20)
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: upload exceeds %d bytes", documents.ErrTooLarge, r.maxUploadBytes)
		}
		return invalid("malformed multipart form: %v", err)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		return invalid("file is required")
	}
	defer file.Close()
	if header.Size > r.maxUploadBytes {
		return fmt.Errorf("%w: upload exceeds %d bytes", documents.ErrTooLarge, r.maxUploadBytes)
	}
	if err := middleware.ValidateFileName(header.Filename); err != nil {
		return invalid("%v", err)
	}
	contentType, err := middleware.ValidateUploadContentType(header.Header.Get("Content-Type"))
	if err != nil {
		return invalid("%v", err)
	}

	res, err := r.docsSvc.UploadAndAnalyze(req.Context(), appdocs.UploadCommand{
		TenantID:     tenantOf(req),
		DocumentType: req.FormValue("documentType"),
		FileName:     header.Filename,
		ContentType:  contentType,
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"analysisId": res.ID,
		"analysis":   res.Analysis,
	})
}

// GET /v1/{tenant}/analyses?page=&page_size=&type=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	list, err := r.docsSvc.List(req.Context(), tenantOf(req), page, middleware.ValidateLimit(size), q.Get("type"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return invalid("%v", err)
	}
	rec, err := r.docsSvc.Get(req.Context(), tenantOf(req), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/{tenant}/analyses/due?limit=
func (r *Router) handleDue(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.docsSvc.DueForUpdate(req.Context(), tenantOf(req), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/summary?days=30
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	summary, err := r.docsSvc.Summary(req.Context(), tenantOf(req), days)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"types": summary,
	})
}

func parseDay(field, v string, required bool) (time.Time, error) {
	if v == "" {
		if required {
			return time.Time{}, fmt.Errorf("%w: %s is required", rent.ErrInvalidInput, field)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", rent.ErrInvalidInput, field)
	}
	return t, nil
}

// POST /v1/{tenant}/charges/regularize
func (r *Router) handleRegularize(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		PeriodStart    string          `json:"periodStart"`
		PeriodEnd      string          `json:"periodEnd"`
		OccupancyStart string          `json:"occupancyStart"`
		OccupancyEnd   string          `json:"occupancyEnd"`
		ActualCharges  decimal.Decimal `json:"actualCharges"`
		ProvisionsPaid decimal.Decimal `json:"provisionsPaid"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	in := rent.ChargeInput{ActualCharges: body.ActualCharges, ProvisionsPaid: body.ProvisionsPaid}
	var err error
	if in.PeriodStart, err = parseDay("periodStart", body.PeriodStart, true); err != nil {
		return err
	}
	if in.PeriodEnd, err = parseDay("periodEnd", body.PeriodEnd, true); err != nil {
		return err
	}
	if in.OccupancyStart, err = parseDay("occupancyStart", body.OccupancyStart, false); err != nil {
		return err
	}
	if in.OccupancyEnd, err = parseDay("occupancyEnd", body.OccupancyEnd, false); err != nil {
		return err
	}

	res, err := rent.RegularizeCharges(in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"success": true, "regularization": res})
}

// POST /v1/{tenant}/rent/revise
func (r *Router) handleRevise(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		CurrentRent decimal.Decimal `json:"currentRent"`
		OldIndex    decimal.Decimal `json:"oldIndex"`
		NewIndex    decimal.Decimal `json:"newIndex"`
	}
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	res, err := rent.ReviseRent(body.CurrentRent, body.OldIndex, body.NewIndex)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"success": true, "revision": res})
}
