package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesTotal      uint64
	AnalysesDegraded   uint64
	AutoValidated      uint64
	NeedsUpdate        uint64
	Uploads            uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// DocumentMetrics feeds analysis outcomes into the global counters.
type DocumentMetrics struct{}

func (DocumentMetrics) AnalysisDone(res *documents.AnalysisResult, degraded bool) {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
	if degraded {
		atomic.AddUint64(&globalMetrics.AnalysesDegraded, 1)
	}
	if res == nil {
		return
	}
	if res.AutoValidated {
		atomic.AddUint64(&globalMetrics.AutoValidated, 1)
	}
	if res.NeedsUpdate {
		atomic.AddUint64(&globalMetrics.NeedsUpdate, 1)
	}
}

func (DocumentMetrics) Uploaded() {
	atomic.AddUint64(&globalMetrics.Uploads, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":          atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress":    atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":        atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":         atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"analyses_total":          atomic.LoadUint64(&globalMetrics.AnalysesTotal),
		"analyses_degraded":       atomic.LoadUint64(&globalMetrics.AnalysesDegraded),
		"analyses_auto_validated": atomic.LoadUint64(&globalMetrics.AutoValidated),
		"analyses_needs_update":   atomic.LoadUint64(&globalMetrics.NeedsUpdate),
		"uploads_total":           atomic.LoadUint64(&globalMetrics.Uploads),
		"uptime_seconds":          time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		// Wrap response writer to capture status
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		// Track success/failure based on status code
		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
