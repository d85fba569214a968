package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	checkTimeout   = 2 * time.Second
	requestTimeout = 5 * time.Second
)

// HealthChecker is one dependency checked by /health and /ready.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// DatabaseHealthChecker pings the analysis history database.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// Pinger is implemented by the file stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageHealthChecker checks the document store.
type StorageHealthChecker struct {
	Store Pinger
}

func (s *StorageHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return s.Store.Ping(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// runChecks checks every dependency concurrently.
func runChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := checker.Check(ctx)
			cs := CheckStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				cs.Status = "unhealthy"
				cs.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			health.Checks[name] = cs
			if err != nil {
				health.Status = "unhealthy"
			}
		}(name, checker)
	}
	wg.Wait()
	return health
}

// HealthHandler reports every dependency and answers 503 when one is down.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		health := runChecks(ctx, checkers)
		code := http.StatusOK
		if health.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(health)
	}
}

// ReadinessHandler answers 200 once the document store is reachable. The
// database is optional for analysis so it does not gate readiness.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		status, code := "ready", http.StatusOK
		if store, ok := checkers["storage"]; ok {
			if err := store.Check(ctx); err != nil {
				status, code = "not ready", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now(),
		})
	}
}

func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
