package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const (
	TenantKey contextKey = "tenant"
	slotKey   contextKey = "tenant_slot"
)

// tenantSlot is placed in the context by LoggingMiddleware before the
// handler chain runs. Inner middleware fill it so the access log can name
// the tenant after the request completes.
type tenantSlot struct {
	tenant string
}

func recordTenant(ctx context.Context, tenant string) {
	if slot, ok := ctx.Value(slotKey).(*tenantSlot); ok && slot.tenant == "" {
		slot.tenant = tenant
	}
}

// open endpoints for health checks and scrapers
var publicPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// APIKeyAuth validates API key from Authorization header. validKeys maps
// tenant -> key. An empty map disables authentication.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(validKeys) == 0 || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Extract API key from Authorization header
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimPrefix(auth, "Bearer ")
			apiKey = strings.TrimSpace(apiKey)

			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			// Validate API key (constant-time comparison to prevent timing attacks)
			valid := false
			var tenant string
			for t, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					valid = true
					tenant = t
					break
				}
			}

			if !valid {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			// Store tenant in context
			ctx := context.WithValue(r.Context(), TenantKey, tenant)
			recordTenant(ctx, tenant)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantFromContext extracts tenant from context
func GetTenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(TenantKey).(string); ok {
		return tenant
	}
	return ""
}

// RequireValidTenant ensures the {tenant} URL parameter is well formed and,
// when the caller authenticated, matches the key's tenant. Mount it inside
// a chi route that declares {tenant}.
func RequireValidTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlTenant := chi.URLParam(r, "tenant")
		if err := ValidateTenantID(urlTenant); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		authTenant := GetTenantFromContext(r.Context())
		if authTenant != "" && authTenant != urlTenant {
			writeError(w, http.StatusForbidden, "API key does not belong to this tenant")
			return
		}
		recordTenant(r.Context(), urlTenant)

		next.ServeHTTP(w, r)
	})
}
