package middleware

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"gw2vault-api/pkg/apierror"
)

// APIKeyKey is the context key of the caller's Guild Wars 2 API key.
const APIKeyKey contextKey = "api_key"

// maxKeyBody bounds how much of a request body is read looking for apiKey.
const maxKeyBody = 64 << 10

// APIKeyConfig configures the API key middleware.
type APIKeyConfig struct {
	// Required rejects requests without a key. When false the handler sees an
	// empty key and decides itself.
	Required bool
}

// NewAPIKeyMiddleware extracts the caller's key from, in order, the
// Authorization bearer token, the X-API-Key header or the "apiKey" field of a
// JSON body, and stores it in the request context.
func NewAPIKeyMiddleware(cfg APIKeyConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := extractAPIKey(r)
			if apiKey == "" && cfg.Required {
				writeError(w, apierror.Unauthorized("API key is required"))
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if key := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); key != "" {
			return key
		}
	}

	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}

	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxKeyBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.APIKey)
}

// GetAPIKey retrieves the API key stored by the API key middleware.
func GetAPIKey(ctx context.Context) string {
	if key, ok := ctx.Value(APIKeyKey).(string); ok {
		return key
	}
	return ""
}

// NewAdminMiddleware guards admin routes with the X-Login-Key header. An empty
// loginKey disables the routes.
func NewAdminMiddleware(loginKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if loginKey == "" {
				writeError(w, apierror.Forbidden("Admin endpoints are disabled"))
				return
			}

			given := r.Header.Get("X-Login-Key")
			if given == "" {
				writeError(w, apierror.Unauthorized("X-Login-Key header is required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(given), []byte(loginKey)) != 1 {
				writeError(w, apierror.Unauthorized("Invalid login key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
