package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/insightboard/internal/config"
	"github.com/JonMunkholm/insightboard/internal/core"
	"github.com/JonMunkholm/insightboard/internal/logging"
)

// APIKeyHeader carries the client's key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that validates the X-API-Key header against
// configured keys. If RequireAPIKey is false, all requests pass through.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey != "" && isValidAPIKey(apiKey, cfg.APIKeys) {
				next.ServeHTTP(w, r)
				return
			}

			reason := "invalid API key"
			if apiKey == "" {
				reason = "missing API key"
			}
			logging.FromContext(r.Context()).Warn("auth: "+reason,
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)

			msg := core.MapError(core.AuthError())
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `APIKey header="`+APIKeyHeader+`"`)
			w.WriteHeader(msg.Status)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   reason,
				"message": msg.Message,
				"action":  msg.Action,
				"code":    msg.Code,
			})
		})
	}
}

// isValidAPIKey checks if the provided key matches any configured key.
// Every key is compared so timing does not reveal which one matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
