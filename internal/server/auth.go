package server

import (
	"net/http"
	"strings"
	"sync/atomic"
)

// KeySet is the set of accepted API keys. Replace swaps the whole set at
// once, so requests in flight see either the old keys or the new ones.
type KeySet struct {
	keys    atomic.Pointer[map[string]struct{}]
	version atomic.Int64
}

// NewKeySet creates a key set; blank keys are ignored.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{}
	ks.Replace(keys, 0)
	return ks
}

// Replace installs a new key set tagged with the version it came from.
func (ks *KeySet) Replace(keys []string, version int64) {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			set[key] = struct{}{}
		}
	}
	ks.keys.Store(&set)
	ks.version.Store(version)
}

// Contains reports whether key is accepted.
func (ks *KeySet) Contains(key string) bool {
	_, ok := (*ks.keys.Load())[key]
	return ok
}

// Len returns the number of accepted keys; zero disables authentication.
func (ks *KeySet) Len() int {
	return len(*ks.keys.Load())
}

// Version returns the version of the installed set.
func (ks *KeySet) Version() int64 {
	return ks.version.Load()
}

// extractAPIKey reads the X-API-Key header, falling back to a Bearer token.
func extractAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.APIKeys.Len() == 0 {
			next(w, r)
			return
		}

		apiKey := extractAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, r, http.StatusUnauthorized, ErrorResponse{
				Error:   "Missing API key",
				Message: "X-API-Key header or Authorization Bearer token required",
			})
			return
		}

		if !s.APIKeys.Contains(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, r, http.StatusUnauthorized, ErrorResponse{
				Error:   "Invalid API key",
				Message: "Unauthorized access",
			})
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
