package server

import (
	"fmt"

	"resumescore/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string, tlsEnabled bool) {
	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	fmt.Printf("Serving on %s://%s (TLS mode: %s)\n", scheme, addr, s.tlsModeName())

	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health       - Health check")
	fmt.Println("  GET  /stats        - Server statistics")
	fmt.Println("  GET  /dimensions   - Scoring dimensions and weights")
	fmt.Println("  POST /score        - Score resume text (requires API key)")
	fmt.Println("  POST /score/file   - Score an uploaded resume file (requires API key)")
	fmt.Println("  POST /score/batch  - Score several resumes (requires API key)")

	if n := s.APIKeys.Len(); n > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", n)
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
	if s.keyWatcher != nil {
		fmt.Printf("API key rotation: ENABLED (polling every %s)\n", s.keyWatcher.pollInterval)
	}

	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}

	if s.RateLimiter != nil {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}

	if s.certWatcher != nil {
		fmt.Println("TLS auto-reload: ENABLED (file watching)")
	}
}

func (s *Server) tlsModeName() string {
	if s.TLSConfig.Mode == "" {
		return "disabled"
	}
	return s.TLSConfig.Mode
}
