package server

import (
	"time"

	"resumescore/internal/analysis"
	"resumescore/internal/common"
	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"
)

// multipartOverhead is added to the file size limit to leave room for form
// boundaries and JSON envelopes.
const multipartOverhead = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Dependencies are the collaborators a Server needs beyond its configuration.
type Dependencies struct {
	Analysis      *analysis.Service
	Observability *observability.ObservabilityManager
	// KeySource is polled for rotated API keys when key rotation is enabled.
	KeySource KeySource
	Logger    *errors.Logger
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys *KeySet

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Analysis      *analysis.Service
	Observability *observability.ObservabilityManager
	Logger        *errors.Logger

	files       *common.FileProcessor
	certs       *certificateStore
	certWatcher *CertWatcher
	keyWatcher  *KeyWatcher
	startedAt   time.Time
}

// NewServer creates a Server from application configuration.
func NewServer(appCfg *config.Config, version string, deps Dependencies) *Server {
	svc := deps.Analysis
	if svc == nil {
		svc = analysis.NewService(deps.Logger, analysis.Options{
			Concurrency:   appCfg.App.Concurrency,
			MinTextLength: appCfg.App.MinTextLength,
			Recorder:      deps.Observability.Metrics(),
		})
	}

	var rateLimiter *RateLimiter
	rateLimit := appCfg.Server.RateLimit
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, deps.Logger)
	}

	maxRequestSize := int64(0)
	if appCfg.App.MaxFileSize > 0 {
		maxRequestSize = appCfg.App.MaxFileSize + multipartOverhead
	}

	s := &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      appCfg.Server.TLS,
		APIKeys:        NewKeySet(appCfg.Server.APIKeys),
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: maxRequestSize,
		RateLimit:      &rateLimit,
		RateLimiter:    rateLimiter,
		Analysis:       svc,
		Observability:  deps.Observability,
		Logger:         deps.Logger,
		files:          common.NewFileProcessor(deps.Logger, appCfg.App.MaxFileSize),
		startedAt:      time.Now(),
	}

	if appCfg.Server.KeyRotation.Enabled && deps.KeySource != nil {
		s.keyWatcher = NewKeyWatcher(deps.KeySource, s.APIKeys, appCfg.Server.KeyRotation,
			deps.Observability.Metrics(), deps.Logger)
	}

	return s
}
