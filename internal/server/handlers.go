package server

import (
	"net/http"
	"time"

	"resumescore/internal/analysis"
	"resumescore/internal/errors"
	"resumescore/internal/scoring"
	"resumescore/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "resumescore.api"

// maxMultipartMemory is the part of an upload kept in memory; the rest
// spills to temporary files.
const maxMultipartMemory = 8 << 20

// batchResponse is a BatchResult tagged with the request ID.
type batchResponse struct {
	RequestID string `json:"requestId"`
	types.BatchResult
}

// scoreHandler scores resume text submitted as JSON.
func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.score")
	defer span.End()

	var req types.ScoreRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, r, span, "validation", err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, span, "validation", err)
		return
	}
	span.SetAttributes(attribute.Int("request.text_length", len(req.Text)))

	resp, err := s.Analysis.Score(ctx, analysis.SourceText, req)
	if err != nil {
		s.fail(w, r, span, "scoring", err)
		return
	}
	resp.RequestID = requestID(ctx)

	span.SetAttributes(attribute.Float64("report.overall_score", resp.Report.OverallScore))
	writeJSON(w, http.StatusOK, resp)
}

// scoreFileHandler extracts and scores an uploaded document.
func (s *Server) scoreFileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.score_file")
	defer span.End()

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.fail(w, r, span, "validation", multipartError(err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.Logger.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, span, "validation",
			errors.NewValidationError(errors.ErrCodeInvalidRequest, "file field is required", err))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := s.files.ReadStream(header.Filename, file)
	if err != nil {
		s.fail(w, r, span, "validation", err)
		return
	}
	span.SetAttributes(
		attribute.String("request.filename", header.Filename),
		attribute.Int("request.file_size", len(data)),
	)

	resp, err := s.Analysis.ScoreDocument(ctx, header.Filename, data)
	if err != nil {
		s.fail(w, r, span, "extraction", err)
		return
	}
	resp.RequestID = requestID(ctx)

	span.SetAttributes(attribute.Float64("report.overall_score", resp.Report.OverallScore))
	writeJSON(w, http.StatusOK, resp)
}

// scoreBatchHandler scores up to types.MaxBatchItems resumes in one call.
func (s *Server) scoreBatchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.score_batch")
	defer span.End()

	var req types.BatchRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, r, span, "validation", err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, span, "validation", err)
		return
	}
	span.SetAttributes(attribute.Int("request.items", len(req.Items)))

	batch, err := s.Analysis.ScoreBatch(ctx, analysis.SourceBatch, req.Items)
	if err != nil {
		s.fail(w, r, span, "scoring", err)
		return
	}

	span.SetAttributes(attribute.Float64("batch.average_score", batch.AverageScore))
	writeJSON(w, http.StatusOK, batchResponse{RequestID: requestID(ctx), BatchResult: batch})
}

// dimensionsHandler lists the scoring dimensions with their weights.
func (s *Server) dimensionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dimensions": scoring.DescribeDimensions(),
	})
}

// healthHandler reports liveness plus certificate and key rotation state.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":         "healthy",
		"service":        "resumescore",
		"version":        s.Version,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	}

	statusCode := http.StatusOK
	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if healthy, _ := certStatus["healthy"].(bool); !healthy {
			response["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}
	if s.keyWatcher != nil {
		response["key_rotation"] = s.keyWatcher.Status()
	}

	writeJSON(w, statusCode, response)
}

// checkCertificateHealth classifies the certificate by time to expiry; it
// returns nil when TLS is off.
func (s *Server) checkCertificateHealth() map[string]any {
	if s.certs == nil {
		return nil
	}

	certStatus := map[string]any{}
	timeToExpiry, err := s.certs.TimeToExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = err.Error()
		return certStatus
	}

	const (
		criticalThreshold = 24 * time.Hour
		warningThreshold  = 7 * 24 * time.Hour
	)

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= criticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= warningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}

	reload := map[string]any{"enabled": s.certWatcher != nil}
	if s.certWatcher != nil {
		reload["running"] = s.certWatcher.IsRunning()
		reload["watched_files"] = s.certWatcher.GetWatchedFiles()
	}
	certStatus["auto_reload"] = reload
	certStatus["reloads"] = s.certs.Stats()

	return certStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service":  "resumescore",
		"version":  s.Version,
		"analysis": s.Analysis.Stats(),
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"concurrency":            s.AppConfig.App.Concurrency,
		},
		"authentication": map[string]any{
			"enabled":     s.APIKeys.Len() > 0,
			"key_count":   s.APIKeys.Len(),
			"key_version": s.APIKeys.Version(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.keyWatcher != nil {
		response["key_rotation"] = s.keyWatcher.Status()
	} else {
		response["key_rotation"] = map[string]any{"enabled": false}
	}

	writeJSON(w, http.StatusOK, response)
}

// fail records err on the span and writes the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, span trace.Span, kind string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	span.SetAttributes(attribute.String("error.type", kind))
	s.writeAppError(w, r, err)
}

// multipartError classifies a multipart parse failure.
func multipartError(err error) error {
	if appErr := readBodyError(err); errors.HasCode(appErr, errors.ErrCodeRequestTooLarge) {
		return appErr
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, "request must be multipart/form-data with a file field", err)
}
