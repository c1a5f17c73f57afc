package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"

	"resumescore/internal/errors"
)

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return readBodyError(err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}
	return nil
}

// readBodyError classifies a failure to read the request body.
func readBodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeRequestTooLarge,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), nil)
	}
	return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read request body", err)
}

// statusFor maps an error onto the HTTP status returned to the caller.
func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case errors.ErrCodeRequestTooLarge, errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInsufficientText, errors.ErrCodeUnsupportedFileType:
		return http.StatusBadRequest
	}
	if appErr.Type == errors.ErrorTypeValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorTitles gives the short "error" field for each status.
var errorTitles = map[int]string{
	http.StatusBadRequest:            "Invalid request",
	http.StatusRequestEntityTooLarge: "Request too large",
	http.StatusServiceUnavailable:    "Request cancelled",
	http.StatusInternalServerError:   "Internal server error",
}

// writeAppError converts err into an ErrorResponse. Internal failures are
// logged and their details withheld from the caller.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if _, ok := errors.AsAppError(err); !ok {
			err = errors.NewInternalError(errors.ErrCodeInternal, "request failed", err)
		}
		s.Logger.LogError(err, "Request failed", "endpoint", r.URL.Path, "request_id", requestID(r.Context()))
	}

	response := ErrorResponse{Error: errorTitles[status]}
	if appErr, ok := errors.AsAppError(err); ok {
		response.Code = appErr.Code
		response.Message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		response.Message = "an unexpected error occurred"
	}

	writeErrorResponse(w, r, status, response)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, response ErrorResponse) {
	if response.RequestID == "" {
		response.RequestID = requestID(r.Context())
	}
	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
