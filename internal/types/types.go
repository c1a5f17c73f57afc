// Package types holds the request and response shapes shared by the CLI and
// the HTTP API.
package types

import (
	"fmt"
	"strings"

	"resumescore/internal/errors"
	"resumescore/internal/scoring"

	"github.com/go-playground/validator/v10"
)

// MaxBatchItems bounds a single batch request.
const MaxBatchItems = 50

var validate = validator.New(validator.WithRequiredStructEnabled())

// ScoreRequest is a resume submitted as already-extracted text.
type ScoreRequest struct {
	// Text may be empty or blank; such input scores as the empty report.
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=255"`
}

// Validate validates the ScoreRequest using the validator.
func (r *ScoreRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// BatchRequest scores several resumes in one call.
type BatchRequest struct {
	Items []ScoreRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// Validate validates the BatchRequest using the validator.
func (r *BatchRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// ScoreResponse pairs a report with the document it came from.
type ScoreResponse struct {
	RequestID string                  `json:"requestId,omitempty"`
	Filename  string                  `json:"filename,omitempty"`
	Report    *scoring.AnalysisReport `json:"report"`
}

// BatchResult summarizes a set of scored resumes.
type BatchResult struct {
	Count        int             `json:"count"`
	AverageScore float64         `json:"averageScore"`
	Results      []ScoreResponse `json:"results"`
}

// NewBatchResult computes the batch summary; the average is rounded to one decimal.
func NewBatchResult(results []ScoreResponse) BatchResult {
	if results == nil {
		results = []ScoreResponse{}
	}
	total := 0.0
	for _, r := range results {
		if r.Report != nil {
			total += r.Report.OverallScore
		}
	}
	avg := 0.0
	if len(results) > 0 {
		avg = scoring.RoundScore(total / float64(len(results)))
	}
	return BatchResult{Count: len(results), AverageScore: avg, Results: results}
}

// validationError converts validator output into an INVALID_REQUEST AppError
// whose message names every failing field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid request", err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, describeFieldError(fe))
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, strings.Join(problems, "; "), nil).
		WithContext("fields", len(problems))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds the maximum of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
