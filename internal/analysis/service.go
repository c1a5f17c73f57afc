// Package analysis coordinates text extraction, scoring and telemetry for the
// CLI and the HTTP server.
package analysis

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"resumescore/internal/errors"
	"resumescore/internal/extract"
	"resumescore/internal/scoring"
	"resumescore/internal/types"
	"resumescore/internal/utils"

	"golang.org/x/sync/errgroup"
)

// InsufficientTextMessage is returned when an uploaded document yields too little text.
const InsufficientTextMessage = "Could not extract meaningful text from the file. Please upload a valid resume."

// Sources label where a resume came from in telemetry.
const (
	SourceText  = "text"
	SourceFile  = "file"
	SourceBatch = "batch"
	SourceCLI   = "cli"
)

// Recorder receives telemetry for analyses. *observability.Metrics implements it.
type Recorder interface {
	TrackAnalysis(ctx context.Context, source string, fn func(context.Context) (*scoring.AnalysisReport, error)) (*scoring.AnalysisReport, error)
	RecordExtractionFailure(ctx context.Context, extension string)
}

type noopRecorder struct{}

func (noopRecorder) TrackAnalysis(ctx context.Context, _ string, fn func(context.Context) (*scoring.AnalysisReport, error)) (*scoring.AnalysisReport, error) {
	return fn(ctx)
}

func (noopRecorder) RecordExtractionFailure(context.Context, string) {}

// Options tune a Service.
type Options struct {
	// Concurrency bounds parallel scoring in ScoreBatch; values below 1 mean 1.
	Concurrency int
	// MinTextLength is the minimum trimmed character count for uploaded documents.
	MinTextLength int
	// Recorder defaults to a no-op.
	Recorder Recorder
}

// Stats summarizes the analyses a Service has produced.
type Stats struct {
	Analyses     int64   `json:"analyses"`
	AverageScore float64 `json:"averageScore"`
}

// Service scores resumes. It is safe for concurrent use.
type Service struct {
	logger        *errors.Logger
	recorder      Recorder
	concurrency   int
	minTextLength int

	mu    sync.Mutex
	count int64
	total float64
}

// NewService creates a Service.
func NewService(logger *errors.Logger, opts Options) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	return &Service{
		logger:        logger,
		recorder:      opts.Recorder,
		concurrency:   opts.Concurrency,
		minTextLength: opts.MinTextLength,
	}
}

// Score analyzes already-extracted text.
func (s *Service) Score(ctx context.Context, source string, req types.ScoreRequest) (types.ScoreResponse, error) {
	report, err := s.recorder.TrackAnalysis(ctx, source, func(ctx context.Context) (*scoring.AnalysisReport, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return scoring.Analyze(req.Text), nil
	})
	if err != nil {
		return types.ScoreResponse{}, err
	}

	s.observe(report.OverallScore)
	s.logger.Debug("Resume scored",
		"source", source,
		"filename", req.Filename,
		"overall_score", report.OverallScore,
		"suggestions", len(report.Suggestions))

	return types.ScoreResponse{Filename: req.Filename, Report: report}, nil
}

// ExtractText returns the plain text of a document. Unsupported file types
// are an error; a supported document that fails to parse is logged, counted
// and treated as empty.
func (s *Service) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	if _, err := extract.Detect(filename); err != nil {
		return "", err
	}

	text, err := extract.Text(filename, data)
	if err != nil {
		ext := utils.GetFileExtension(filename)
		s.recorder.RecordExtractionFailure(ctx, ext)
		s.logger.LogError(err, "Text extraction failed, scoring as empty", "filename", filename, "size", len(data))
		return "", nil
	}
	return text, nil
}

// RequireMeaningfulText rejects text shorter than the configured minimum once trimmed.
func (s *Service) RequireMeaningfulText(text string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < s.minTextLength {
		return errors.NewValidationError(errors.ErrCodeInsufficientText, InsufficientTextMessage, nil).
			WithContext("characters", n).
			WithContext("minimum", s.minTextLength)
	}
	return nil
}

// ScoreDocument extracts, checks and scores an uploaded document.
func (s *Service) ScoreDocument(ctx context.Context, filename string, data []byte) (types.ScoreResponse, error) {
	text, err := s.ExtractText(ctx, filename, data)
	if err != nil {
		return types.ScoreResponse{}, err
	}
	if err := s.RequireMeaningfulText(text); err != nil {
		return types.ScoreResponse{}, err
	}
	return s.Score(ctx, SourceFile, types.ScoreRequest{Text: text, Filename: filename})
}

// ScoreBatch scores items concurrently, bounded by the configured concurrency,
// and preserves input order in the result.
func (s *Service) ScoreBatch(ctx context.Context, source string, items []types.ScoreRequest) (types.BatchResult, error) {
	results := make([]types.ScoreResponse, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, item := range items {
		g.Go(func() error {
			resp, err := s.Score(ctx, source, item)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.BatchResult{}, err
	}

	batch := types.NewBatchResult(results)
	s.logger.Info("Batch scored", "source", source, "count", batch.Count, "average_score", batch.AverageScore)
	return batch, nil
}

func (s *Service) observe(score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.total += score
}

// Stats returns the number of analyses so far and their mean overall score,
// rounded to one decimal.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return Stats{}
	}
	return Stats{Analyses: s.count, AverageScore: scoring.RoundScore(s.total / float64(s.count))}
}
