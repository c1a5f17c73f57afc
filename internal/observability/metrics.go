package observability

import (
	"context"
	"fmt"
	"time"

	"resumescore/internal/scoring"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Analysis outcomes recorded on resumescore_analyses_total.
const (
	OutcomeScored = "scored"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

const tracerName = "resumescore.analysis"

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// Metrics holds all custom instruments. The zero value is usable and records
// nothing, which is what a disabled manager hands out.
type Metrics struct {
	Analyses           metric.Int64Counter
	OverallScore       metric.Float64Histogram
	DimensionScore     metric.Float64Histogram
	AnalysisDuration   metric.Float64Histogram
	ExtractionFailures metric.Int64Counter
	RateLimitHits      metric.Int64Counter
	KeyRotations       metric.Int64Counter
	CertReloads        metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.Analyses, err = meter.Int64Counter(
		"resumescore_analyses_total",
		metric.WithDescription("Total number of resumes analyzed, by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}

	if m.OverallScore, err = meter.Float64Histogram(
		"resumescore_overall_score",
		metric.WithDescription("Distribution of overall resume scores"),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create overall score metric: %w", err)
	}

	if m.DimensionScore, err = meter.Float64Histogram(
		"resumescore_dimension_score",
		metric.WithDescription("Distribution of per-dimension scores"),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create dimension score metric: %w", err)
	}

	if m.AnalysisDuration, err = meter.Float64Histogram(
		"resumescore_analysis_duration_seconds",
		metric.WithDescription("Time spent scoring one resume"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	if m.ExtractionFailures, err = meter.Int64Counter(
		"resumescore_extraction_failures_total",
		metric.WithDescription("Uploaded documents whose text could not be extracted"),
	); err != nil {
		return nil, fmt.Errorf("failed to create extraction failures metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumescore_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	if m.KeyRotations, err = meter.Int64Counter(
		"resumescore_key_rotations_total",
		metric.WithDescription("API key set reloads from Vault"),
	); err != nil {
		return nil, fmt.Errorf("failed to create key rotations metric: %w", err)
	}

	if m.CertReloads, err = meter.Int64Counter(
		"resumescore_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads"),
	); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload metric: %w", err)
	}

	return m, nil
}

// TrackAnalysis runs fn inside a span and records outcome, duration and score
// distributions. source names where the text came from (text, file, batch, cli).
func (m *Metrics) TrackAnalysis(ctx context.Context, source string, fn func(context.Context) (*scoring.AnalysisReport, error)) (*scoring.AnalysisReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analysis.score")
	defer span.End()

	start := time.Now()
	report, err := fn(ctx)
	duration := time.Since(start).Seconds()

	outcome := OutcomeScored
	switch {
	case err != nil:
		outcome = OutcomeFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case report == nil || report.Sections.Len() == 0:
		outcome = OutcomeEmpty
	}

	span.SetAttributes(
		attribute.String("analysis.source", source),
		attribute.String("analysis.outcome", outcome),
	)
	if report != nil {
		span.SetAttributes(attribute.Float64("analysis.overall_score", report.OverallScore))
	}

	if m == nil || m.Analyses == nil {
		return report, err
	}

	attrs := metric.WithAttributes(attribute.String("source", source), attribute.String("outcome", outcome))
	m.Analyses.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, duration, metric.WithAttributes(attribute.String("source", source)))

	if outcome == OutcomeScored {
		m.OverallScore.Record(ctx, report.OverallScore)
		report.Sections.Each(func(r scoring.SectionResult) {
			m.DimensionScore.Record(ctx, r.Common().Score,
				metric.WithAttributes(attribute.String("dimension", string(r.Dimension()))))
		})
	}
	return report, err
}

// RecordExtractionFailure counts a document that yielded no usable text.
func (m *Metrics) RecordExtractionFailure(ctx context.Context, extension string) {
	if m == nil || m.ExtractionFailures == nil {
		return
	}
	m.ExtractionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("extension", extension)))
}

// RecordRateLimitHit counts a rejected request; key is "ip" or "api_key".
func (m *Metrics) RecordRateLimitHit(ctx context.Context, key string) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit_by", key)))
}

// RecordKeyRotation counts an attempt to load a new API key set.
func (m *Metrics) RecordKeyRotation(ctx context.Context, success bool) {
	if m == nil || m.KeyRotations == nil {
		return
	}
	m.KeyRotations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordCertReload counts a TLS key pair reload.
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil || m.CertReloads == nil {
		return
	}
	m.CertReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
