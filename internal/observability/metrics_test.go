package observability

import (
	"context"
	"errors"
	"testing"

	"resumescore/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const sampleResume = `Jane Doe
jane@example.com | (555) 123-4567 | linkedin.com/in/jane
Experience
- Led a team of 8 and increased revenue by 20%
Education
Skills: Python, SQL`

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := newMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func counterByAttr(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum")
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestTrackAnalysisRecordsScores(t *testing.T) {
	m, reader := newTestMetrics(t)

	report, err := m.TrackAnalysis(context.Background(), "text", func(context.Context) (*scoring.AnalysisReport, error) {
		return scoring.Analyze(sampleResume), nil
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	data := collect(t, reader)
	assert.Equal(t, int64(1), counterByAttr(t, data["resumescore_analyses_total"], "outcome", OutcomeScored))

	overall, ok := data["resumescore_overall_score"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, overall.DataPoints, 1)
	assert.Equal(t, uint64(1), overall.DataPoints[0].Count)
	assert.InDelta(t, report.OverallScore, overall.DataPoints[0].Sum, 0.001)

	dimensions, ok := data["resumescore_dimension_score"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, dimensions.DataPoints, len(scoring.Dimensions))

	_, ok = data["resumescore_analysis_duration_seconds"]
	assert.True(t, ok)
}

func TestTrackAnalysisOutcomes(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	_, err := m.TrackAnalysis(ctx, "file", func(context.Context) (*scoring.AnalysisReport, error) {
		return scoring.Analyze("   "), nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = m.TrackAnalysis(ctx, "file", func(context.Context) (*scoring.AnalysisReport, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	data := collect(t, reader)
	assert.Equal(t, int64(1), counterByAttr(t, data["resumescore_analyses_total"], "outcome", OutcomeEmpty))
	assert.Equal(t, int64(1), counterByAttr(t, data["resumescore_analyses_total"], "outcome", OutcomeFailed))
	_, recorded := data["resumescore_overall_score"]
	assert.False(t, recorded, "only scored resumes feed the score histogram")
}

func TestInfrastructureCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordExtractionFailure(ctx, ".pdf")
	m.RecordExtractionFailure(ctx, ".pdf")
	m.RecordRateLimitHit(ctx, "ip")
	m.RecordKeyRotation(ctx, true)
	m.RecordCertReload(ctx, false)

	data := collect(t, reader)
	assert.Equal(t, int64(2), counterByAttr(t, data["resumescore_extraction_failures_total"], "extension", ".pdf"))
	assert.Equal(t, int64(1), counterByAttr(t, data["resumescore_rate_limit_hits_total"], "limit_by", "ip"))
	assert.Contains(t, data, "resumescore_key_rotations_total")
	assert.Contains(t, data, "resumescore_cert_reloads_total")
}

func TestZeroMetricsAreSafe(t *testing.T) {
	var nilMetrics *Metrics
	for _, m := range []*Metrics{nilMetrics, {}} {
		report, err := m.TrackAnalysis(context.Background(), "cli", func(context.Context) (*scoring.AnalysisReport, error) {
			return scoring.Analyze(sampleResume), nil
		})
		assert.NoError(t, err)
		assert.NotNil(t, report)

		assert.NotPanics(t, func() {
			m.RecordExtractionFailure(context.Background(), ".docx")
			m.RecordRateLimitHit(context.Background(), "api_key")
			m.RecordKeyRotation(context.Background(), false)
			m.RecordCertReload(context.Background(), true)
		})
	}
}
