package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resumescore/internal/errors"
	"resumescore/internal/scoring"
	"resumescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane@example.com | (555) 123-4567 | linkedin.com/in/jane
Experience
- Led a team of 8 and increased revenue by 20%
Education
Skills: Python, SQL`

type fakeRecorder struct {
	mu          sync.Mutex
	sources     []string
	failures    []string
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (f *fakeRecorder) TrackAnalysis(ctx context.Context, source string, fn func(context.Context) (*scoring.AnalysisReport, error)) (*scoring.AnalysisReport, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.sources = append(f.sources, source)
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeRecorder) RecordExtractionFailure(_ context.Context, extension string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, extension)
}

func newTestService(recorder Recorder, concurrency int) *Service {
	logger := errors.NewLoggerTo(io.Discard, slog.LevelDebug)
	return NewService(logger, Options{Concurrency: concurrency, MinTextLength: 20, Recorder: recorder})
}

func TestScore(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := newTestService(recorder, 1)

	resp, err := svc.Score(context.Background(), SourceText, types.ScoreRequest{Text: sampleResume, Filename: "jane.txt"})
	require.NoError(t, err)

	assert.Equal(t, "jane.txt", resp.Filename)
	assert.Equal(t, scoring.Analyze(sampleResume), resp.Report)
	assert.Equal(t, []string{SourceText}, recorder.sources)
}

func TestScoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(nil, 1).Score(ctx, SourceText, types.ScoreRequest{Text: sampleResume})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreDocument(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		data      []byte
		errorCode string
		failures  []string
	}{
		{name: "plain text", filename: "resume.txt", data: []byte(sampleResume)},
		{name: "markdown", filename: "resume.MD", data: []byte(sampleResume)},
		{name: "unsupported type", filename: "resume.exe", data: []byte(sampleResume), errorCode: errors.ErrCodeUnsupportedFileType},
		{name: "too short", filename: "resume.txt", data: []byte("  Jane Doe  \n"), errorCode: errors.ErrCodeInsufficientText},
		{
			name:      "unparseable pdf",
			filename:  "resume.pdf",
			data:      []byte("this is not a pdf"),
			errorCode: errors.ErrCodeInsufficientText,
			failures:  []string{".pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			svc := newTestService(recorder, 1)

			resp, err := svc.ScoreDocument(context.Background(), tt.filename, tt.data)
			if tt.errorCode != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.errorCode), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.filename, resp.Filename)
				assert.Greater(t, resp.Report.OverallScore, 0.0)
			}
			assert.Equal(t, tt.failures, recorder.failures)
		})
	}
}

func TestInsufficientTextMessage(t *testing.T) {
	err := newTestService(nil, 1).RequireMeaningfulText("short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), InsufficientTextMessage)

	assert.NoError(t, newTestService(nil, 1).RequireMeaningfulText(strings.Repeat("x", 20)))
}

func TestScoreBatchPreservesOrderAndBoundsConcurrency(t *testing.T) {
	recorder := &fakeRecorder{delay: 5 * time.Millisecond}
	svc := newTestService(recorder, 2)

	items := make([]types.ScoreRequest, 6)
	for i := range items {
		items[i] = types.ScoreRequest{Text: sampleResume, Filename: fmt.Sprintf("r%d.txt", i)}
	}
	items[3].Text = ""

	batch, err := svc.ScoreBatch(context.Background(), SourceBatch, items)
	require.NoError(t, err)

	require.Equal(t, 6, batch.Count)
	for i, result := range batch.Results {
		assert.Equal(t, fmt.Sprintf("r%d.txt", i), result.Filename)
	}
	assert.Equal(t, 0.0, batch.Results[3].Report.OverallScore)
	assert.LessOrEqual(t, recorder.maxInFlight.Load(), int32(2))

	expected := batch.Results[0].Report.OverallScore * 5 / 6
	assert.InDelta(t, expected, batch.AverageScore, 0.051)
}

func TestScoreBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(nil, 4).ScoreBatch(ctx, SourceBatch, []types.ScoreRequest{{Text: sampleResume}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStats(t *testing.T) {
	svc := newTestService(nil, 1)
	assert.Equal(t, Stats{}, svc.Stats())

	_, err := svc.Score(context.Background(), SourceText, types.ScoreRequest{Text: sampleResume})
	require.NoError(t, err)
	_, err = svc.Score(context.Background(), SourceText, types.ScoreRequest{Text: ""})
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, int64(2), stats.Analyses)
	assert.InDelta(t, scoring.Analyze(sampleResume).OverallScore/2, stats.AverageScore, 0.051)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(errors.NewLoggerTo(io.Discard, slog.LevelInfo), Options{})
	assert.Equal(t, 1, svc.concurrency)
	assert.IsType(t, noopRecorder{}, svc.recorder)
}
