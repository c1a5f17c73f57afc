package types

import (
	"strings"
	"testing"

	"resumescore/internal/errors"
	"resumescore/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       ScoreRequest
		expectErr string
	}{
		{"valid", ScoreRequest{Text: "resume"}, ""},
		{"whitespace text is allowed", ScoreRequest{Text: "  "}, ""},
		{"missing text is allowed", ScoreRequest{}, ""},
		{"long filename", ScoreRequest{Text: "x", Filename: strings.Repeat("a", 256)}, "Filename exceeds the maximum of 255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestBatchRequestValidate(t *testing.T) {
	items := func(n int) []ScoreRequest {
		out := make([]ScoreRequest, n)
		for i := range out {
			out[i] = ScoreRequest{Text: "resume"}
		}
		return out
	}

	tests := []struct {
		name      string
		req       BatchRequest
		expectErr string
	}{
		{"one item", BatchRequest{Items: items(1)}, ""},
		{"at limit", BatchRequest{Items: items(MaxBatchItems)}, ""},
		{"missing items", BatchRequest{}, "Items is required"},
		{"empty items", BatchRequest{Items: []ScoreRequest{}}, "Items must contain at least 1"},
		{"over limit", BatchRequest{Items: items(MaxBatchItems + 1)}, "Items exceeds the maximum of 50"},
		{"empty item is allowed", BatchRequest{Items: []ScoreRequest{{Text: "ok"}, {}}}, ""},
		{"invalid item", BatchRequest{Items: []ScoreRequest{{Text: "ok"}, {Filename: strings.Repeat("a", 256)}}}, "Items[1].Filename exceeds the maximum of 255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestNewBatchResult(t *testing.T) {
	results := []ScoreResponse{
		{Filename: "a.txt", Report: &scoring.AnalysisReport{OverallScore: 70}},
		{Filename: "b.txt", Report: &scoring.AnalysisReport{OverallScore: 80.5}},
		{Filename: "c.txt", Report: &scoring.AnalysisReport{OverallScore: 60}},
	}
	batch := NewBatchResult(results)
	assert.Equal(t, 3, batch.Count)
	assert.Equal(t, 70.2, batch.AverageScore)

	tie := NewBatchResult([]ScoreResponse{
		{Report: &scoring.AnalysisReport{OverallScore: 51}},
		{Report: &scoring.AnalysisReport{OverallScore: 51.5}},
	})
	assert.Equal(t, 51.2, tie.AverageScore, "an exact tie rounds to the even digit")

	empty := NewBatchResult(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.AverageScore)
	assert.NotNil(t, empty.Results)
}
