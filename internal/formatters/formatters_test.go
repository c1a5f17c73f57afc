package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumescore/internal/scoring"
	"resumescore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Jane Doe
jane@example.com | (555) 123-4567
Summary
Experience
- Led a team and increased revenue by 20%
Skills: Python, SQL`

func TestFormatReport(t *testing.T) {
	registry := NewFormatterRegistry()
	report := scoring.Analyze(resumeText)

	tests := []struct {
		format   string
		contains []string
	}{
		{"text", []string{
			"=== RESUME SCORE ===",
			"Contact Information (10%):",
			"Missing: linkedin",
			"=== SUGGESTIONS ===",
			"1. Add your LinkedIn profile URL",
			"=== KEYWORDS ===",
		}},
		{"markdown", []string{
			"# Resume Score",
			"| Dimension | Weight | Score |",
			"| Resume Sections | 20% |",
			"### Keyword Optimization",
			"## Suggestions",
			"`python`",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := registry.Format(report, tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatEmptyReport(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(scoring.Analyze(""), "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: 0.0/100")
	assert.NotContains(t, out, "=== DIMENSIONS ===")
	assert.Contains(t, out, scoring.EmptyTextSuggestion)
}

func TestFormatJSONKeepsSectionOrder(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(scoring.Analyze(resumeText), "json")
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "overall_score")
	assert.Less(t, strings.Index(out, `"contact_info"`), strings.Index(out, `"formatting"`))
}

func TestFormatBatch(t *testing.T) {
	registry := NewFormatterRegistry()
	batch := types.NewBatchResult([]types.ScoreResponse{
		{Filename: "a.txt", Report: scoring.Analyze(resumeText)},
		{Report: scoring.Analyze("short")},
	})

	text, err := registry.Format(batch, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Resumes: 2")
	assert.Contains(t, text, "[1] a.txt")
	assert.Contains(t, text, "[2] resume 2")

	md, err := registry.Format(batch, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "| 1 | a.txt |")
	assert.Contains(t, md, "## resume 2")
}

func TestFormatScoreResponse(t *testing.T) {
	registry := NewFormatterRegistry()
	resp := types.ScoreResponse{Filename: "cv.pdf", Report: scoring.Analyze(resumeText)}

	text, err := registry.Format(resp, "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "File: cv.pdf\n"))

	md, err := registry.Format(resp, "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Resume Score: cv.pdf"))
}

func TestFormatDimensions(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(scoring.DescribeDimensions(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| `quantifiable_achievements` | Quantifiable Achievements | 20% |")

	out, err = registry.Format(scoring.DescribeDimensions(), "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Formatting Quality")
}

func TestFormatUnknown(t *testing.T) {
	registry := NewFormatterRegistry()
	_, err := registry.Format("plain string", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no formatter found")

	_, err = registry.Format(scoring.Analyze(resumeText), "yaml")
	require.Error(t, err)
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}
