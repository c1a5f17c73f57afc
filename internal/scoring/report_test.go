package scoring

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionsMarshalKeepsOrder(t *testing.T) {
	report := Analyze(strongResume())
	data, err := json.Marshal(report.Sections)
	require.NoError(t, err)

	last := -1
	for _, key := range Dimensions {
		idx := strings.Index(string(data), `"`+string(key)+`":`)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, key)
		last = idx
	}
}

func TestKeywordsByCategoryJSON(t *testing.T) {
	kc := KeywordsByCategory{
		{Category: "technical", Keywords: []string{"python"}},
		{Category: "soft_skills", Keywords: []string{"leadership"}},
	}
	data, err := json.Marshal(kc)
	require.NoError(t, err)
	assert.Equal(t, `{"technical":["python"],"soft_skills":["leadership"]}`, string(data))

	var decoded KeywordsByCategory
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, kc, decoded)

	empty, err := json.Marshal(KeywordsByCategory{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestReportRoundTrip(t *testing.T) {
	original := Analyze(resumeWithoutEducation())
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded AnalysisReport
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.OverallScore, decoded.OverallScore)
	assert.Equal(t, original.Suggestions, decoded.Suggestions)
	assert.Equal(t, original.Sections.Keys(), decoded.Sections.Keys())
	for _, key := range Dimensions {
		want, _ := original.Sections.Get(key)
		got, ok := decoded.Sections.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestSectionsUnmarshalRejectsUnknownDimension(t *testing.T) {
	var s Sections
	err := json.Unmarshal([]byte(`{"color":{"score":1}}`), &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dimension")
}

func TestSectionsSetReplaces(t *testing.T) {
	var s Sections
	s.Set(&LengthResult{Base: newBase(DimensionLength, 40)})
	s.Set(&LengthResult{Base: newBase(DimensionLength, 100)})
	assert.Equal(t, 1, s.Len())
	r, _ := s.Get(DimensionLength)
	assert.Equal(t, 100.0, r.Common().Score)
}

func TestNewBaseClamps(t *testing.T) {
	assert.Equal(t, 100.0, newBase(DimensionLength, 140).Score)
	assert.Equal(t, 0.0, newBase(DimensionLength, -3).Score)
}
