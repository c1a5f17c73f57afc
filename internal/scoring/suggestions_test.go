package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func weakSections() Sections {
	var s Sections
	s.Set(&ContactResult{Base: newBase(DimensionContactInfo, 33), Found: []string{"email"}, Missing: []string{"phone", "linkedin"}})
	s.Set(&SectionsResult{Base: newBase(DimensionSections, 40), Found: []string{"summary", "experience"}, Missing: []string{"education", "skills"}})
	s.Set(&LengthResult{Base: newBase(DimensionLength, 40), WordCount: 120, Feedback: "Too short — your resume likely lacks sufficient detail."})
	s.Set(&ActionVerbsResult{Base: newBase(DimensionActionVerbs, 15), Found: []string{}})
	s.Set(&QuantifiableResult{Base: newBase(DimensionQuantifiable, 15), TypesFound: []string{}})
	s.Set(&KeywordResult{Base: newBase(DimensionKeywords, 25), Found: []string{}})
	s.Set(&FormattingResult{Base: newBase(DimensionFormatting, 60), Issues: []string{issueBlankLines, issueNoBullets}})
	return s
}

func TestSuggestOrder(t *testing.T) {
	expected := []string{
		"Add your LinkedIn profile URL — 80% of recruiters check LinkedIn before reaching out.",
		"Add a phone number so recruiters can contact you directly.",
		"Add a 'Education' section — ATS systems look for standard resume sections.",
		"Add a 'Skills' section — ATS systems look for standard resume sections.",
		"Too short — your resume likely lacks sufficient detail.",
		"Use stronger action verbs like 'achieved', 'led', 'designed', 'optimized' to start your bullet points.",
		"Add more numbers and metrics — e.g., 'Increased sales by 25%' or 'Managed a team of 12'.",
		"Include more industry-relevant keywords from the job description to improve ATS matching.",
		issueBlankLines,
		issueNoBullets,
	}
	assert.Equal(t, expected, Suggest(weakSections()))
}

func TestSuggestThreshold(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		expectTip bool
	}{
		{"below threshold", 69, true},
		{"at threshold", 70, false},
		{"above threshold", 85, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Sections
			s.Set(&ActionVerbsResult{Base: newBase(DimensionActionVerbs, tt.score)})
			got := Suggest(s)
			if tt.expectTip {
				assert.Len(t, got, 1)
				assert.Contains(t, got[0], "stronger action verbs")
			} else {
				assert.Equal(t, []string{PositiveSuggestion}, got)
			}
		})
	}
}

func TestSuggestLengthFallback(t *testing.T) {
	var s Sections
	s.Set(&LengthResult{Base: newBase(DimensionLength, 40)})
	assert.Equal(t, []string{"Adjust your resume length."}, Suggest(s))
}

func TestSuggestEmptySections(t *testing.T) {
	assert.Equal(t, []string{PositiveSuggestion}, Suggest(Sections{}))
}

func TestSuggestDoesNotAliasIssues(t *testing.T) {
	s := weakSections()
	got := Suggest(s)
	got[len(got)-1] = "changed"

	r, _ := s.Get(DimensionFormatting)
	assert.Equal(t, []string{issueBlankLines, issueNoBullets}, r.(*FormattingResult).Issues)
}
