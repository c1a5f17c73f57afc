// Package scoring turns plain resume text into a weighted quality report.
//
// Scoring is deterministic and rule-based: seven independent analyzers each
// score one dimension from 0 to 100, an aggregator combines them with fixed
// weights, and an ordered rule list turns the evidence into suggestions.
// Every exported function is safe for concurrent use; the only shared state
// is the read-only taxonomy compiled at package init.
package scoring

import (
	"strconv"
	"strings"
)

// EmptyTextSuggestion is the single suggestion returned for blank input.
const EmptyTextSuggestion = "Could not extract text from your resume. Please upload a valid PDF or DOCX file."

// Analyze scores resume text. Blank input yields a zero-score report with no
// sections; any other input runs through every analyzer.
func Analyze(text string) *AnalysisReport {
	normalized, ok := Preprocess(text)
	if !ok {
		return emptyReport()
	}

	results := make([]SectionResult, 0, len(analyzers))
	for _, analyze := range analyzers {
		results = append(results, analyze(normalized))
	}

	overall, sections := Aggregate(results)
	return &AnalysisReport{
		OverallScore: overall,
		Sections:     sections,
		Suggestions:  Suggest(sections),
		Keywords:     foundKeywords(sections),
	}
}

// Preprocess trims surrounding whitespace and reports whether any text remains.
func Preprocess(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

// Aggregate combines dimension results into the overall score, rounded to
// one decimal, and the ordered sections mapping.
func Aggregate(results []SectionResult) (float64, Sections) {
	var sections Sections
	total := 0.0
	for _, r := range results {
		base := r.Common()
		total += base.Score * base.Weight
		sections.Set(r)
	}
	return clampScore(RoundScore(total)), sections
}

// RoundScore rounds to one decimal place. An exact tie goes to the even
// digit, so 51.25 becomes 51.2 and 51.35 becomes 51.4.
func RoundScore(x float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return rounded
}

func foundKeywords(sections Sections) []string {
	if r, ok := sections.Get(DimensionKeywords); ok {
		if kw, ok := r.(*KeywordResult); ok {
			return append([]string{}, kw.Found...)
		}
	}
	return []string{}
}

func emptyReport() *AnalysisReport {
	return &AnalysisReport{
		OverallScore: 0,
		Suggestions:  []string{EmptyTextSuggestion},
		Keywords:     []string{},
	}
}
