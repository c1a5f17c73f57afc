package scoring

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PositiveSuggestion is emitted when no rule finds a deficiency.
const PositiveSuggestion = "Excellent resume! Covers all major areas. Keep it updated regularly."

// improvementThreshold is the score below which a dimension triggers advice.
const improvementThreshold = 70

type suggestionRule struct {
	name string
	emit func(Sections) []string
}

// suggestionRules are evaluated top to bottom; their order is the priority
// shown to the user and must not be re-sorted.
var suggestionRules = []suggestionRule{
	{"linkedin", contactMissing("linkedin", "Add your LinkedIn profile URL — 80% of recruiters check LinkedIn before reaching out.")},
	{"email", contactMissing("email", "Include a professional email address at the top of your resume.")},
	{"phone", contactMissing("phone", "Add a phone number so recruiters can contact you directly.")},
	{"missing_sections", missingSections},
	{"length", lengthFeedback},
	{"action_verbs", lowScore(DimensionActionVerbs, "Use stronger action verbs like 'achieved', 'led', 'designed', 'optimized' to start your bullet points.")},
	{"quantifiable", lowScore(DimensionQuantifiable, "Add more numbers and metrics — e.g., 'Increased sales by 25%' or 'Managed a team of 12'.")},
	{"keywords", lowScore(DimensionKeywords, "Include more industry-relevant keywords from the job description to improve ATS matching.")},
	{"formatting", formattingIssues},
}

// Suggest derives prioritized improvement advice from scored sections.
func Suggest(sections Sections) []string {
	suggestions := []string{}
	for _, rule := range suggestionRules {
		suggestions = append(suggestions, rule.emit(sections)...)
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, PositiveSuggestion)
	}
	return suggestions
}

func contactMissing(channel, message string) func(Sections) []string {
	return func(s Sections) []string {
		r, ok := s.Get(DimensionContactInfo)
		if !ok {
			return nil
		}
		if c, ok := r.(*ContactResult); ok && slices.Contains(c.Missing, channel) {
			return []string{message}
		}
		return nil
	}
}

func missingSections(s Sections) []string {
	r, ok := s.Get(DimensionSections)
	if !ok {
		return nil
	}
	sr, ok := r.(*SectionsResult)
	if !ok {
		return nil
	}
	title := cases.Title(language.English)
	var out []string
	for _, name := range sr.Missing {
		out = append(out, fmt.Sprintf("Add a '%s' section — ATS systems look for standard resume sections.", title.String(name)))
	}
	return out
}

func lengthFeedback(s Sections) []string {
	r, ok := s.Get(DimensionLength)
	if !ok || r.Common().Score >= improvementThreshold {
		return nil
	}
	if lr, ok := r.(*LengthResult); ok && lr.Feedback != "" {
		return []string{lr.Feedback}
	}
	return []string{"Adjust your resume length."}
}

func lowScore(key DimensionKey, message string) func(Sections) []string {
	return func(s Sections) []string {
		if r, ok := s.Get(key); ok && r.Common().Score < improvementThreshold {
			return []string{message}
		}
		return nil
	}
}

func formattingIssues(s Sections) []string {
	r, ok := s.Get(DimensionFormatting)
	if !ok {
		return nil
	}
	if fr, ok := r.(*FormattingResult); ok {
		return append([]string(nil), fr.Issues...)
	}
	return nil
}
