package scoring

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// analyzer inspects the full normalized text and scores one dimension.
type analyzer func(text string) SectionResult

// analyzers run in report order.
var analyzers = []analyzer{
	analyzeContact,
	analyzeSections,
	analyzeLength,
	analyzeActionVerbs,
	analyzeQuantifiable,
	analyzeKeywords,
	analyzeFormatting,
}

// scoredContactChannels counts toward the contact score; GitHub is reported
// as evidence only.
const scoredContactChannels = 3

func analyzeContact(text string) SectionResult {
	found := []string{}
	missing := []string{}
	channels := []struct {
		name    string
		present bool
	}{
		{"email", emailPattern.MatchString(text)},
		{"phone", phonePattern.MatchString(text)},
		{"linkedin", linkedinPattern.MatchString(text)},
	}
	for _, ch := range channels {
		if ch.present {
			found = append(found, ch.name)
		} else {
			missing = append(missing, ch.name)
		}
	}
	scored := len(found)
	if githubPattern.MatchString(text) {
		found = append(found, "github")
	}

	score := math.Min(100, math.RoundToEven(float64(scored)/scoredContactChannels*100))
	return &ContactResult{
		Base:    newBase(DimensionContactInfo, score),
		Found:   found,
		Missing: missing,
	}
}

const (
	sectionBonusPoints = 6.67
	maxBonusSections   = 3
)

func analyzeSections(text string) SectionResult {
	found := []string{}
	missing := []string{}
	essentialFound := 0
	for _, sp := range sectionPatterns {
		_, essential := essentialSections[sp.name]
		switch {
		case sp.pattern.MatchString(text):
			found = append(found, sp.name)
			if essential {
				essentialFound++
			}
		case essential:
			missing = append(missing, sp.name)
		}
	}

	bonus := 0.0
	if extra := len(found) - essentialFound; extra > 0 {
		bonus = float64(min(extra, maxBonusSections)) * sectionBonusPoints
	}
	score := math.Min(100, math.RoundToEven(float64(essentialFound)/float64(len(essentialSections))*80+bonus))

	return &SectionsResult{
		Base:    newBase(DimensionSections, score),
		Found:   found,
		Missing: missing,
	}
}

func analyzeLength(text string) SectionResult {
	words := len(strings.Fields(text))

	var score float64
	var feedback string
	switch {
	case words >= 300 && words <= 800:
		score, feedback = 100, "Great length for a one-page resume."
	case words >= 200 && words < 300:
		score, feedback = 70, "A bit short — consider adding more detail to your experience."
	case words > 800 && words <= 1200:
		score, feedback = 80, "Slightly long — consider trimming to keep it concise."
	case words < 200:
		score, feedback = 40, "Too short — your resume likely lacks sufficient detail."
	default:
		score, feedback = 60, "Very long — consider limiting to 1-2 pages."
	}

	return &LengthResult{
		Base:      newBase(DimensionLength, score),
		WordCount: words,
		Feedback:  feedback,
	}
}

func analyzeActionVerbs(text string) SectionResult {
	seen := make(map[string]struct{})
	found := []string{}
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		if _, ok := actionVerbs[word]; ok {
			found = append(found, word)
		}
	}
	slices.Sort(found)

	count := len(found)
	return &ActionVerbsResult{
		Base:  newBase(DimensionActionVerbs, stepScore(count, []step{{10, 100}, {6, 80}, {3, 60}, {1, 40}}, 15)),
		Found: found,
		Count: count,
	}
}

func analyzeQuantifiable(text string) SectionResult {
	types := []string{}
	total := 0
	for _, mp := range metricPatterns {
		if n := len(mp.pattern.FindAllStringIndex(text, -1)); n > 0 {
			types = append(types, mp.kind)
			total += n
		}
	}
	slices.Sort(types)

	return &QuantifiableResult{
		Base:       newBase(DimensionQuantifiable, stepScore(total, []step{{8, 100}, {5, 85}, {3, 70}, {1, 50}}, 15)),
		MatchCount: total,
		TypesFound: types,
	}
}

func analyzeKeywords(text string) SectionResult {
	lower := strings.ToLower(text)
	var all []string
	byCategory := KeywordsByCategory{}
	for _, pool := range keywordPools {
		var hits []string
		for _, kw := range pool.keywords {
			if strings.Contains(lower, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > 0 {
			byCategory = append(byCategory, CategoryKeywords{Category: pool.category, Keywords: hits})
		}
		all = append(all, hits...)
	}

	ratio := float64(len(all)) / float64(keywordPoolSize)
	var score float64
	switch {
	case ratio >= 0.35:
		score = 100
	case ratio >= 0.25:
		score = 85
	case ratio >= 0.15:
		score = 70
	case ratio >= 0.08:
		score = 50
	default:
		score = 25
	}

	found := slices.Compact(slices.Sorted(slices.Values(all)))
	if found == nil {
		found = []string{}
	}
	return &KeywordResult{
		Base:       newBase(DimensionKeywords, score),
		Found:      found,
		ByCategory: byCategory,
	}
}

// Formatting issue messages, in detection order.
const (
	issueBlankLines = "Excessive blank lines detected — tighten spacing."
	issueAllCaps    = "Too many ALL-CAPS lines — use title case for headings."
	issueLongLines  = "Many lines exceed 120 characters — improve text wrapping."
	issueNoBullets  = "No bullet points found — use bullets to improve readability."
)

func analyzeFormatting(text string) SectionResult {
	issues := []string{}
	lines := strings.Split(text, "\n")

	if len(blankRunPattern.FindAllStringIndex(text, -1)) > 2 {
		issues = append(issues, issueBlankLines)
	}

	capsLines, longLines := 0, 0
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped != "" && isUpper(stripped) && utf8.RuneCountInString(stripped) > 20 {
			capsLines++
		}
		if utf8.RuneCountInString(line) > 120 {
			longLines++
		}
	}
	if capsLines > 5 {
		issues = append(issues, issueAllCaps)
	}
	if longLines > 10 {
		issues = append(issues, issueLongLines)
	}
	if !bulletLinePattern.MatchString(text) {
		issues = append(issues, issueNoBullets)
	}

	return &FormattingResult{
		Base:   newBase(DimensionFormatting, math.Max(20, 100-20*float64(len(issues)))),
		Issues: issues,
	}
}

type step struct {
	atLeast int
	score   float64
}

// stepScore returns the score of the first step whose threshold n reaches.
func stepScore(n int, steps []step, fallback float64) float64 {
	for _, s := range steps {
		if n >= s.atLeast {
			return s.score
		}
	}
	return fallback
}

// isUpper reports whether s has at least one cased letter and no lowercase
// or titlecase letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

func clampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}
