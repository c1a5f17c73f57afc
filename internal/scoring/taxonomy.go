package scoring

import "regexp"

// DimensionKey identifies one of the seven scored dimensions of a resume.
type DimensionKey string

const (
	DimensionContactInfo  DimensionKey = "contact_info"
	DimensionSections     DimensionKey = "sections"
	DimensionLength       DimensionKey = "length"
	DimensionActionVerbs  DimensionKey = "action_verbs"
	DimensionQuantifiable DimensionKey = "quantifiable_achievements"
	DimensionKeywords     DimensionKey = "keyword_optimization"
	DimensionFormatting   DimensionKey = "formatting"
)

// Dimensions lists every dimension in report order.
var Dimensions = []DimensionKey{
	DimensionContactInfo,
	DimensionSections,
	DimensionLength,
	DimensionActionVerbs,
	DimensionQuantifiable,
	DimensionKeywords,
	DimensionFormatting,
}

var dimensionWeights = map[DimensionKey]float64{
	DimensionContactInfo:  0.10,
	DimensionSections:     0.20,
	DimensionLength:       0.10,
	DimensionActionVerbs:  0.15,
	DimensionQuantifiable: 0.20,
	DimensionKeywords:     0.15,
	DimensionFormatting:   0.10,
}

var dimensionLabels = map[DimensionKey]string{
	DimensionContactInfo:  "Contact Information",
	DimensionSections:     "Resume Sections",
	DimensionLength:       "Resume Length",
	DimensionActionVerbs:  "Action Verbs",
	DimensionQuantifiable: "Quantifiable Achievements",
	DimensionKeywords:     "Keyword Optimization",
	DimensionFormatting:   "Formatting Quality",
}

// Weight returns the fixed contribution of the dimension to the overall score.
func (k DimensionKey) Weight() float64 {
	return dimensionWeights[k]
}

// Label returns the human-readable dimension name.
func (k DimensionKey) Label() string {
	return dimensionLabels[k]
}

// Valid reports whether k is one of the known dimensions.
func (k DimensionKey) Valid() bool {
	_, ok := dimensionWeights[k]
	return ok
}

// DimensionInfo describes a dimension for listings.
type DimensionInfo struct {
	Key    DimensionKey `json:"key"`
	Label  string       `json:"label"`
	Weight float64      `json:"weight"`
}

// DescribeDimensions returns every dimension in report order.
func DescribeDimensions() []DimensionInfo {
	infos := make([]DimensionInfo, 0, len(Dimensions))
	for _, key := range Dimensions {
		infos = append(infos, DimensionInfo{Key: key, Label: key.Label(), Weight: key.Weight()})
	}
	return infos
}

// actionVerbs is the lexicon of strong resume verbs.
var actionVerbs = toSet(
	"achieved", "administered", "analyzed", "architected", "automated",
	"built", "collaborated", "conducted", "consolidated", "coordinated",
	"created", "decreased", "delivered", "designed", "developed",
	"directed", "drove", "eliminated", "engineered", "established",
	"exceeded", "expanded", "facilitated", "founded", "generated",
	"grew", "headed", "identified", "implemented", "improved",
	"increased", "initiated", "innovated", "integrated", "introduced",
	"launched", "led", "managed", "mentored", "migrated",
	"negotiated", "optimized", "orchestrated", "organized", "oversaw",
	"pioneered", "planned", "produced", "programmed", "published",
	"raised", "reduced", "redesigned", "refactored", "resolved",
	"revamped", "saved", "scaled", "secured", "simplified",
	"spearheaded", "streamlined", "strengthened", "supervised", "surpassed",
	"transformed", "upgraded", "utilized",
)

type sectionPattern struct {
	name    string
	pattern *regexp.Regexp
}

// sectionPatterns is evaluated in order; the order drives both the found
// list and the order of missing-section suggestions.
var sectionPatterns = []sectionPattern{
	{"contact", regexp.MustCompile(`(?i)(contact|phone|email|address|linkedin|github|portfolio)`)},
	{"summary", regexp.MustCompile(`(?i)(summary|objective|profile|about` + space + `*me|professional` + space + `*summary)`)},
	{"experience", regexp.MustCompile(`(?i)(experience|employment|work` + space + `*history|professional` + space + `*experience)`)},
	{"education", regexp.MustCompile(`(?i)(education|academic|university|college|degree|certification)`)},
	{"skills", regexp.MustCompile(`(?i)(skills|technologies|technical` + space + `*skills|competencies|proficiencies)`)},
	{"projects", regexp.MustCompile(`(?i)(projects|portfolio|personal` + space + `*projects|key` + space + `*projects)`)},
	{"certifications", regexp.MustCompile(`(?i)(certifications?|licenses?|credentials)`)},
	{"awards", regexp.MustCompile(`(?i)(awards?|honors?|achievements?|recognition)`)},
	{"languages", regexp.MustCompile(`(?i)(languages?|fluency|proficiency)`)},
	{"volunteer", regexp.MustCompile(`(?i)(volunteer|community|extracurricular)`)},
}

var essentialSections = toSet("summary", "experience", "education", "skills")

type keywordPool struct {
	category string
	keywords []string
}

var keywordPools = []keywordPool{
	{"soft_skills", []string{
		"leadership", "communication", "teamwork", "problem-solving", "critical thinking",
		"adaptability", "time management", "collaboration", "decision-making", "analytical",
	}},
	{"technical", []string{
		"python", "javascript", "typescript", "react", "node", "sql", "aws", "docker",
		"kubernetes", "git", "agile", "scrum", "ci/cd", "rest", "api", "machine learning",
		"data analysis", "cloud",
	}},
	{"business", []string{
		"strategy", "revenue", "budget", "stakeholder", "cross-functional", "roi", "kpi",
		"metrics", "project management", "business development",
	}},
}

var keywordPoolSize = func() int {
	n := 0
	for _, pool := range keywordPools {
		n += len(pool.keywords)
	}
	return n
}()

// Character classes for whitespace and word characters that reach beyond
// ASCII. Text pulled from PDFs often carries no-break spaces, and addresses
// may contain accented letters.
const (
	spaceChars = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`
	wordChars  = `\p{L}\p{N}_`
	space      = `[` + spaceChars + `]`
)

var (
	emailPattern    = regexp.MustCompile(`[` + wordChars + `.+-]+@[` + wordChars + `-]+\.[` + wordChars + `.-]+`)
	phonePattern    = regexp.MustCompile(`(\+?\d[\d` + spaceChars + `\-().]{7,}\d)`)
	linkedinPattern = regexp.MustCompile(`(?i)linkedin\.com/in/`)
	githubPattern   = regexp.MustCompile(`(?i)github\.com/`)
)

type metricPattern struct {
	kind    string
	pattern *regexp.Regexp
}

var metricPatterns = []metricPattern{
	{"percentage", regexp.MustCompile(`\d+` + space + `*%`)},
	{"dollar_amount", regexp.MustCompile(`\$[\d,]+\.?\d*`)},
	{"large_number", regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)},
	{"impact_metric", regexp.MustCompile(`(?i)(?:increased|decreased|reduced|improved|grew|saved|generated|raised)` + space + `+(?:by` + space + `+)?\d`)},
}

var (
	wordPattern       = regexp.MustCompile(`[a-z]+`)
	blankRunPattern   = regexp.MustCompile(`\n{4,}`)
	bulletLinePattern = regexp.MustCompile(`(?m)^` + space + `*[•\-*]`)
)

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
