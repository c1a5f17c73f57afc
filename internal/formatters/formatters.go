package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumescore/internal/scoring"
	"resumescore/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Data type names used as registry keys.
const (
	TypeAny        = "any"
	TypeReport     = "AnalysisReport"
	TypeScore      = "ScoreResponse"
	TypeBatch      = "BatchResult"
	TypeDimensions = "DimensionList"
)

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry is the registry shared by CLI commands.
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeReport, &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", TypeReport, &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeScore, &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", TypeScore, &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeBatch, &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", TypeBatch, &BatchMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeDimensions, &DimensionsTextFormatter{})
	registry.RegisterFormatter("markdown", TypeDimensions, &DimensionsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *scoring.AnalysisReport:
		return TypeReport
	case types.ScoreResponse:
		return TypeScore
	case types.BatchResult:
		return TypeBatch
	case []scoring.DimensionInfo:
		return TypeDimensions
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// ReportTextFormatter renders a report as plain text
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(*scoring.AnalysisReport)
	if !ok || report == nil {
		return "", fmt.Errorf("expected *AnalysisReport, got %T", data)
	}
	var output strings.Builder
	writeReportText(&output, report)
	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return TypeReport
}

// ReportMarkdownFormatter renders a report as markdown
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(*scoring.AnalysisReport)
	if !ok || report == nil {
		return "", fmt.Errorf("expected *AnalysisReport, got %T", data)
	}
	var output strings.Builder
	output.WriteString("# Resume Score\n\n")
	writeReportMarkdown(&output, report, "##")
	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return TypeReport
}

// ScoreTextFormatter renders a single scored document as plain text
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ScoreResponse)
	if !ok || result.Report == nil {
		return "", fmt.Errorf("expected ScoreResponse with report, got %T", data)
	}
	var output strings.Builder
	if result.Filename != "" {
		fmt.Fprintf(&output, "File: %s\n", result.Filename)
	}
	writeReportText(&output, result.Report)
	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return TypeScore
}

// ScoreMarkdownFormatter renders a single scored document as markdown
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ScoreResponse)
	if !ok || result.Report == nil {
		return "", fmt.Errorf("expected ScoreResponse with report, got %T", data)
	}
	var output strings.Builder
	title := "Resume Score"
	if result.Filename != "" {
		title += ": " + result.Filename
	}
	fmt.Fprintf(&output, "# %s\n\n", title)
	writeReportMarkdown(&output, result.Report, "##")
	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return TypeScore
}

// BatchTextFormatter renders batch results as plain text
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	batch, ok := data.(types.BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== BATCH SUMMARY ===\n")
	fmt.Fprintf(&output, "Resumes: %d\n", batch.Count)
	fmt.Fprintf(&output, "Average score: %.1f/100\n", batch.AverageScore)

	for i, result := range batch.Results {
		if result.Report == nil {
			continue
		}
		fmt.Fprintf(&output, "\n##### [%d] %s #####\n", i+1, displayName(result, i))
		writeReportText(&output, result.Report)
	}
	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return TypeBatch
}

// BatchMarkdownFormatter renders batch results as markdown
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	batch, ok := data.(types.BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Batch Resume Scores\n\n")
	fmt.Fprintf(&output, "**Resumes:** %d  \n**Average score:** %.1f/100\n\n", batch.Count, batch.AverageScore)

	output.WriteString("| # | File | Score |\n|---|------|-------|\n")
	for i, result := range batch.Results {
		if result.Report == nil {
			continue
		}
		fmt.Fprintf(&output, "| %d | %s | %.1f |\n", i+1, displayName(result, i), result.Report.OverallScore)
	}

	for i, result := range batch.Results {
		if result.Report == nil {
			continue
		}
		fmt.Fprintf(&output, "\n## %s\n\n", displayName(result, i))
		writeReportMarkdown(&output, result.Report, "###")
	}
	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return TypeBatch
}

// DimensionsTextFormatter lists the scored dimensions as plain text
type DimensionsTextFormatter struct{}

func (dtf *DimensionsTextFormatter) Format(data any) (string, error) {
	infos, ok := data.([]scoring.DimensionInfo)
	if !ok {
		return "", fmt.Errorf("expected []DimensionInfo, got %T", data)
	}
	var output strings.Builder
	output.WriteString("=== SCORED DIMENSIONS ===\n")
	for _, info := range infos {
		fmt.Fprintf(&output, "%-28s %-26s %3.0f%%\n", info.Key, info.Label, info.Weight*100)
	}
	return output.String(), nil
}

func (dtf *DimensionsTextFormatter) SupportedType() string {
	return TypeDimensions
}

// DimensionsMarkdownFormatter lists the scored dimensions as a markdown table
type DimensionsMarkdownFormatter struct{}

func (dmf *DimensionsMarkdownFormatter) Format(data any) (string, error) {
	infos, ok := data.([]scoring.DimensionInfo)
	if !ok {
		return "", fmt.Errorf("expected []DimensionInfo, got %T", data)
	}
	var output strings.Builder
	output.WriteString("# Scored Dimensions\n\n| Key | Dimension | Weight |\n|-----|-----------|--------|\n")
	for _, info := range infos {
		fmt.Fprintf(&output, "| `%s` | %s | %.0f%% |\n", info.Key, info.Label, info.Weight*100)
	}
	return output.String(), nil
}

func (dmf *DimensionsMarkdownFormatter) SupportedType() string {
	return TypeDimensions
}

func displayName(result types.ScoreResponse, index int) string {
	if result.Filename != "" {
		return result.Filename
	}
	return fmt.Sprintf("resume %d", index+1)
}

func writeReportText(output *strings.Builder, report *scoring.AnalysisReport) {
	output.WriteString("=== RESUME SCORE ===\n")
	fmt.Fprintf(output, "Overall: %.1f/100\n\n", report.OverallScore)

	if report.Sections.Len() > 0 {
		output.WriteString("=== DIMENSIONS ===\n")
		report.Sections.Each(func(r scoring.SectionResult) {
			base := r.Common()
			fmt.Fprintf(output, "%s (%.0f%%): %.0f/100\n", base.Label, base.Weight*100, base.Score)
			for _, line := range evidence(r) {
				fmt.Fprintf(output, "  %s\n", line)
			}
		})
		output.WriteString("\n")
	}

	output.WriteString("=== SUGGESTIONS ===\n")
	for i, s := range report.Suggestions {
		fmt.Fprintf(output, "%d. %s\n", i+1, s)
	}

	if len(report.Keywords) > 0 {
		output.WriteString("\n=== KEYWORDS ===\n")
		output.WriteString(strings.Join(report.Keywords, ", "))
		output.WriteString("\n")
	}
}

func writeReportMarkdown(output *strings.Builder, report *scoring.AnalysisReport, heading string) {
	fmt.Fprintf(output, "**Overall score:** %.1f/100\n\n", report.OverallScore)

	if report.Sections.Len() > 0 {
		fmt.Fprintf(output, "%s Dimensions\n\n", heading)
		output.WriteString("| Dimension | Weight | Score |\n|-----------|--------|-------|\n")
		report.Sections.Each(func(r scoring.SectionResult) {
			base := r.Common()
			fmt.Fprintf(output, "| %s | %.0f%% | %.0f |\n", base.Label, base.Weight*100, base.Score)
		})
		output.WriteString("\n")

		report.Sections.Each(func(r scoring.SectionResult) {
			fmt.Fprintf(output, "%s# %s\n\n", heading, r.Common().Label)
			for _, line := range evidence(r) {
				fmt.Fprintf(output, "- %s\n", line)
			}
			output.WriteString("\n")
		})
	}

	fmt.Fprintf(output, "%s Suggestions\n\n", heading)
	for i, s := range report.Suggestions {
		fmt.Fprintf(output, "%d. %s\n", i+1, s)
	}

	if len(report.Keywords) > 0 {
		fmt.Fprintf(output, "\n%s Keywords\n\n", heading)
		quoted := make([]string, len(report.Keywords))
		for i, kw := range report.Keywords {
			quoted[i] = "`" + kw + "`"
		}
		output.WriteString(strings.Join(quoted, ", "))
		output.WriteString("\n")
	}
}

// evidence summarizes what an analyzer observed, one line per fact.
func evidence(r scoring.SectionResult) []string {
	switch v := r.(type) {
	case *scoring.ContactResult:
		return []string{"Found: " + listOrNone(v.Found), "Missing: " + listOrNone(v.Missing)}
	case *scoring.SectionsResult:
		return []string{"Found: " + listOrNone(v.Found), "Missing: " + listOrNone(v.Missing)}
	case *scoring.LengthResult:
		return []string{fmt.Sprintf("Words: %d", v.WordCount), v.Feedback}
	case *scoring.ActionVerbsResult:
		return []string{fmt.Sprintf("Verbs (%d): %s", v.Count, listOrNone(v.Found))}
	case *scoring.QuantifiableResult:
		return []string{fmt.Sprintf("Metrics: %d (%s)", v.MatchCount, listOrNone(v.TypesFound))}
	case *scoring.KeywordResult:
		if len(v.ByCategory) == 0 {
			return []string{"Keywords: none"}
		}
		lines := make([]string, 0, len(v.ByCategory))
		for _, c := range v.ByCategory {
			lines = append(lines, fmt.Sprintf("%s: %s", c.Category, strings.Join(c.Keywords, ", ")))
		}
		return lines
	case *scoring.FormattingResult:
		if len(v.Issues) == 0 {
			return []string{"No issues"}
		}
		return v.Issues
	default:
		return nil
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
