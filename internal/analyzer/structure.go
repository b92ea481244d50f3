package analyzer

import (
	"strings"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

const pointsPerRequiredField = 20

// StructureAnalyzer scores template compliance: each required field whose
// pattern matches the text contributes a fixed number of points, and a
// document missing most of its type's common phrases is flagged.
type StructureAnalyzer struct{}

func (StructureAnalyzer) Name() string { return domain.AnalyzerStructure }

func (StructureAnalyzer) Analyze(input Input) domain.AnalysisResult {
	result := domain.AnalysisResult{
		Analyzer: domain.AnalyzerStructure,
		Details:  map[string]any{},
	}

	tpl, ok := TemplateFor(input.DocumentType)
	if !ok {
		result.Details["valid"] = false
		result.Details["reason"] = "unknown document type"
		return result
	}

	found := map[string]bool{}
	var missing []string
	score := 0.0
	for _, field := range tpl.RequiredFields {
		if field.Pattern.MatchString(input.Text) {
			found[field.Name] = true
			score += pointsPerRequiredField
		} else {
			found[field.Name] = false
			missing = append(missing, field.Name)
		}
	}

	textLower := strings.ToLower(input.Text)
	present := 0
	for _, phrase := range tpl.CommonPhrases {
		if strings.Contains(textLower, phrase) {
			present++
		}
	}
	if present*2 < len(tpl.CommonPhrases) {
		result.Flags = append(result.Flags, domain.FlagTemplateMismatch)
	}

	result.SubScore = score
	result.Details["valid"] = score >= 60
	result.Details["found_fields"] = found
	result.Details["missing_fields"] = missing
	result.Details["phrases_present"] = present
	return result
}
