package analyzer

import (
	"strings"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

const (
	nameMatchPoints = 40
	typeMatchPoints = 30
)

// MetadataAnalyzer cross-checks externally supplied claims against the
// extracted text. It only adds confirming evidence: absent or unmatched
// metadata yields zero, never a penalty.
type MetadataAnalyzer struct{}

func (MetadataAnalyzer) Name() string { return domain.AnalyzerMetadata }

func (MetadataAnalyzer) Analyze(input Input) domain.AnalysisResult {
	textLower := strings.ToLower(input.Text)

	score := 0.0
	nameMatch := false
	if name := strings.TrimSpace(input.Metadata.RecipientName); name != "" {
		if strings.Contains(textLower, strings.ToLower(name)) {
			nameMatch = true
			score += nameMatchPoints
		}
	}

	typeMatch := false
	if tpl, ok := TemplateFor(input.DocumentType); ok {
		for _, keyword := range tpl.Keywords {
			if strings.Contains(textLower, keyword) {
				typeMatch = true
				score += typeMatchPoints
				break
			}
		}
	}

	return domain.AnalysisResult{
		Analyzer: domain.AnalyzerMetadata,
		SubScore: score,
		Details: map[string]any{
			"name_match": nameMatch,
			"type_match": typeMatch,
		},
	}
}
