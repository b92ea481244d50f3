package analyzer

import (
	"regexp"
	"strings"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

type fraudPattern struct {
	pattern *regexp.Regexp
	risk    float64
	flag    string
}

// Risk weights are additive across patterns; a document tripping several
// heuristics accumulates the full sum.
var fraudPatterns = []fraudPattern{
	{regexp.MustCompile(`(?i)copy|duplicate|sample`), 30, domain.FlagCopyWatermark},
	{regexp.MustCompile(`(?i)test|demo|example`), 40, domain.FlagTestDocument},
	{regexp.MustCompile(`\*{3,}|x{3,}|_{3,}`), 20, domain.FlagRedactedContent},
	{regexp.MustCompile(`(?i)photoshop|edited|modified`), 50, domain.FlagEditingTraces},
}

const (
	lineDeviationRatio    = 0.8
	inconsistentLineShare = 0.3
	formattingRisk        = 15
)

// FraudAnalyzer applies pattern-based fraud heuristics over the text. Its
// sub-score is a risk penalty that the aggregator subtracts directly.
type FraudAnalyzer struct{}

func (FraudAnalyzer) Name() string { return domain.AnalyzerFraud }

func (FraudAnalyzer) Analyze(input Input) domain.AnalysisResult {
	result := domain.AnalysisResult{
		Analyzer: domain.AnalyzerFraud,
		Details:  map[string]any{},
	}

	risk := 0.0
	var matched []map[string]any
	for _, fp := range fraudPatterns {
		matches := fp.pattern.FindAllString(input.Text, -1)
		if len(matches) == 0 {
			continue
		}
		risk += fp.risk
		result.Flags = append(result.Flags, fp.flag)
		matched = append(matched, map[string]any{
			"pattern": fp.pattern.String(),
			"matches": len(matches),
			"risk":    fp.risk,
		})
	}

	if inconsistentFormatting(input.Text) {
		risk += formattingRisk
		result.Flags = append(result.Flags, domain.FlagInconsistentFormatting)
	}

	result.SubScore = risk
	result.Details["patterns"] = matched
	return result
}

// inconsistentFormatting reports whether more than 30% of non-blank lines
// deviate from the mean line length by over 80%, a cheap proxy for spliced
// or re-typeset text.
func inconsistentFormatting(text string) bool {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return false
	}

	total := 0
	for _, line := range lines {
		total += len(line)
	}
	mean := float64(total) / float64(len(lines))

	deviant := 0
	for _, line := range lines {
		diff := float64(len(line)) - mean
		if diff < 0 {
			diff = -diff
		}
		if diff > mean*lineDeviationRatio {
			deviant++
		}
	}
	return float64(deviant) > float64(len(lines))*inconsistentLineShare
}
