package analyzer

import (
	"regexp"
	"strings"
	"time"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

var (
	datePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	namePattern = regexp.MustCompile(`(?i)name\s*:?\s*[a-zA-Z\s]{2,50}`)
)

const minWordCount = 10

// ContentAnalyzer validates field plausibility: dates must parse and not lie
// in the future, a name-like field must be present, and the text must carry a
// minimum amount of content. Penalties stack; the aggregator clamps later.
type ContentAnalyzer struct {
	// Now is overridable for tests; zero value uses the wall clock.
	Now func() time.Time
}

func (ContentAnalyzer) Name() string { return domain.AnalyzerContent }

func (a ContentAnalyzer) Analyze(input Input) domain.AnalysisResult {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	var issues []string
	validDates := true
	for _, raw := range datePattern.FindAllString(input.Text, -1) {
		if !plausibleDate(raw, now()) {
			validDates = false
			issues = append(issues, "Invalid date: "+raw)
		}
	}

	validNames := namePattern.MatchString(input.Text)
	if !validNames {
		issues = append(issues, "No valid names found")
	}

	wordCount := len(strings.Fields(input.Text))
	if wordCount < minWordCount {
		issues = append(issues, "Insufficient content extracted")
	}

	score := 100.0
	if !validDates {
		score -= 25
	}
	if !validNames {
		score -= 25
	}
	score -= float64(len(issues)) * 10

	return domain.AnalysisResult{
		Analyzer: domain.AnalyzerContent,
		SubScore: score,
		Flags:    issues,
		Details: map[string]any{
			"has_valid_dates": validDates,
			"has_valid_names": validNames,
			"word_count":      wordCount,
		},
	}
}

// plausibleDate accepts month-first dates with two or four digit years; a
// date that fails to parse or sits in the future counts as implausible.
func plausibleDate(raw string, now time.Time) bool {
	normalized := strings.ReplaceAll(raw, "-", "/")
	for _, layout := range []string{"1/2/2006", "1/2/06"} {
		parsed, err := time.Parse(layout, normalized)
		if err != nil {
			continue
		}
		return !parsed.After(now)
	}
	return false
}
