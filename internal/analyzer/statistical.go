package analyzer

import (
	"strings"
	"unicode"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// Expected English letter frequencies in percent, for the twelve most common
// letters. Texts whose observed distribution strays far from these are
// unlikely to be natural prose.
var expectedLetterFreq = map[rune]float64{
	'e': 12.7, 't': 9.1, 'a': 8.2, 'o': 7.5, 'i': 7.0, 'n': 6.7,
	's': 6.3, 'h': 6.1, 'r': 6.0, 'd': 4.3, 'l': 4.0, 'c': 2.8,
}

const (
	charDeviationThreshold = 3.0
	charDistributionRisk   = 15
	minMeanWordLength      = 3
	maxMeanWordLength      = 8
	wordLengthRisk         = 10
)

// StatisticalAnalyzer flags distributional anomalies in the extracted text.
// Like the fraud analyzer its sub-score is a penalty, not evidence.
type StatisticalAnalyzer struct{}

func (StatisticalAnalyzer) Name() string { return domain.AnalyzerStatistical }

func (StatisticalAnalyzer) Analyze(input Input) domain.AnalysisResult {
	result := domain.AnalysisResult{
		Analyzer: domain.AnalyzerStatistical,
		Details:  map[string]any{},
	}

	risk := 0.0
	if deviation, ok := meanFrequencyDeviation(input.Text); ok {
		result.Details["char_deviation"] = deviation
		if deviation > charDeviationThreshold {
			risk += charDistributionRisk
			result.Flags = append(result.Flags, domain.FlagAbnormalCharDistribution)
		}
	}

	if mean, ok := meanWordLength(input.Text); ok {
		result.Details["mean_word_length"] = mean
		if mean < minMeanWordLength || mean > maxMeanWordLength {
			risk += wordLengthRisk
			result.Flags = append(result.Flags, domain.FlagUnusualWordLength)
		}
	}

	result.SubScore = risk
	return result
}

// meanFrequencyDeviation computes the mean absolute deviation, in percentage
// points, between the observed lowercase letter distribution and the
// expected table. ok is false when the text holds no letters.
func meanFrequencyDeviation(text string) (float64, bool) {
	var counts ['z' - 'a' + 1]int
	total := 0
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			counts[r-'a']++
			total++
		}
	}
	if total == 0 {
		return 0, false
	}

	sum := 0.0
	for letter, expected := range expectedLetterFreq {
		actual := float64(counts[letter-'a']) / float64(total) * 100
		diff := actual - expected
		if diff < 0 {
			diff = -diff
		}
		sum += diff
	}
	return sum / float64(len(expectedLetterFreq)), true
}

// meanWordLength averages per-word letter counts, ignoring non-letter runes.
// ok is false when no word contains a letter.
func meanWordLength(text string) (float64, bool) {
	totalLetters := 0
	words := 0
	for _, word := range strings.Fields(text) {
		letters := 0
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters > 0 {
			totalLetters += letters
			words++
		}
	}
	if words == 0 {
		return 0, false
	}
	return float64(totalLetters) / float64(words), true
}
