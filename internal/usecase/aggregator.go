package usecase

import (
	"math"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

const AggregatorVersion = "score.v1"

// AuthenticThreshold is the fixed confidence cutoff: at or above it a
// document is considered authentic.
const AuthenticThreshold = 70

// Fusion weights. Structure dominates, OCR quality matters, metadata only
// nudges; fraud and statistical penalties apply at full weight.
const (
	ocrWeight       = 0.3
	structureWeight = 0.4
	contentWeight   = 0.2
	metadataWeight  = 0.1

	corruptionPenalty = 50
)

// AggregateInput carries the six sub-results the aggregator fuses. Structure,
// Content and Metadata are evidence scores; Fraud and Statistical are
// penalties subtracted directly.
type AggregateInput struct {
	OCRConfidence float64
	Structure     domain.AnalysisResult
	Content       domain.AnalysisResult
	Metadata      domain.AnalysisResult
	Fraud         domain.AnalysisResult
	Statistical   domain.AnalysisResult
	FileCorrupted bool
}

type AggregateResult struct {
	Confidence  int
	IsAuthentic bool
	Impacts     map[string]float64
}

// AggregateScore is a pure function of its input: no I/O, no randomness.
// It starts from 100 and subtracts weighted penalties, clamping the result
// to the 0-100 range before applying the authenticity threshold.
func AggregateScore(input AggregateInput) AggregateResult {
	total := 100.0
	impacts := make(map[string]float64, 7)

	ocrPenalty := (100 - input.OCRConfidence) * ocrWeight
	total -= ocrPenalty
	impacts["ocr"] = -ocrPenalty

	structurePenalty := (100 - input.Structure.SubScore) * structureWeight
	total -= structurePenalty
	impacts[domain.AnalyzerStructure] = -structurePenalty

	contentPenalty := (100 - math.Max(0, input.Content.SubScore)) * contentWeight
	total -= contentPenalty
	impacts[domain.AnalyzerContent] = -contentPenalty

	metadataPenalty := (100 - input.Metadata.SubScore) * metadataWeight
	total -= metadataPenalty
	impacts[domain.AnalyzerMetadata] = -metadataPenalty

	total -= input.Fraud.SubScore
	impacts[domain.AnalyzerFraud] = -input.Fraud.SubScore

	total -= input.Statistical.SubScore
	impacts[domain.AnalyzerStatistical] = -input.Statistical.SubScore

	if input.FileCorrupted {
		total -= corruptionPenalty
		impacts["integrity"] = -corruptionPenalty
	}

	confidence := int(math.Round(math.Max(0, math.Min(100, total))))
	return AggregateResult{
		Confidence:  confidence,
		IsAuthentic: confidence >= AuthenticThreshold,
		Impacts:     impacts,
	}
}
