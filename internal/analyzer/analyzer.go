// Package analyzer holds the stateless signal analyzers of the verification
// pipeline. Each analyzer scores one aspect of the extracted text and is safe
// to run concurrently with the others; none of them performs I/O.
package analyzer

import (
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

type Input struct {
	Text         string
	DocumentType domain.DocumentType
	Metadata     domain.DocumentMetadata
}

type Analyzer interface {
	Name() string
	Analyze(input Input) domain.AnalysisResult
}

// Default returns the five production analyzers. Order is irrelevant to the
// aggregation; results are keyed by analyzer name.
func Default() []Analyzer {
	return []Analyzer{
		StructureAnalyzer{},
		ContentAnalyzer{},
		MetadataAnalyzer{},
		FraudAnalyzer{},
		StatisticalAnalyzer{},
	}
}
