package domain

// Analyzer names, stable across releases: they key the per-analyzer detail map
// embedded in every verification record.
const (
	AnalyzerStructure   = "structure"
	AnalyzerContent     = "content"
	AnalyzerMetadata    = "metadata"
	AnalyzerFraud       = "fraud"
	AnalyzerStatistical = "statistical"
)

// Flags raised by the analyzers and the orchestrator.
const (
	FlagTemplateMismatch         = "TEMPLATE_MISMATCH"
	FlagCopyWatermark            = "COPY_WATERMARK"
	FlagTestDocument             = "TEST_DOCUMENT"
	FlagRedactedContent          = "REDACTED_CONTENT"
	FlagEditingTraces            = "EDITING_TRACES"
	FlagInconsistentFormatting   = "INCONSISTENT_FORMATTING"
	FlagAbnormalCharDistribution = "ABNORMAL_CHAR_DISTRIBUTION"
	FlagUnusualWordLength        = "UNUSUAL_WORD_LENGTH"
	FlagLedgerUnrecorded         = "LEDGER_UNRECORDED"
	FlagFileCorrupted            = "FILE_CORRUPTED"
)

// AnalyzerFailedFlag marks a single analyzer crash; the run itself continues
// with a neutral contribution from that analyzer.
func AnalyzerFailedFlag(name string) string {
	return "ANALYZER_FAILED:" + name
}

// AnalysisResult is the output of one analyzer over one document. SubScore is
// an evidence score (structure, content, metadata) or a penalty score (fraud,
// statistical) depending on the analyzer; the aggregator knows which is which.
type AnalysisResult struct {
	Analyzer string         `json:"analyzer"`
	SubScore float64        `json:"sub_score"`
	Flags    []string       `json:"flags,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}
