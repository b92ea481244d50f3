package domain

import "time"

// VerificationRecord is created once per verification run and never mutated.
// Re-verification produces a new record; prior records stay in history.
type VerificationRecord struct {
	ID          string                    `json:"id"`
	DocumentID  string                    `json:"document_id"`
	IsAuthentic bool                      `json:"is_authentic"`
	Confidence  int                       `json:"confidence"`
	Flags       []string                  `json:"flags,omitempty"`
	Analyses    map[string]AnalysisResult `json:"analyses,omitempty"`
	Impacts     map[string]float64        `json:"impacts,omitempty"`
	NeedsReview bool                      `json:"needs_review,omitempty"`
	VerifierID  string                    `json:"verifier_id"`
	Notes       string                    `json:"notes,omitempty"`
	Error       string                    `json:"error,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// ReviewInput is what the optional review policy sees after aggregation.
type ReviewInput struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   int          `json:"confidence"`
	IsAuthentic  bool         `json:"is_authentic"`
	Flags        []string     `json:"flags"`
}

// ReviewDecision can only tighten an outcome: it may demand manual review and
// attach reasons, it never raises confidence.
type ReviewDecision struct {
	RequireReview bool     `json:"require_review"`
	Reasons       []string `json:"reasons,omitempty"`
}
