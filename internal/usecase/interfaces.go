package usecase

import (
	"context"
	"time"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// DocumentRepository is the read/update surface of the excluded storage
// layer. GetByID returns domain.ErrDocumentNotFound for unknown ids.
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (domain.DocumentRecord, error)
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error
}

// VerificationRepository persists verification records; records are
// append-only, re-verification adds rather than replaces.
type VerificationRepository interface {
	Append(ctx context.Context, record domain.VerificationRecord) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.VerificationRecord, error)
}

// TextExtractor is the black-box OCR port. A non-nil error means the port
// itself failed; a response with Success=false means extraction ran and
// produced nothing usable. Both fail the verification closed.
type TextExtractor interface {
	Extract(ctx context.Context, filePath, mimeType string) (domain.ExtractionResult, error)
}

// IntegrityChecker probes the document file on disk.
type IntegrityChecker interface {
	Check(ctx context.Context, filePath string) (domain.IntegrityReport, error)
	FileHash(ctx context.Context, filePath string) (string, error)
}

// VerificationLedger is the slice of the ledger the orchestrator needs:
// best-effort append of the verification outcome.
type VerificationLedger interface {
	RecordVerification(ctx context.Context, ver domain.DocumentVerified) (domain.Block, error)
}

// RegistrationLedger records uploads; used by the registration flow, not by
// the verification orchestrator.
type RegistrationLedger interface {
	RegisterDocument(ctx context.Context, reg domain.DocumentRegistered) (domain.Block, error)
}

// ResultCache short-circuits repeat verifications of unchanged content.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.VerificationRecord, bool, error)
	Put(ctx context.Context, key string, record domain.VerificationRecord, ttl time.Duration) error
}

// ReviewPolicy is the optional post-aggregation policy gate. It may demand
// manual review and attach reasons; it never raises confidence.
type ReviewPolicy interface {
	Evaluate(ctx context.Context, input domain.ReviewInput) (domain.ReviewDecision, error)
}
