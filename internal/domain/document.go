package domain

import "time"

type DocumentType string

const (
	DocTypeBirthCertificate      DocumentType = "birth_certificate"
	DocTypeAcademicTranscript    DocumentType = "academic_transcript"
	DocTypeExperienceCertificate DocumentType = "experience_certificate"
	DocTypeOther                 DocumentType = "other"
)

type DocumentStatus string

const (
	DocStatusUploaded DocumentStatus = "uploaded"
	DocStatusVerified DocumentStatus = "verified"
	DocStatusRejected DocumentStatus = "rejected"
)

// DocumentRecord is the read-side view of a stored document. The upload and
// storage flow is owned elsewhere; the verification core only consumes it.
type DocumentRecord struct {
	ID           string
	FilePath     string
	ContentHash  string
	DeclaredType DocumentType
	Status       DocumentStatus
	Metadata     DocumentMetadata
	CreatedAt    time.Time
}

// DocumentMetadata carries the externally supplied claims checked against the
// extracted text. Extra holds issuer-defined fields the core does not interpret.
type DocumentMetadata struct {
	RecipientName string
	IssuerID      string
	RecipientID   string
	OriginalName  string
	FileSize      int64
	Extra         map[string]string
}

// ExtractionResult is what the text-extraction port reports. Confidence is the
// extractor's own 0-100 estimate, not the verification confidence.
type ExtractionResult struct {
	Success    bool
	Text       string
	Confidence float64
	WordCount  int
	Error      string
}

// IntegrityReport describes the on-disk state of a document file at
// verification time.
type IntegrityReport struct {
	FileSize     int64
	ContentHash  string
	IsCorrupted  bool
	LastModified time.Time
}
