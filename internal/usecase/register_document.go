package usecase

import (
	"context"
	"fmt"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// RegistrationService records freshly uploaded documents on the ledger so
// later verifications can be joined to the original content hash.
type RegistrationService struct {
	Docs      DocumentRepository
	Integrity IntegrityChecker
	Ledger    RegistrationLedger
}

// Register hashes the stored file and appends a registration transaction.
// Unlike the verification flow this append is not best-effort: a registration
// that never reached the ledger is useless, so the error propagates.
func (s *RegistrationService) Register(ctx context.Context, documentID string) (domain.Block, domain.RegistrationInfo, error) {
	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return domain.Block{}, domain.RegistrationInfo{}, err
	}

	contentHash := doc.ContentHash
	if contentHash == "" {
		contentHash, err = s.Integrity.FileHash(ctx, doc.FilePath)
		if err != nil {
			return domain.Block{}, domain.RegistrationInfo{}, fmt.Errorf("hash document %s: %w", documentID, err)
		}
	}

	metadata := map[string]string{
		"original_name": doc.Metadata.OriginalName,
		"document_type": string(doc.DeclaredType),
	}
	for k, v := range doc.Metadata.Extra {
		metadata[k] = v
	}

	block, err := s.Ledger.RegisterDocument(ctx, domain.DocumentRegistered{
		DocumentID:  doc.ID,
		ContentHash: contentHash,
		IssuerID:    doc.Metadata.IssuerID,
		RecipientID: doc.Metadata.RecipientID,
		Metadata:    metadata,
	})
	if err != nil {
		return domain.Block{}, domain.RegistrationInfo{}, err
	}

	info := domain.RegistrationInfo{
		BlockIndex: block.Index,
		BlockHash:  block.Hash,
		DocumentID: doc.ID,
		IssuerID:   doc.Metadata.IssuerID,
		Timestamp:  block.Timestamp,
		Metadata:   metadata,
	}
	return block, info, nil
}
