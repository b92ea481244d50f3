package usecase

import (
	"context"
	"log"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

const (
	bulkMinDocuments = 1
	bulkMaxDocuments = 50
)

type BulkFailure struct {
	DocumentID string `json:"document_id"`
	Error      string `json:"error"`
}

type BulkResult struct {
	Succeeded []domain.VerificationRecord `json:"succeeded"`
	Failed    []BulkFailure               `json:"failed"`
}

// BulkVerify runs the pipeline over up to fifty documents. Partial failure
// is the normal case: one failing document never aborts the batch.
func (s *VerificationService) BulkVerify(ctx context.Context, documentIDs []string, verifierID, notes string) (BulkResult, error) {
	if len(documentIDs) < bulkMinDocuments || len(documentIDs) > bulkMaxDocuments {
		return BulkResult{}, domain.ErrBulkSizeInvalid
	}

	var result BulkResult
	for _, id := range documentIDs {
		if err := ctx.Err(); err != nil {
			// Remaining documents are reported as failed, not dropped
			// silently.
			for _, rest := range documentIDs[len(result.Succeeded)+len(result.Failed):] {
				result.Failed = append(result.Failed, BulkFailure{DocumentID: rest, Error: err.Error()})
			}
			return result, nil
		}
		record, err := s.Verify(ctx, VerifyRequest{
			DocumentID:    id,
			VerifierID:    verifierID,
			Notes:         notes,
			ForceReVerify: false,
		})
		if err != nil {
			log.Printf("bulk verify: document %s failed: %v", id, err)
			result.Failed = append(result.Failed, BulkFailure{DocumentID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, record)
	}
	return result, nil
}
