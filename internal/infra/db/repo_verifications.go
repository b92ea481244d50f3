package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Append stores one immutable verification record. Records are never
// updated: re-verification inserts a new row.
func (r *VerificationRepository) Append(ctx context.Context, record domain.VerificationRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	model, err := verificationToModel(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *VerificationRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.VerificationRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []VerificationModel
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]domain.VerificationRecord, 0, len(models))
	for _, model := range models {
		record, err := verificationFromModel(model)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func verificationToModel(record domain.VerificationRecord) (VerificationModel, error) {
	flags, err := marshalOrNil(record.Flags)
	if err != nil {
		return VerificationModel{}, err
	}
	analyses, err := marshalOrNil(record.Analyses)
	if err != nil {
		return VerificationModel{}, err
	}
	impacts, err := marshalOrNil(record.Impacts)
	if err != nil {
		return VerificationModel{}, err
	}
	return VerificationModel{
		ID:          record.ID,
		DocumentID:  record.DocumentID,
		IsAuthentic: record.IsAuthentic,
		Confidence:  record.Confidence,
		Flags:       flags,
		Analyses:    analyses,
		Impacts:     impacts,
		NeedsReview: record.NeedsReview,
		VerifierID:  record.VerifierID,
		Notes:       record.Notes,
		Error:       record.Error,
		CreatedAt:   record.CreatedAt,
	}, nil
}

func verificationFromModel(model VerificationModel) (domain.VerificationRecord, error) {
	record := domain.VerificationRecord{
		ID:          model.ID,
		DocumentID:  model.DocumentID,
		IsAuthentic: model.IsAuthentic,
		Confidence:  model.Confidence,
		NeedsReview: model.NeedsReview,
		VerifierID:  model.VerifierID,
		Notes:       model.Notes,
		Error:       model.Error,
		CreatedAt:   model.CreatedAt,
	}
	if len(model.Flags) > 0 {
		if err := json.Unmarshal(model.Flags, &record.Flags); err != nil {
			return domain.VerificationRecord{}, err
		}
	}
	if len(model.Analyses) > 0 {
		if err := json.Unmarshal(model.Analyses, &record.Analyses); err != nil {
			return domain.VerificationRecord{}, err
		}
	}
	if len(model.Impacts) > 0 {
		if err := json.Unmarshal(model.Impacts, &record.Impacts); err != nil {
			return domain.VerificationRecord{}, err
		}
	}
	return record, nil
}

func marshalOrNil(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		if len(v) == 0 {
			return nil, nil
		}
	case map[string]domain.AnalysisResult:
		if len(v) == 0 {
			return nil, nil
		}
	case map[string]float64:
		if len(v) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(value)
}
