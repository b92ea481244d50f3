package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.DocumentRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model, err := documentToModel(doc)
	if err != nil {
		return err
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	model.UpdatedAt = model.CreatedAt
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (domain.DocumentRecord, error) {
	if r.db == nil {
		return domain.DocumentRecord{}, errDBUnavailable
	}
	var model DocumentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DocumentRecord{}, domain.ErrDocumentNotFound
		}
		return domain.DocumentRecord{}, err
	}
	return documentFromModel(model)
}

func (r *DocumentRepository) SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&DocumentModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func documentToModel(doc domain.DocumentRecord) (DocumentModel, error) {
	var extra []byte
	if len(doc.Metadata.Extra) > 0 {
		encoded, err := json.Marshal(doc.Metadata.Extra)
		if err != nil {
			return DocumentModel{}, err
		}
		extra = encoded
	}
	return DocumentModel{
		ID:            doc.ID,
		FilePath:      doc.FilePath,
		ContentHash:   doc.ContentHash,
		DeclaredType:  string(doc.DeclaredType),
		Status:        string(doc.Status),
		RecipientName: doc.Metadata.RecipientName,
		IssuerID:      doc.Metadata.IssuerID,
		RecipientID:   doc.Metadata.RecipientID,
		OriginalName:  doc.Metadata.OriginalName,
		FileSize:      doc.Metadata.FileSize,
		Extra:         extra,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

func documentFromModel(model DocumentModel) (domain.DocumentRecord, error) {
	var extra map[string]string
	if len(model.Extra) > 0 {
		if err := json.Unmarshal(model.Extra, &extra); err != nil {
			return domain.DocumentRecord{}, err
		}
	}
	return domain.DocumentRecord{
		ID:           model.ID,
		FilePath:     model.FilePath,
		ContentHash:  model.ContentHash,
		DeclaredType: domain.DocumentType(model.DeclaredType),
		Status:       domain.DocumentStatus(model.Status),
		Metadata: domain.DocumentMetadata{
			RecipientName: model.RecipientName,
			IssuerID:      model.IssuerID,
			RecipientID:   model.RecipientID,
			OriginalName:  model.OriginalName,
			FileSize:      model.FileSize,
			Extra:         extra,
		},
		CreatedAt: model.CreatedAt,
	}, nil
}
