package db

import "time"

type DocumentModel struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	FilePath      string    `gorm:"not null"`
	ContentHash   string    `gorm:"index"`
	DeclaredType  string    `gorm:"not null"`
	Status        string    `gorm:"index;not null"`
	RecipientName string
	IssuerID      string `gorm:"type:uuid;index"`
	RecipientID   string `gorm:"type:uuid;index"`
	OriginalName  string
	FileSize      int64
	Extra         []byte    `gorm:"type:jsonb"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (DocumentModel) TableName() string { return "documents" }

type VerificationModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	DocumentID  string `gorm:"type:uuid;index;not null"`
	IsAuthentic bool   `gorm:"not null"`
	Confidence  int    `gorm:"not null"`
	Flags       []byte `gorm:"type:jsonb"`
	Analyses    []byte `gorm:"type:jsonb"`
	Impacts     []byte `gorm:"type:jsonb"`
	NeedsReview bool
	VerifierID  string `gorm:"index"`
	Notes       string
	Error       string
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (VerificationModel) TableName() string { return "verifications" }
