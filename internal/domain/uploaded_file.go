package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile records a document or photo captured during a flow step.
// The orchestrator re-checks required camera captures against these rows
// rather than trusting client-side flags.
type UploadedFile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"column:application_id;type:uuid;not null;index:idx_uploaded_file_app_field" json:"applicationId"`
	FieldID       string    `gorm:"column:field_id;not null;index:idx_uploaded_file_app_field" json:"fieldId"`
	ScreenID      string    `gorm:"column:screen_id" json:"screenId"`
	FileName      string    `gorm:"column:file_name" json:"fileName"`
	ContentType   string    `gorm:"column:content_type" json:"contentType"`
	SizeBytes     int64     `gorm:"column:size_bytes" json:"sizeBytes"`
	Sha256        string    `gorm:"column:sha256" json:"sha256"`
	StorageKey    string    `gorm:"column:storage_key" json:"storageKey"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
}

func (UploadedFile) TableName() string { return "uploaded_files" }
