package runtime

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type UploadedFileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, file *domain.UploadedFile) (*domain.UploadedFile, error)
	ExistsForField(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, fieldID string) (bool, error)
	ListByApplication(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID) ([]*domain.UploadedFile, error)
}

type uploadedFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadedFileRepo(db *gorm.DB, baseLog *logger.Logger) UploadedFileRepo {
	repoLog := baseLog.With("repo", "UploadedFileRepo")
	return &uploadedFileRepo{db: db, log: repoLog}
}

func (r *uploadedFileRepo) Create(ctx context.Context, tx *gorm.DB, file *domain.UploadedFile) (*domain.UploadedFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

func (r *uploadedFileRepo) ExistsForField(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, fieldID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&domain.UploadedFile{}).
		Where("application_id = ? AND field_id = ?", applicationID, fieldID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *uploadedFileRepo) ListByApplication(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID) ([]*domain.UploadedFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var files []*domain.UploadedFile
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
