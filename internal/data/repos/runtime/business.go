package runtime

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type BusinessRepo interface {
	// GetByApplicationID returns nil, nil when no business row exists yet.
	GetByApplicationID(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID) (*domain.Business, error)
	Save(ctx context.Context, tx *gorm.DB, business *domain.Business) error
}

type businessRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBusinessRepo(db *gorm.DB, baseLog *logger.Logger) BusinessRepo {
	repoLog := baseLog.With("repo", "BusinessRepo")
	return &businessRepo{db: db, log: repoLog}
}

func (r *businessRepo) GetByApplicationID(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID) (*domain.Business, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var business domain.Business
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) Save(ctx context.Context, tx *gorm.DB, business *domain.Business) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Save(business).Error
}
