package runtime

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type ApplicantRepo interface {
	// GetByApplicationID returns nil, nil when no applicant row exists yet.
	GetByApplicationID(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID) (*domain.Applicant, error)
	Save(ctx context.Context, tx *gorm.DB, applicant *domain.Applicant) error
}

type applicantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicantRepo(db *gorm.DB, baseLog *logger.Logger) ApplicantRepo {
	repoLog := baseLog.With("repo", "ApplicantRepo")
	return &applicantRepo{db: db, log: repoLog}
}

func (r *applicantRepo) GetByApplicationID(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID) (*domain.Applicant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var applicant domain.Applicant
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (r *applicantRepo) Save(ctx context.Context, tx *gorm.DB, applicant *domain.Applicant) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if applicant.ID == uuid.Nil {
		applicant.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Save(applicant).Error
}
