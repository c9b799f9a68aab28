package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// FlowSnapshotRepo deliberately exposes no update or delete methods.
// Snapshots are frozen at creation and stay that way.
type FlowSnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *domain.FlowSnapshot) (*domain.FlowSnapshot, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.FlowSnapshot, error)
}

type flowSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) FlowSnapshotRepo {
	repoLog := baseLog.With("repo", "FlowSnapshotRepo")
	return &flowSnapshotRepo{db: db, log: repoLog}
}

func (r *flowSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *domain.FlowSnapshot) (*domain.FlowSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *flowSnapshotRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.FlowSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snapshot domain.FlowSnapshot
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("flow snapshot %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
