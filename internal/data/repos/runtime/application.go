package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type ApplicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, app *domain.Application) (*domain.Application, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Application, error)
	// UpdateOptimistic persists the application guarded by its version
	// counter. Returns ErrConflict when another writer got there first.
	UpdateOptimistic(ctx context.Context, tx *gorm.DB, app *domain.Application) error
	SetFlowSnapshotID(ctx context.Context, tx *gorm.DB, id, snapshotID uuid.UUID) error
	// FindLatestByScopeAndScreen is the best-effort recovery lookup for
	// progression requests that arrive without an application id.
	FindLatestByScopeAndScreen(ctx context.Context, tx *gorm.DB, scope domain.Scope, screenID string) (*domain.Application, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	repoLog := baseLog.With("repo", "ApplicationRepo")
	return &applicationRepo{db: db, log: repoLog}
}

func (r *applicationRepo) Create(ctx context.Context, tx *gorm.DB, app *domain.Application) (*domain.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = domain.AppInitiated
	}
	if err := transaction.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var app domain.Application
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("application %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) UpdateOptimistic(ctx context.Context, tx *gorm.DB, app *domain.Application) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ? AND version = ?", app.ID, app.Version).
		Updates(map[string]any{
			"status":            app.Status,
			"current_screen_id": app.CurrentScreenID,
			"flow_snapshot_id":  app.FlowSnapshotID,
			"updated_at":        time.Now().UTC(),
			"version":           app.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		r.log.Warn("optimistic update lost race", "application_id", app.ID, "version", app.Version)
		return fmt.Errorf("application %s version %d: %w", app.ID, app.Version, apperrors.ErrConflict)
	}
	app.Version++
	return nil
}

func (r *applicationRepo) SetFlowSnapshotID(ctx context.Context, tx *gorm.DB, id, snapshotID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ?", id).
		Update("flow_snapshot_id", snapshotID).Error
}

func (r *applicationRepo) FindLatestByScopeAndScreen(ctx context.Context, tx *gorm.DB, scope domain.Scope, screenID string) (*domain.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("product_code = ? AND current_screen_id = ?", scope.ProductCode, screenID)
	if scope.PartnerCode == nil {
		q = q.Where("partner_code IS NULL")
	} else {
		q = q.Where("partner_code = ?", *scope.PartnerCode)
	}
	if scope.BranchCode == nil {
		q = q.Where("branch_code IS NULL")
	} else {
		q = q.Where("branch_code = ?", *scope.BranchCode)
	}
	var app domain.Application
	err := q.Order("created_at DESC").First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no application at screen %s: %w", screenID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}
