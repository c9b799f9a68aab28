package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// ConfigDocumentRepo is the storage contract for versioned config
// documents. All reads and writes go through here; nothing else in the
// codebase issues queries against config_documents.
type ConfigDocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, doc *domain.ConfigDocument) (*domain.ConfigDocument, error)
	GetByID(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, id uuid.UUID) (*domain.ConfigDocument, error)
	Update(ctx context.Context, tx *gorm.DB, doc *domain.ConfigDocument) error
	Delete(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, id uuid.UUID) error
	List(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string) ([]*domain.ConfigDocument, error)
	// FindExactScope returns every document at exactly the given scope
	// tuple, nil columns matching nil only. Status filters when non-empty.
	FindExactScope(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope, status domain.ConfigStatus) ([]*domain.ConfigDocument, error)
	// FindCandidates returns every ACTIVE document whose scope columns
	// each equal the request value or are nil. Ranking happens in the
	// resolution service, not here.
	FindCandidates(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) ([]*domain.ConfigDocument, error)
	// FindActiveMatchingScope is FindCandidates across every logical key
	// of a kind, used by dashboard listings.
	FindActiveMatchingScope(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, scope domain.Scope) ([]*domain.ConfigDocument, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.ConfigStatus, updatedBy string) error
	UpdateBody(ctx context.Context, tx *gorm.DB, id uuid.UUID, body datatypes.JSON) error
	MaxVersion(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) (int, error)
}

type configDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ConfigDocumentRepo {
	repoLog := baseLog.With("repo", "ConfigDocumentRepo")
	return &configDocumentRepo{db: db, log: repoLog}
}

func (r *configDocumentRepo) Create(ctx context.Context, tx *gorm.DB, doc *domain.ConfigDocument) (*domain.ConfigDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if doc.Status == "" {
		doc.Status = domain.StatusDraft
	}
	if err := transaction.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *configDocumentRepo) GetByID(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, id uuid.UUID) (*domain.ConfigDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var doc domain.ConfigDocument
	err := transaction.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("config %s/%s: %w", kind, id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *configDocumentRepo) Update(ctx context.Context, tx *gorm.DB, doc *domain.ConfigDocument) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(doc).Error
}

func (r *configDocumentRepo) Delete(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Delete(&domain.ConfigDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("config %s/%s: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *configDocumentRepo) List(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string) ([]*domain.ConfigDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("kind = ?", kind)
	if logicalKey != "" {
		q = q.Where("logical_key = ?", logicalKey)
	}
	var docs []*domain.ConfigDocument
	if err := q.Order("logical_key, version").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *configDocumentRepo) FindExactScope(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope, status domain.ConfigStatus) ([]*domain.ConfigDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("kind = ? AND logical_key = ?", kind, logicalKey)
	q = whereExact(q, "product_code", stringPtr(scope.ProductCode))
	q = whereExact(q, "partner_code", scope.PartnerCode)
	q = whereExact(q, "branch_code", scope.BranchCode)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var docs []*domain.ConfigDocument
	if err := q.Order("version").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *configDocumentRepo) FindCandidates(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) ([]*domain.ConfigDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("kind = ? AND logical_key = ? AND status = ?", kind, logicalKey, domain.StatusActive)
	q = whereMatchOrNull(q, "product_code", stringPtr(scope.ProductCode))
	q = whereMatchOrNull(q, "partner_code", scope.PartnerCode)
	q = whereMatchOrNull(q, "branch_code", scope.BranchCode)
	var docs []*domain.ConfigDocument
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *configDocumentRepo) FindActiveMatchingScope(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, scope domain.Scope) ([]*domain.ConfigDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("kind = ? AND status = ?", kind, domain.StatusActive)
	q = whereMatchOrNull(q, "product_code", stringPtr(scope.ProductCode))
	q = whereMatchOrNull(q, "partner_code", scope.PartnerCode)
	q = whereMatchOrNull(q, "branch_code", scope.BranchCode)
	var docs []*domain.ConfigDocument
	if err := q.Order("logical_key").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *configDocumentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.ConfigStatus, updatedBy string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{"status": status}
	if updatedBy != "" {
		updates["updated_by"] = updatedBy
	}
	result := transaction.WithContext(ctx).
		Model(&domain.ConfigDocument{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("config %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *configDocumentRepo) UpdateBody(ctx context.Context, tx *gorm.DB, id uuid.UUID, body datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.ConfigDocument{}).
		Where("id = ?", id).
		Update("body", body).Error
}

func (r *configDocumentRepo) MaxVersion(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&domain.ConfigDocument{}).
		Where("kind = ? AND logical_key = ?", kind, logicalKey)
	q = whereExact(q, "product_code", stringPtr(scope.ProductCode))
	q = whereExact(q, "partner_code", scope.PartnerCode)
	q = whereExact(q, "branch_code", scope.BranchCode)
	var max *int
	if err := q.Select("MAX(version)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// whereExact matches the column against the value with nil meaning NULL.
func whereExact(q *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *value)
}

// whereMatchOrNull matches the column against the value or NULL, the
// wildcard semantics used for runtime resolution.
func whereMatchOrNull(q *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ? OR "+column+" IS NULL", *value)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
