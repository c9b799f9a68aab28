package masterdata

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, product *domain.Product) (*domain.Product, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*domain.Product, error)
}

type PartnerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, partner *domain.Partner) (*domain.Partner, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*domain.Partner, error)
}

type BranchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, branch *domain.Branch) (*domain.Branch, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*domain.Branch, error)
	ListByPartner(ctx context.Context, tx *gorm.DB, partnerCode string) ([]*domain.Branch, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, product *domain.Product) (*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var products []*domain.Product
	if err := transaction.WithContext(ctx).Where("active = ?", true).Order("code").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

type partnerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPartnerRepo(db *gorm.DB, baseLog *logger.Logger) PartnerRepo {
	return &partnerRepo{db: db, log: baseLog.With("repo", "PartnerRepo")}
}

func (r *partnerRepo) Create(ctx context.Context, tx *gorm.DB, partner *domain.Partner) (*domain.Partner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(partner).Error; err != nil {
		return nil, err
	}
	return partner, nil
}

func (r *partnerRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*domain.Partner, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var partners []*domain.Partner
	if err := transaction.WithContext(ctx).Where("active = ?", true).Order("code").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

type branchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBranchRepo(db *gorm.DB, baseLog *logger.Logger) BranchRepo {
	return &branchRepo{db: db, log: baseLog.With("repo", "BranchRepo")}
}

func (r *branchRepo) Create(ctx context.Context, tx *gorm.DB, branch *domain.Branch) (*domain.Branch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

func (r *branchRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*domain.Branch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var branches []*domain.Branch
	if err := transaction.WithContext(ctx).Where("active = ?", true).Order("code").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *branchRepo) ListByPartner(ctx context.Context, tx *gorm.DB, partnerCode string) ([]*domain.Branch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var branches []*domain.Branch
	if err := transaction.WithContext(ctx).
		Where("active = ? AND partner_code = ?", true, partnerCode).
		Order("code").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}
