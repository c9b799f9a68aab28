package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// CreateConfigInput carries the authoring fields for a new document.
// Version is assigned by the service, never by the caller.
type CreateConfigInput struct {
	LogicalKey  string         `json:"logicalKey"`
	ProductCode string         `json:"productCode"`
	PartnerCode string         `json:"partnerCode"`
	BranchCode  string         `json:"branchCode"`
	Body        map[string]any `json:"body"`
	Actor       string         `json:"-"`
}

// ConfigAdminService is the authoring surface for all four config kinds.
// Lifecycle transitions live in ActivationService; this service only
// manages DRAFT documents and reads.
type ConfigAdminService interface {
	List(ctx context.Context, kind domain.ConfigKind, logicalKey string) ([]*domain.ConfigDocument, error)
	Get(ctx context.Context, kind domain.ConfigKind, id uuid.UUID) (*domain.ConfigDocument, error)
	Create(ctx context.Context, kind domain.ConfigKind, input *CreateConfigInput) (*domain.ConfigDocument, error)
	// Update replaces the body of a DRAFT document. Any other status is
	// rejected with ErrInvalidState; activated history is immutable.
	Update(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, body map[string]any, actor string) (*domain.ConfigDocument, error)
	// Clone copies a document's body into a fresh DRAFT at the given
	// scope, picking the next free version there.
	Clone(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, scope domain.Scope, actor string) (*domain.ConfigDocument, error)
	Delete(ctx context.Context, kind domain.ConfigKind, id uuid.UUID) error
}

type configAdminService struct {
	db         *gorm.DB
	log        *logger.Logger
	configRepo repos.ConfigDocumentRepo
}

func NewConfigAdminService(db *gorm.DB, baseLog *logger.Logger, configRepo repos.ConfigDocumentRepo) ConfigAdminService {
	return &configAdminService{
		db:         db,
		log:        baseLog.With("service", "ConfigAdminService"),
		configRepo: configRepo,
	}
}

func (s *configAdminService) List(ctx context.Context, kind domain.ConfigKind, logicalKey string) ([]*domain.ConfigDocument, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown config kind %q: %w", kind, apperrors.ErrInvalidArgument)
	}
	return s.configRepo.List(ctx, nil, kind, logicalKey)
}

func (s *configAdminService) Get(ctx context.Context, kind domain.ConfigKind, id uuid.UUID) (*domain.ConfigDocument, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown config kind %q: %w", kind, apperrors.ErrInvalidArgument)
	}
	return s.configRepo.GetByID(ctx, nil, kind, id)
}

func (s *configAdminService) Create(ctx context.Context, kind domain.ConfigKind, input *CreateConfigInput) (*domain.ConfigDocument, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown config kind %q: %w", kind, apperrors.ErrInvalidArgument)
	}
	if input.LogicalKey == "" {
		return nil, fmt.Errorf("logicalKey is required: %w", apperrors.ErrInvalidArgument)
	}

	raw, err := json.Marshal(input.Body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	scope := domain.NewScope(input.ProductCode, input.PartnerCode, input.BranchCode)

	var doc *domain.ConfigDocument
	err = s.db.Transaction(func(tx *gorm.DB) error {
		maxVersion, err := s.configRepo.MaxVersion(ctx, tx, kind, input.LogicalKey, scope)
		if err != nil {
			return err
		}
		doc, err = s.configRepo.Create(ctx, tx, &domain.ConfigDocument{
			Kind:        kind,
			LogicalKey:  input.LogicalKey,
			ProductCode: stringPtrOrNil(scope.ProductCode),
			PartnerCode: scope.PartnerCode,
			BranchCode:  scope.BranchCode,
			Version:     maxVersion + 1,
			Status:      domain.StatusDraft,
			Body:        datatypes.JSON(raw),
			CreatedBy:   input.Actor,
			UpdatedBy:   input.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("config created", "config_id", doc.ID, "kind", kind,
		"logical_key", doc.LogicalKey, "version", doc.Version)
	return doc, nil
}

func (s *configAdminService) Update(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, body map[string]any, actor string) (*domain.ConfigDocument, error) {
	var doc *domain.ConfigDocument
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = s.configRepo.GetByID(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if doc.Status != domain.StatusDraft {
			return fmt.Errorf("cannot edit %s config %s in status %s: %w",
				kind, id, doc.Status, apperrors.ErrInvalidState)
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		doc.Body = datatypes.JSON(raw)
		doc.UpdatedBy = actor
		return s.configRepo.Update(ctx, tx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *configAdminService) Clone(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, scope domain.Scope, actor string) (*domain.ConfigDocument, error) {
	var clone *domain.ConfigDocument
	err := s.db.Transaction(func(tx *gorm.DB) error {
		source, err := s.configRepo.GetByID(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		maxVersion, err := s.configRepo.MaxVersion(ctx, tx, kind, source.LogicalKey, scope)
		if err != nil {
			return err
		}
		clone, err = s.configRepo.Create(ctx, tx, &domain.ConfigDocument{
			Kind:        kind,
			LogicalKey:  source.LogicalKey,
			ProductCode: stringPtrOrNil(scope.ProductCode),
			PartnerCode: scope.PartnerCode,
			BranchCode:  scope.BranchCode,
			Version:     maxVersion + 1,
			Status:      domain.StatusDraft,
			Body:        source.Body,
			CreatedBy:   actor,
			UpdatedBy:   actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("config cloned", "source_id", id, "clone_id", clone.ID,
		"kind", kind, "version", clone.Version)
	return clone, nil
}

func (s *configAdminService) Delete(ctx context.Context, kind domain.ConfigKind, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		doc, err := s.configRepo.GetByID(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if doc.Status != domain.StatusDraft {
			return fmt.Errorf("cannot delete %s config %s in status %s: %w",
				kind, id, doc.Status, apperrors.ErrInvalidState)
		}
		return s.configRepo.Delete(ctx, tx, kind, id)
	})
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
