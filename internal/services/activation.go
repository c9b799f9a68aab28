package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/validation"
)

// ActivationService owns config lifecycle transitions.
//
// Activate always runs in its own transaction, never joining a caller's.
// A failed activation must roll back alone and a successful one must be
// durable even when the surrounding request later fails.
type ActivationService interface {
	Activate(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, actor string) (*domain.ConfigDocument, error)
	Deactivate(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, actor string) (*domain.ConfigDocument, error)
}

type activationService struct {
	db         *gorm.DB
	log        *logger.Logger
	configRepo repos.ConfigDocumentRepo
	resolution ResolutionService
}

func NewActivationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	configRepo repos.ConfigDocumentRepo,
	resolution ResolutionService,
) ActivationService {
	return &activationService{
		db:         db,
		log:        baseLog.With("service", "ActivationService"),
		configRepo: configRepo,
		resolution: resolution,
	}
}

// Activate transitions a DRAFT document to ACTIVE. Activating an already
// ACTIVE document is a no-op returning current state. Every other status
// is rejected with ErrInvalidState. ACTIVE siblings at the exact same
// scope tuple are deprecated in the same transaction, so at most one
// version per (kind, key, scope) is ever ACTIVE.
func (s *activationService) Activate(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, actor string) (*domain.ConfigDocument, error) {
	var alreadyActive bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		doc, err := s.configRepo.GetByID(ctx, tx, kind, id)
		if err != nil {
			return err
		}

		if doc.Status == domain.StatusActive {
			s.log.Info("config already ACTIVE, activation is a no-op", "config_id", id)
			alreadyActive = true
			return nil
		}
		if doc.Status != domain.StatusDraft {
			return fmt.Errorf("cannot activate %s config %s from status %s: %w",
				kind, id, doc.Status, apperrors.ErrInvalidState)
		}

		if err := s.validateCompleteness(doc); err != nil {
			return err
		}

		// Concurrent activations at the same scope must not both read an
		// empty ACTIVE sibling set and commit two ACTIVE versions.
		if err := s.lockScope(ctx, tx, kind, doc.LogicalKey, doc.Scope()); err != nil {
			return fmt.Errorf("lock activation scope: %w", err)
		}

		siblings, err := s.configRepo.FindExactScope(ctx, tx, kind, doc.LogicalKey, doc.Scope(), domain.StatusActive)
		if err != nil {
			return fmt.Errorf("find active siblings: %w", err)
		}
		for _, sibling := range siblings {
			if sibling.ID == doc.ID {
				continue
			}
			s.log.Info("deprecating previously active version",
				"config_id", sibling.ID, "version", sibling.Version, "replaced_by", doc.ID)
			if err := s.configRepo.UpdateStatus(ctx, tx, sibling.ID, domain.StatusDeprecated, actor); err != nil {
				return fmt.Errorf("deprecate sibling %s: %w", sibling.ID, err)
			}
			s.mirrorBodyStatus(ctx, tx, sibling, domain.StatusDeprecated)
		}

		if err := s.configRepo.UpdateStatus(ctx, tx, doc.ID, domain.StatusActive, actor); err != nil {
			return fmt.Errorf("activate config %s: %w", doc.ID, err)
		}
		s.mirrorBodyStatus(ctx, tx, doc, domain.StatusActive)
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.configRepo.GetByID(ctx, nil, kind, id)
	if err != nil {
		return nil, fmt.Errorf("re-read after activation: %w", err)
	}
	if !alreadyActive {
		s.resolution.InvalidateCache(ctx, kind, fresh.LogicalKey)
		s.log.Info("config activated", "config_id", id, "kind", kind,
			"logical_key", fresh.LogicalKey, "version", fresh.Version)
	}
	return fresh, nil
}

// Deactivate is the manual kill switch: any status except DEPRECATED may
// move to INACTIVE. Deprecated versions stay deprecated.
func (s *activationService) Deactivate(ctx context.Context, kind domain.ConfigKind, id uuid.UUID, actor string) (*domain.ConfigDocument, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		doc, err := s.configRepo.GetByID(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if doc.Status == domain.StatusInactive {
			return nil
		}
		if doc.Status == domain.StatusDeprecated {
			return fmt.Errorf("cannot deactivate %s config %s from status %s: %w",
				kind, id, doc.Status, apperrors.ErrInvalidState)
		}
		if err := s.configRepo.UpdateStatus(ctx, tx, doc.ID, domain.StatusInactive, actor); err != nil {
			return err
		}
		s.mirrorBodyStatus(ctx, tx, doc, domain.StatusInactive)
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.configRepo.GetByID(ctx, nil, kind, id)
	if err != nil {
		return nil, fmt.Errorf("re-read after deactivation: %w", err)
	}
	s.resolution.InvalidateCache(ctx, kind, fresh.LogicalKey)
	s.log.Info("config deactivated", "config_id", id, "kind", kind)
	return fresh, nil
}

// lockScope serializes activations per (kind, logicalKey, scope) with a
// transaction-scoped Postgres advisory lock. The lock releases on
// commit or rollback. Other dialects (the sqlite test fallback)
// serialize writers on their own.
func (s *activationService) lockScope(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?)", scopeLockKey(kind, logicalKey, scope)).Error
}

// scopeLockKey hashes the scope tuple into the advisory lock keyspace.
func scopeLockKey(kind domain.ConfigKind, logicalKey string, scope domain.Scope) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", kind, logicalKey, scope.ProductCode, scope.Partner(), scope.Branch())
	return int64(h.Sum64())
}

// validateCompleteness rejects documents that would be unusable at
// runtime. Failures come back as field-level validation errors.
func (s *activationService) validateCompleteness(doc *domain.ConfigDocument) error {
	var errs []validation.FieldError
	if strings.TrimSpace(doc.LogicalKey) == "" {
		errs = append(errs, validation.FieldError{
			FieldID: "logicalKey",
			Code:    "REQUIRED",
			Message: "logical key must not be blank",
		})
	}
	var body map[string]any
	if len(doc.Body) > 0 {
		if err := json.Unmarshal(doc.Body, &body); err != nil {
			errs = append(errs, validation.FieldError{
				FieldID: "body",
				Code:    "INVALID_FORMAT",
				Message: "body is not valid JSON",
			})
		}
	}
	if len(body) == 0 {
		errs = append(errs, validation.FieldError{
			FieldID: "body",
			Code:    "REQUIRED",
			Message: "body must not be empty",
		})
	}
	if doc.Kind == domain.KindFlow && len(body) > 0 {
		if start, _ := body["startScreen"].(string); start == "" {
			errs = append(errs, validation.FieldError{
				FieldID: "body.startScreen",
				Code:    "REQUIRED",
				Message: "flow definition must declare a startScreen",
			})
		}
	}
	if len(errs) > 0 {
		return &validation.Error{Fields: errs}
	}
	return nil
}

// mirrorBodyStatus copies the lifecycle status into the body's embedded
// "status" key when one exists. The column stays authoritative; a mirror
// failure is logged loudly and never rolls the transition back.
func (s *activationService) mirrorBodyStatus(ctx context.Context, tx *gorm.DB, doc *domain.ConfigDocument, status domain.ConfigStatus) {
	if len(doc.Body) == 0 {
		return
	}
	var body map[string]any
	if err := json.Unmarshal(doc.Body, &body); err != nil {
		s.log.Error("dual-write failed: body not decodable", "config_id", doc.ID, "error", err)
		return
	}
	if _, ok := body["status"]; !ok {
		return
	}
	body["status"] = string(status)
	raw, err := json.Marshal(body)
	if err != nil {
		s.log.Error("dual-write failed: body not encodable", "config_id", doc.ID, "error", err)
		return
	}
	if err := s.configRepo.UpdateBody(ctx, tx, doc.ID, datatypes.JSON(raw)); err != nil {
		s.log.Error("dual-write failed: body update rejected, status column remains authoritative",
			"config_id", doc.ID, "error", err)
	}
}
