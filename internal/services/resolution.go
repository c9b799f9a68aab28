package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/clients/redis"
	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// ResolutionService picks the single ACTIVE config document that best
// matches a request scope. Specificity ranks branch above partner: an
// exact branch match beats any branch wildcard regardless of partner.
// Ties break on the lowest document id so resolution is deterministic.
//
// DRAFT documents are never returned from here, ever. Running
// applications read their frozen snapshot instead of resolving live; this
// service only serves new snapshots and explicit resolve requests.
type ResolutionService interface {
	Resolve(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) (*domain.ConfigDocument, error)
	// ResolveBody returns just the decoded document body.
	ResolveBody(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) (map[string]any, error)
	// InvalidateCache drops cached resolutions for one logical key.
	InvalidateCache(ctx context.Context, kind domain.ConfigKind, logicalKey string)
}

type resolutionService struct {
	db         *gorm.DB
	log        *logger.Logger
	configRepo repos.ConfigDocumentRepo
	cache      redis.ConfigCache
}

// NewResolutionService wires the resolver. cache may be nil, which
// disables read-through caching without changing behavior.
func NewResolutionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	configRepo repos.ConfigDocumentRepo,
	cache redis.ConfigCache,
) ResolutionService {
	return &resolutionService{
		db:         db,
		log:        baseLog.With("service", "ResolutionService"),
		configRepo: configRepo,
		cache:      cache,
	}
}

func (s *resolutionService) Resolve(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) (*domain.ConfigDocument, error) {
	cacheKey := s.cacheKey(kind, logicalKey, scope)
	if s.cache != nil && tx == nil {
		if raw, ok := s.cache.Get(ctx, cacheKey); ok {
			var doc domain.ConfigDocument
			if err := json.Unmarshal(raw, &doc); err == nil {
				return &doc, nil
			}
			s.log.Warn("dropping undecodable cache entry", "key", cacheKey)
		}
	}

	candidates, err := s.configRepo.FindCandidates(ctx, tx, kind, logicalKey, scope)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no ACTIVE %s config for key=%s scope=%s/%s/%s: %w",
			kind, logicalKey, scope.ProductCode, scope.Partner(), scope.Branch(), apperrors.ErrNotFound)
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := candidates[i].Scope().Specificity(), candidates[j].Scope().Specificity()
		if si != sj {
			return si > sj
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	best := candidates[0]

	// The candidate query filters on status, so anything non-ACTIVE here
	// means the store itself is inconsistent. That must never surface as
	// a plain not-found.
	if !best.Status.RuntimeUsable() {
		s.log.Error("non-ACTIVE config returned from candidate query",
			"config_id", best.ID, "status", best.Status)
		return nil, fmt.Errorf("config store returned non-ACTIVE document %s (status %s)", best.ID, best.Status)
	}

	if s.cache != nil && tx == nil {
		if raw, err := json.Marshal(best); err == nil {
			s.cache.Set(ctx, cacheKey, raw)
		}
	}
	return best, nil
}

func (s *resolutionService) ResolveBody(ctx context.Context, tx *gorm.DB, kind domain.ConfigKind, logicalKey string, scope domain.Scope) (map[string]any, error) {
	doc, err := s.Resolve(ctx, tx, kind, logicalKey, scope)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if len(doc.Body) > 0 {
		if err := json.Unmarshal(doc.Body, &body); err != nil {
			return nil, fmt.Errorf("decode %s config %s body: %w", kind, doc.ID, err)
		}
	}
	return body, nil
}

func (s *resolutionService) InvalidateCache(ctx context.Context, kind domain.ConfigKind, logicalKey string) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidatePrefix(ctx, fmt.Sprintf("%s|%s|", kind, logicalKey))
}

func (s *resolutionService) cacheKey(kind domain.ConfigKind, logicalKey string, scope domain.Scope) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", kind, logicalKey, scope.ProductCode, scope.Partner(), scope.Branch())
}
