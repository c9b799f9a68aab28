package config

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/crediflow/los-backend/internal/data/repos/testutil"
	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
)

func TestConfigDocumentRepoCRUD(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewConfigDocumentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, &domain.ConfigDocument{
		Kind:       domain.KindScreen,
		LogicalKey: "personal_details",
		Body:       datatypes.JSON([]byte(`{"title":"Personal Details"}`)),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Version != 1 {
		t.Fatalf("Create: version = %d, want 1", created.Version)
	}
	if created.Status != domain.StatusDraft {
		t.Fatalf("Create: status = %s, want DRAFT", created.Status)
	}

	got, err := repo.GetByID(ctx, tx, domain.KindScreen, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LogicalKey != "personal_details" {
		t.Fatalf("GetByID: unexpected document %+v", got)
	}

	// Kind is part of the identity; the wrong kind must not find it.
	if _, err := repo.GetByID(ctx, tx, domain.KindFlow, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetByID wrong kind: expected ErrNotFound, got %v", err)
	}

	if err := repo.UpdateStatus(ctx, tx, created.ID, domain.StatusActive, "tester"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, domain.KindScreen, created.ID)
	if err != nil {
		t.Fatalf("GetByID after UpdateStatus: %v", err)
	}
	if got.Status != domain.StatusActive || got.UpdatedBy != "tester" {
		t.Fatalf("UpdateStatus not applied: %+v", got)
	}

	if err := repo.Delete(ctx, tx, domain.KindScreen, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, tx, domain.KindScreen, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Delete twice: expected ErrNotFound, got %v", err)
	}
}

func TestFindCandidatesWildcardMatching(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewConfigDocumentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	p1, b1 := "P1", "B1"
	seed := []*domain.ConfigDocument{
		{Kind: domain.KindScreen, LogicalKey: "kyc", Status: domain.StatusActive, Version: 1},
		{Kind: domain.KindScreen, LogicalKey: "kyc", Status: domain.StatusActive, Version: 1, PartnerCode: &p1},
		{Kind: domain.KindScreen, LogicalKey: "kyc", Status: domain.StatusActive, Version: 1, PartnerCode: &p1, BranchCode: &b1},
		{Kind: domain.KindScreen, LogicalKey: "kyc", Status: domain.StatusDraft, Version: 2, PartnerCode: &p1},
	}
	for _, doc := range seed {
		if _, err := repo.Create(ctx, tx, doc); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// Fully wildcarded request sees only the global document.
	docs, err := repo.FindCandidates(ctx, tx, domain.KindScreen, "kyc", domain.NewScope("", "", ""))
	if err != nil {
		t.Fatalf("FindCandidates global: %v", err)
	}
	if len(docs) != 1 || docs[0].PartnerCode != nil {
		t.Fatalf("FindCandidates global: got %d docs", len(docs))
	}

	// Partner-scoped request matches global + partner rows, never DRAFT.
	docs, err = repo.FindCandidates(ctx, tx, domain.KindScreen, "kyc", domain.NewScope("", "P1", ""))
	if err != nil {
		t.Fatalf("FindCandidates partner: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("FindCandidates partner: got %d docs, want 2", len(docs))
	}
	for _, doc := range docs {
		if doc.Status != domain.StatusActive {
			t.Fatalf("FindCandidates returned non-ACTIVE doc %+v", doc)
		}
	}

	// Branch-scoped request matches all three ACTIVE rows.
	docs, err = repo.FindCandidates(ctx, tx, domain.KindScreen, "kyc", domain.NewScope("", "P1", "B1"))
	if err != nil {
		t.Fatalf("FindCandidates branch: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("FindCandidates branch: got %d docs, want 3", len(docs))
	}
}

func TestFindExactScopeAndMaxVersion(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewConfigDocumentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	p1 := "P1"
	for version := 1; version <= 3; version++ {
		status := domain.StatusDeprecated
		if version == 3 {
			status = domain.StatusActive
		}
		if _, err := repo.Create(ctx, tx, &domain.ConfigDocument{
			Kind:        domain.KindFlow,
			LogicalKey:  "msme_flow",
			PartnerCode: &p1,
			Version:     version,
			Status:      status,
		}); err != nil {
			t.Fatalf("seed v%d: %v", version, err)
		}
	}
	// Same key at global scope must not leak into exact-scope queries.
	if _, err := repo.Create(ctx, tx, &domain.ConfigDocument{
		Kind: domain.KindFlow, LogicalKey: "msme_flow", Version: 9, Status: domain.StatusActive,
	}); err != nil {
		t.Fatalf("seed global: %v", err)
	}

	scope := domain.NewScope("", "P1", "")
	docs, err := repo.FindExactScope(ctx, tx, domain.KindFlow, "msme_flow", scope, "")
	if err != nil {
		t.Fatalf("FindExactScope: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("FindExactScope: got %d docs, want 3", len(docs))
	}

	active, err := repo.FindExactScope(ctx, tx, domain.KindFlow, "msme_flow", scope, domain.StatusActive)
	if err != nil {
		t.Fatalf("FindExactScope active: %v", err)
	}
	if len(active) != 1 || active[0].Version != 3 {
		t.Fatalf("FindExactScope active: got %+v", active)
	}

	max, err := repo.MaxVersion(ctx, tx, domain.KindFlow, "msme_flow", scope)
	if err != nil {
		t.Fatalf("MaxVersion: %v", err)
	}
	if max != 3 {
		t.Fatalf("MaxVersion = %d, want 3", max)
	}

	max, err = repo.MaxVersion(ctx, tx, domain.KindFlow, "unseen", scope)
	if err != nil {
		t.Fatalf("MaxVersion unseen: %v", err)
	}
	if max != 0 {
		t.Fatalf("MaxVersion unseen = %d, want 0", max)
	}
}
