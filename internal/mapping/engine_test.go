package mapping

import (
	"context"
	"testing"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/data/repos/testutil"
	"github.com/crediflow/los-backend/internal/domain"
)

func TestApplyMappings(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	appRepo := repos.NewApplicationRepo(db, log)
	applicantRepo := repos.NewApplicantRepo(db, log)
	businessRepo := repos.NewBusinessRepo(db, log)
	engine := NewEngine(appRepo, applicantRepo, businessRepo, log)

	app, err := appRepo.Create(ctx, tx, &domain.Application{ProductCode: "MSME_LOAN"})
	if err != nil {
		t.Fatalf("Create application: %v", err)
	}

	formData := map[string]any{
		"firstName":    "Asha",
		"lastName":     "Patel",
		"pan":          "abcde1234f",
		"businessName": "Patel Traders",
		"turnover":     "2500000.50",
	}
	mappingConfig := map[string]any{
		"mappings": []any{
			map[string]any{
				"sourceFields": []any{"firstName", "lastName"},
				"transformer":  "fullNameTransformer",
				"target": map[string]any{
					"entity": "Applicant",
					"fields": []any{"fullName"},
				},
			},
			map[string]any{
				"sourceFields": []any{"pan"},
				"transformer":  "upperCaseTransformer",
				"target": map[string]any{
					"entity": "Applicant",
					"fields": []any{"panNumber"},
				},
			},
			map[string]any{
				"sourceFields": []any{"businessName"},
				"target": map[string]any{
					"entity": "Business",
					"fields": []any{"businessName"},
				},
			},
			map[string]any{
				"sourceFields": []any{"turnover"},
				"target": map[string]any{
					"entity": "Business",
					"fields": []any{"annualTurnover"},
				},
			},
			// Multi-source without transformer is skipped, not fatal.
			map[string]any{
				"sourceFields": []any{"firstName", "lastName"},
				"target": map[string]any{
					"entity": "Applicant",
					"fields": []any{"email"},
				},
			},
			// Unknown entity is skipped, not fatal.
			map[string]any{
				"sourceFields": []any{"pan"},
				"target": map[string]any{
					"entity": "CreditBureau",
					"fields": []any{"pan"},
				},
			},
		},
	}

	if err := engine.ApplyMappings(ctx, tx, app.ID, formData, mappingConfig); err != nil {
		t.Fatalf("ApplyMappings: %v", err)
	}

	applicant, err := applicantRepo.GetByApplicationID(ctx, tx, app.ID)
	if err != nil {
		t.Fatalf("GetByApplicationID applicant: %v", err)
	}
	if applicant == nil {
		t.Fatal("expected applicant row to be created lazily")
	}
	if applicant.FullName != "Asha Patel" {
		t.Fatalf("FullName = %q, want %q", applicant.FullName, "Asha Patel")
	}
	if applicant.PanNumber != "ABCDE1234F" {
		t.Fatalf("PanNumber = %q, want %q", applicant.PanNumber, "ABCDE1234F")
	}
	if applicant.Email != "" {
		t.Fatalf("Email = %q, want empty (multi-source without transformer)", applicant.Email)
	}

	business, err := businessRepo.GetByApplicationID(ctx, tx, app.ID)
	if err != nil {
		t.Fatalf("GetByApplicationID business: %v", err)
	}
	if business == nil {
		t.Fatal("expected business row to be created lazily")
	}
	if business.BusinessName != "Patel Traders" {
		t.Fatalf("BusinessName = %q, want %q", business.BusinessName, "Patel Traders")
	}
	if business.AnnualTurnover == nil || *business.AnnualTurnover != 2500000.50 {
		t.Fatalf("AnnualTurnover = %v, want 2500000.50", business.AnnualTurnover)
	}
}

func TestApplyMappingsEmptyConfig(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	appRepo := repos.NewApplicationRepo(db, log)
	engine := NewEngine(appRepo, repos.NewApplicantRepo(db, log), repos.NewBusinessRepo(db, log), log)

	app, err := appRepo.Create(ctx, tx, &domain.Application{ProductCode: "MSME_LOAN"})
	if err != nil {
		t.Fatalf("Create application: %v", err)
	}
	if err := engine.ApplyMappings(ctx, tx, app.ID, map[string]any{}, map[string]any{}); err != nil {
		t.Fatalf("ApplyMappings with empty config: %v", err)
	}
}
