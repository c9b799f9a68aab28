package mapping

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// Engine copies submitted form values onto domain rows per an authored
// mapping config. Individual mapping failures are logged and skipped so
// one bad mapping entry never blocks screen progression.
type Engine struct {
	applicationRepo repos.ApplicationRepo
	applicantRepo   repos.ApplicantRepo
	businessRepo    repos.BusinessRepo
	transformers    map[string]Transformer
	log             *logger.Logger
}

func NewEngine(
	applicationRepo repos.ApplicationRepo,
	applicantRepo repos.ApplicantRepo,
	businessRepo repos.BusinessRepo,
	baseLog *logger.Logger,
) *Engine {
	return &Engine{
		applicationRepo: applicationRepo,
		applicantRepo:   applicantRepo,
		businessRepo:    businessRepo,
		transformers:    DefaultTransformers(),
		log:             baseLog.With("component", "FieldMappingEngine"),
	}
}

// ApplyMappings walks mappingConfig.mappings and persists each mapped
// value inside the caller's transaction.
func (e *Engine) ApplyMappings(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, formData, mappingConfig map[string]any) error {
	mappings, _ := mappingConfig["mappings"].([]any)
	if len(mappings) == 0 {
		e.log.Warn("no mappings defined in configuration", "application_id", applicationID)
		return nil
	}
	for _, m := range mappings {
		mapping, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if err := e.applyMapping(ctx, tx, applicationID, formData, mapping); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyMapping(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, formData, mapping map[string]any) error {
	sourceFields := stringList(mapping["sourceFields"])
	target, _ := mapping["target"].(map[string]any)
	transformerName, _ := mapping["transformer"].(string)

	if target == nil {
		e.log.Warn("mapping has no target", "application_id", applicationID)
		return nil
	}
	targetEntity, _ := target["entity"].(string)
	targetFields := stringList(target["fields"])
	if targetEntity == "" || len(targetFields) == 0 {
		e.log.Warn("mapping target incomplete", "entity", targetEntity, "fields", targetFields)
		return nil
	}

	var value any
	if transformer, ok := e.transformers[transformerName]; transformerName != "" && ok {
		value = transformer.Transform(formData, sourceFields)
	} else if len(sourceFields) == 1 {
		value = formData[sourceFields[0]]
	} else {
		e.log.Warn("multiple source fields without transformer", "source_fields", sourceFields)
		return nil
	}

	return e.mapToEntity(ctx, tx, applicationID, targetEntity, targetFields[0], value)
}

func (e *Engine) mapToEntity(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, entity, field string, value any) error {
	switch entity {
	case "Application", "LoanApplication":
		return e.mapToApplication(ctx, tx, applicationID, field, value)
	case "Applicant":
		return e.mapToApplicant(ctx, tx, applicationID, field, value)
	case "Business":
		return e.mapToBusiness(ctx, tx, applicationID, field, value)
	default:
		e.log.Warn("unknown mapping entity", "entity", entity)
		return nil
	}
}

func (e *Engine) mapToApplication(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, field string, value any) error {
	app, err := e.applicationRepo.GetByID(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	switch field {
	case "status":
		app.Status = domain.ApplicationStatus(asString(value))
	case "currentScreenId":
		s := asString(value)
		app.CurrentScreenID = &s
	default:
		e.log.Warn("unknown field for Application", "field", field)
		return nil
	}
	return e.applicationRepo.UpdateOptimistic(ctx, tx, app)
}

func (e *Engine) mapToApplicant(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, field string, value any) error {
	applicant, err := e.applicantRepo.GetByApplicationID(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if applicant == nil {
		applicant = &domain.Applicant{ApplicationID: applicationID}
	}
	switch field {
	case "fullName":
		applicant.FullName = asString(value)
	case "firstName":
		applicant.FirstName = asString(value)
	case "middleName":
		applicant.MiddleName = asString(value)
	case "lastName":
		applicant.LastName = asString(value)
	case "mobile":
		applicant.Mobile = asString(value)
	case "email":
		applicant.Email = asString(value)
	case "dob":
		applicant.Dob = e.parseDate(asString(value))
	case "gender":
		applicant.Gender = asString(value)
	case "panNumber":
		applicant.PanNumber = asString(value)
	case "aadhaarNumber":
		applicant.AadhaarNumber = asString(value)
	default:
		e.log.Warn("unknown field for Applicant", "field", field)
		return nil
	}
	return e.applicantRepo.Save(ctx, tx, applicant)
}

func (e *Engine) mapToBusiness(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, field string, value any) error {
	business, err := e.businessRepo.GetByApplicationID(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if business == nil {
		business = &domain.Business{ApplicationID: applicationID}
	}
	switch field {
	case "businessName":
		business.BusinessName = asString(value)
	case "businessType":
		business.BusinessType = asString(value)
	case "businessAddress":
		business.BusinessAddress = asString(value)
	case "gstin":
		business.Gstin = asString(value)
	case "businessVintageMonths":
		if months, err := strconv.Atoi(asString(value)); err == nil {
			business.BusinessVintageMonths = &months
		} else {
			e.log.Warn("businessVintageMonths is not an integer", "value", value)
		}
	case "annualTurnover":
		if turnover, err := strconv.ParseFloat(asString(value), 64); err == nil {
			business.AnnualTurnover = &turnover
		} else {
			e.log.Warn("annualTurnover is not a number", "value", value)
		}
	default:
		e.log.Warn("unknown field for Business", "field", field)
		return nil
	}
	return e.businessRepo.Save(ctx, tx, business)
}

func (e *Engine) parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		e.log.Error("error parsing date", "value", s, "error", err)
		return nil
	}
	return &t
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
