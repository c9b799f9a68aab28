package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/flow"
	"github.com/crediflow/los-backend/internal/mapping"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/validation"
)

// NextScreenRequest is one wizard step submission. A nil ApplicationID
// with an empty CurrentScreenID starts a new flow.
type NextScreenRequest struct {
	ApplicationID   *uuid.UUID     `json:"applicationId"`
	CurrentScreenID string         `json:"currentScreenId"`
	FormData        map[string]any `json:"formData"`
	FlowID          string         `json:"flowId"`
	ProductCode     string         `json:"productCode"`
	PartnerCode     string         `json:"partnerCode"`
	BranchCode      string         `json:"branchCode"`
}

type NextScreenResponse struct {
	ApplicationID uuid.UUID                `json:"applicationId"`
	NextScreenID  *string                  `json:"nextScreenId"`
	ScreenConfig  map[string]any           `json:"screenConfig,omitempty"`
	Status        domain.ApplicationStatus `json:"status"`
}

// RuntimeService orchestrates one wizard step end to end: validation,
// camera-upload re-check, field mapping, navigation and persistence, all
// inside a single transaction per request.
type RuntimeService interface {
	ProcessNextScreen(ctx context.Context, req *NextScreenRequest) (*NextScreenResponse, error)
}

type runtimeService struct {
	db               *gorm.DB
	log              *logger.Logger
	appRepo          repos.ApplicationRepo
	uploadedFileRepo repos.UploadedFileRepo
	snapshots        SnapshotService
	flowEngine       *flow.Engine
	validator        *validation.Engine
	mapper           *mapping.Engine
}

func NewRuntimeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	appRepo repos.ApplicationRepo,
	uploadedFileRepo repos.UploadedFileRepo,
	snapshots SnapshotService,
	flowEngine *flow.Engine,
	validator *validation.Engine,
	mapper *mapping.Engine,
) RuntimeService {
	return &runtimeService{
		db:               db,
		log:              baseLog.With("service", "RuntimeService"),
		appRepo:          appRepo,
		uploadedFileRepo: uploadedFileRepo,
		snapshots:        snapshots,
		flowEngine:       flowEngine,
		validator:        validator,
		mapper:           mapper,
	}
}

func (s *runtimeService) ProcessNextScreen(ctx context.Context, req *NextScreenRequest) (*NextScreenResponse, error) {
	var response *NextScreenResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if req.CurrentScreenID == "" {
			response, err = s.handleFlowStart(ctx, tx, req)
		} else {
			response, err = s.handleProgression(ctx, tx, req)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *runtimeService) handleFlowStart(ctx context.Context, tx *gorm.DB, req *NextScreenRequest) (*NextScreenResponse, error) {
	s.log.Info("handling flow start", "flow_id", req.FlowID)
	if req.FlowID == "" {
		return nil, fmt.Errorf("flowId is required to start a flow: %w", apperrors.ErrInvalidArgument)
	}

	scope := domain.NewScope(req.ProductCode, req.PartnerCode, req.BranchCode)
	app, err := s.appRepo.Create(ctx, tx, &domain.Application{
		ProductCode: scope.ProductCode,
		PartnerCode: scope.PartnerCode,
		BranchCode:  scope.BranchCode,
		Status:      domain.AppInitiated,
	})
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	startScreenID, err := s.snapshots.StartFlow(ctx, tx, app, req.FlowID)
	if err != nil {
		return nil, err
	}

	app.CurrentScreenID = &startScreenID
	if err := s.appRepo.UpdateOptimistic(ctx, tx, app); err != nil {
		return nil, err
	}

	bundle, err := s.snapshots.GetScreenSnapshot(ctx, tx, app, startScreenID)
	if err != nil {
		return nil, err
	}

	return &NextScreenResponse{
		ApplicationID: app.ID,
		NextScreenID:  &startScreenID,
		ScreenConfig:  bundle.ScreenConfig,
		Status:        app.Status,
	}, nil
}

func (s *runtimeService) handleProgression(ctx context.Context, tx *gorm.DB, req *NextScreenRequest) (*NextScreenResponse, error) {
	s.log.Info("handling screen progression", "current_screen_id", req.CurrentScreenID)

	app, err := s.getOrCreateApplication(ctx, tx, req)
	if err != nil {
		return nil, err
	}
	// COMPLETED is terminal; replayed submissions must not reopen the
	// application.
	if app.Status == domain.AppCompleted {
		return nil, fmt.Errorf("application %s is already completed: %w",
			app.ID, apperrors.ErrInvalidState)
	}

	formData := req.FormData
	if formData == nil {
		formData = map[string]any{}
	}

	bundle, err := s.snapshots.GetScreenSnapshot(ctx, tx, app, req.CurrentScreenID)
	if err != nil {
		return nil, err
	}

	if bundle.ValidationConfig != nil {
		if err := s.validator.Validate(formData, bundle.ValidationConfig, bundle.ScreenConfig); err != nil {
			return nil, err
		}
	} else {
		s.log.Debug("no validation config for screen, skipping validation",
			"screen_id", req.CurrentScreenID)
	}

	// Camera captures are verified against stored upload rows. Client
	// flags in form data are not trusted.
	if err := s.checkRequiredCameraUploads(ctx, tx, app.ID, req.CurrentScreenID, bundle.ScreenConfig); err != nil {
		return nil, err
	}

	if bundle.MappingConfig != nil {
		if err := s.mapper.ApplyMappings(ctx, tx, app.ID, formData, bundle.MappingConfig); err != nil {
			return nil, fmt.Errorf("apply field mappings: %w", err)
		}
	}

	def, err := s.snapshots.GetFlowDefinition(ctx, tx, app, req.FlowID)
	if err != nil {
		return nil, err
	}
	nextScreenID, err := s.flowEngine.NextScreen(def, req.CurrentScreenID, formData)
	if err != nil {
		return nil, err
	}

	// Mappings may have touched the application row; work from the
	// current version before the final update.
	app, err = s.appRepo.GetByID(ctx, tx, app.ID)
	if err != nil {
		return nil, err
	}

	var nextScreenPtr *string
	if nextScreenID != "" {
		app.CurrentScreenID = &nextScreenID
		app.Status = domain.AppInProgress
		nextScreenPtr = &nextScreenID
	} else {
		app.Status = domain.AppCompleted
		s.log.Info("flow completed", "application_id", app.ID)
	}
	if err := s.appRepo.UpdateOptimistic(ctx, tx, app); err != nil {
		return nil, err
	}

	var screenConfig map[string]any
	if nextScreenID != "" {
		nextBundle, err := s.snapshots.GetScreenSnapshot(ctx, tx, app, nextScreenID)
		if err != nil {
			return nil, err
		}
		screenConfig = nextBundle.ScreenConfig
	}

	return &NextScreenResponse{
		ApplicationID: app.ID,
		NextScreenID:  nextScreenPtr,
		ScreenConfig:  screenConfig,
		Status:        app.Status,
	}, nil
}

// getOrCreateApplication resolves the application for a progression
// request. Requests without an id fall back to the most recent
// application parked at the same scope and screen; when even that fails
// a fresh application is created so the applicant is not stranded.
func (s *runtimeService) getOrCreateApplication(ctx context.Context, tx *gorm.DB, req *NextScreenRequest) (*domain.Application, error) {
	if req.ApplicationID != nil {
		return s.appRepo.GetByID(ctx, tx, *req.ApplicationID)
	}

	scope := domain.NewScope(req.ProductCode, req.PartnerCode, req.BranchCode)
	app, err := s.appRepo.FindLatestByScopeAndScreen(ctx, tx, scope, req.CurrentScreenID)
	if err == nil {
		s.log.Info("recovered application for id-less submission",
			"application_id", app.ID, "screen_id", req.CurrentScreenID)
		return app, nil
	}

	s.log.Warn("no application found for id-less submission, creating one",
		"product_code", scope.ProductCode, "screen_id", req.CurrentScreenID)
	screenID := req.CurrentScreenID
	return s.appRepo.Create(ctx, tx, &domain.Application{
		ProductCode:     scope.ProductCode,
		PartnerCode:     scope.PartnerCode,
		BranchCode:      scope.BranchCode,
		Status:          domain.AppInitiated,
		CurrentScreenID: &screenID,
	})
}

// checkRequiredCameraUploads fails the step when a required CAMERA field
// on the current screen has no stored upload.
func (s *runtimeService) checkRequiredCameraUploads(ctx context.Context, tx *gorm.DB, applicationID uuid.UUID, screenID string, screenConfig map[string]any) error {
	if screenConfig == nil {
		s.log.Warn("no screen config available, skipping camera upload check", "screen_id", screenID)
		return nil
	}
	fieldsObj := screenConfig["fields"]
	if uiConfig, ok := screenConfig["uiConfig"].(map[string]any); ok {
		if f, ok := uiConfig["fields"]; ok {
			fieldsObj = f
		}
	}
	fields, ok := fieldsObj.([]any)
	if !ok {
		return nil
	}

	var missing []validation.FieldError
	for _, f := range fields {
		field, ok := f.(map[string]any)
		if !ok {
			continue
		}
		fieldType, _ := field["type"].(string)
		if fieldType != "CAMERA" || field["required"] != true {
			continue
		}
		fieldID, _ := field["id"].(string)
		if fieldID == "" {
			continue
		}
		uploaded, err := s.uploadedFileRepo.ExistsForField(ctx, tx, applicationID, fieldID)
		if err != nil {
			return fmt.Errorf("check upload for field %s: %w", fieldID, err)
		}
		if !uploaded {
			missing = append(missing, validation.FieldError{
				FieldID: fieldID,
				Code:    "UPLOAD_REQUIRED",
				Message: "Required capture has not been uploaded",
			})
		}
	}
	if len(missing) > 0 {
		s.log.Error("required camera uploads missing",
			"application_id", applicationID, "screen_id", screenID, "count", len(missing))
		return &validation.Error{Fields: missing}
	}
	return nil
}
