package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/flow"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// ScreenSnapshot is the frozen per-screen config bundle inside a flow
// snapshot. Validation and mapping configs are optional.
type ScreenSnapshot struct {
	ScreenConfig     map[string]any
	ValidationConfig map[string]any
	MappingConfig    map[string]any
}

// SnapshotService freezes flow and screen configs when an application
// starts and serves the frozen copies afterwards. Once a snapshot exists
// the application never sees live config again, with one exception: a
// screen missing from the snapshot falls back to live resolution, loudly.
type SnapshotService interface {
	// StartFlow resolves the ACTIVE flow config, snapshots every
	// referenced screen and returns the start screen id.
	StartFlow(ctx context.Context, tx *gorm.DB, app *domain.Application, flowID string) (string, error)
	// GetFlowDefinition returns the frozen definition, creating the
	// snapshot first when the application predates snapshotting. flowID
	// is required only on that creation path.
	GetFlowDefinition(ctx context.Context, tx *gorm.DB, app *domain.Application, flowID string) (flow.Definition, error)
	// GetScreenSnapshot returns the frozen bundle for one screen.
	GetScreenSnapshot(ctx context.Context, tx *gorm.DB, app *domain.Application, screenID string) (*ScreenSnapshot, error)
}

type snapshotService struct {
	db           *gorm.DB
	log          *logger.Logger
	resolution   ResolutionService
	snapshotRepo repos.FlowSnapshotRepo
	appRepo      repos.ApplicationRepo
}

const snapshotConcurrency = 4

func NewSnapshotService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolution ResolutionService,
	snapshotRepo repos.FlowSnapshotRepo,
	appRepo repos.ApplicationRepo,
) SnapshotService {
	return &snapshotService{
		db:           db,
		log:          baseLog.With("service", "SnapshotService"),
		resolution:   resolution,
		snapshotRepo: snapshotRepo,
		appRepo:      appRepo,
	}
}

func (s *snapshotService) StartFlow(ctx context.Context, tx *gorm.DB, app *domain.Application, flowID string) (string, error) {
	flowDoc, err := s.resolution.Resolve(ctx, tx, domain.KindFlow, flowID, app.Scope())
	if err != nil {
		return "", err
	}
	def, err := flow.Parse(flowDoc.Body)
	if err != nil {
		return "", err
	}
	startScreenID, err := def.StartScreen()
	if err != nil {
		return "", err
	}
	if _, err := s.createSnapshot(ctx, tx, app, flowDoc, def, startScreenID); err != nil {
		return "", err
	}
	s.log.Info("flow started", "application_id", app.ID, "flow_id", flowID, "start_screen", startScreenID)
	return startScreenID, nil
}

func (s *snapshotService) GetFlowDefinition(ctx context.Context, tx *gorm.DB, app *domain.Application, flowID string) (flow.Definition, error) {
	if app.FlowSnapshotID != nil {
		data, err := s.snapshotData(ctx, tx, app)
		if err != nil {
			return nil, err
		}
		defObj, ok := data["flowDefinition"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("snapshot %s has no flow definition: %w",
				*app.FlowSnapshotID, apperrors.ErrMalformedFlow)
		}
		return flow.Definition(defObj), nil
	}

	// Pre-snapshot application: freeze now. This path needs the caller
	// to tell us which flow the application is on.
	if flowID == "" {
		return nil, fmt.Errorf("flowId is required to snapshot application %s: %w",
			app.ID, apperrors.ErrInvalidArgument)
	}
	s.log.Info("application has no snapshot, creating one", "application_id", app.ID, "flow_id", flowID)
	flowDoc, err := s.resolution.Resolve(ctx, tx, domain.KindFlow, flowID, app.Scope())
	if err != nil {
		return nil, err
	}
	def, err := flow.Parse(flowDoc.Body)
	if err != nil {
		return nil, err
	}
	startScreenID, _ := def.StartScreen()
	if _, err := s.createSnapshot(ctx, tx, app, flowDoc, def, startScreenID); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *snapshotService) GetScreenSnapshot(ctx context.Context, tx *gorm.DB, app *domain.Application, screenID string) (*ScreenSnapshot, error) {
	if app.FlowSnapshotID != nil {
		data, err := s.snapshotData(ctx, tx, app)
		if err != nil {
			return nil, err
		}
		screenConfigs, _ := data["screenConfigs"].(map[string]any)
		if entry, ok := screenConfigs[screenID].(map[string]any); ok {
			snapshot := &ScreenSnapshot{}
			snapshot.ScreenConfig, _ = entry["screenConfig"].(map[string]any)
			snapshot.ValidationConfig, _ = entry["validationConfig"].(map[string]any)
			snapshot.MappingConfig, _ = entry["mappingConfig"].(map[string]any)
			return snapshot, nil
		}
		s.log.Warn("screen missing from snapshot, falling back to live config",
			"application_id", app.ID, "snapshot_id", *app.FlowSnapshotID, "screen_id", screenID)
	}
	return s.liveScreenSnapshot(ctx, app, screenID), nil
}

func (s *snapshotService) snapshotData(ctx context.Context, tx *gorm.DB, app *domain.Application) (map[string]any, error) {
	snapshot, err := s.snapshotRepo.GetByID(ctx, tx, *app.FlowSnapshotID)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(snapshot.Data, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot %s data: %w", snapshot.ID, err)
	}
	return data, nil
}

// createSnapshot freezes the flow definition plus every referenced
// screen's configs. Individual screens that fail to resolve are skipped;
// a partial snapshot is better than no progress for the applicant.
func (s *snapshotService) createSnapshot(ctx context.Context, tx *gorm.DB, app *domain.Application, flowDoc *domain.ConfigDocument, def flow.Definition, startScreenID string) (*domain.FlowSnapshot, error) {
	screenIDs := def.ScreenIDs()
	if startScreenID != "" && !slices.Contains(screenIDs, startScreenID) {
		screenIDs = append([]string{startScreenID}, screenIDs...)
	}
	s.log.Info("snapshotting screens", "application_id", app.ID, "count", len(screenIDs))

	// Per-screen resolution runs concurrently against the base pool, not
	// the caller's transaction: a gorm transaction is not safe to share
	// across goroutines, and these reads only touch ACTIVE configs.
	var mu sync.Mutex
	screenConfigs := make(map[string]any, len(screenIDs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(snapshotConcurrency)
	for _, screenID := range screenIDs {
		group.Go(func() error {
			entry := s.liveScreenEntry(groupCtx, app, screenID)
			if entry == nil {
				return nil
			}
			mu.Lock()
			screenConfigs[screenID] = entry
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	data := map[string]any{
		"flowId":         flowDoc.LogicalKey,
		"flowVersion":    flowDoc.Version,
		"flowDefinition": map[string]any(def),
		"screenConfigs":  screenConfigs,
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot data: %w", err)
	}

	snapshot, err := s.snapshotRepo.Create(ctx, tx, &domain.FlowSnapshot{
		ApplicationID: app.ID,
		FlowConfigID:  flowDoc.ID,
		Data:          datatypes.JSON(raw),
	})
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	if err := s.appRepo.SetFlowSnapshotID(ctx, tx, app.ID, snapshot.ID); err != nil {
		return nil, fmt.Errorf("attach snapshot to application: %w", err)
	}
	app.FlowSnapshotID = &snapshot.ID

	s.log.Info("flow snapshot created", "snapshot_id", snapshot.ID,
		"application_id", app.ID, "screens", len(screenConfigs))
	return snapshot, nil
}

// liveScreenEntry resolves one screen's bundle from ACTIVE configs for
// inclusion in a snapshot. Returns nil when not even the screen config
// resolves.
func (s *snapshotService) liveScreenEntry(ctx context.Context, app *domain.Application, screenID string) map[string]any {
	live := s.liveScreenSnapshot(ctx, app, screenID)
	if live.ScreenConfig == nil {
		s.log.Warn("no screen config resolvable, skipping screen in snapshot",
			"application_id", app.ID, "screen_id", screenID)
		return nil
	}
	entry := map[string]any{"screenConfig": live.ScreenConfig}
	if live.ValidationConfig != nil {
		entry["validationConfig"] = live.ValidationConfig
	}
	if live.MappingConfig != nil {
		entry["mappingConfig"] = live.MappingConfig
	}
	return entry
}

func (s *snapshotService) liveScreenSnapshot(ctx context.Context, app *domain.Application, screenID string) *ScreenSnapshot {
	scope := app.Scope()
	snapshot := &ScreenSnapshot{}

	screenConfig, err := s.resolution.ResolveBody(ctx, nil, domain.KindScreen, screenID, scope)
	if err != nil {
		s.log.Warn("screen config resolution failed", "screen_id", screenID, "error", err)
	} else {
		snapshot.ScreenConfig = screenConfig
	}

	validationConfig, err := s.resolution.ResolveBody(ctx, nil, domain.KindValidation, screenID, scope)
	if err != nil {
		s.log.Debug("no validation config for screen", "screen_id", screenID)
	} else {
		snapshot.ValidationConfig = validationConfig
	}

	mappingConfig, err := s.resolution.ResolveBody(ctx, nil, domain.KindFieldMapping, screenID, scope)
	if err != nil {
		s.log.Debug("no field mapping config for screen", "screen_id", screenID)
	} else {
		snapshot.MappingConfig = mappingConfig
	}

	return snapshot
}
