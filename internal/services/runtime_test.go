package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/data/repos/testutil"
	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/flow"
	"github.com/crediflow/los-backend/internal/mapping"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/validation"
)

type runtimeFixture struct {
	db         *gorm.DB
	configRepo repos.ConfigDocumentRepo
	appRepo    repos.ApplicationRepo
	applicants repos.ApplicantRepo
	uploads    UploadService
	snapshots  SnapshotService
	runtime    RuntimeService

	flowID  string
	screenA string
	screenB string
}

// newRuntimeFixture seeds a two-screen flow with validation, mapping and
// a required camera capture on the second screen. Everything is seeded
// on the base pool because the snapshot fan-out reads outside the
// request transaction.
func newRuntimeFixture(t *testing.T) *runtimeFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	f := &runtimeFixture{
		db:      db,
		flowID:  "flow-" + uuid.NewString(),
		screenA: "screen-a-" + uuid.NewString(),
		screenB: "screen-b-" + uuid.NewString(),
	}
	f.configRepo = repos.NewConfigDocumentRepo(db, log)
	f.appRepo = repos.NewApplicationRepo(db, log)
	f.applicants = repos.NewApplicantRepo(db, log)
	uploadedFiles := repos.NewUploadedFileRepo(db, log)
	f.uploads = NewUploadService(log, f.appRepo, uploadedFiles)

	resolution := NewResolutionService(db, log, f.configRepo, nil)
	f.snapshots = NewSnapshotService(db, log, resolution, repos.NewFlowSnapshotRepo(db, log), f.appRepo)
	mapper := mapping.NewEngine(f.appRepo, f.applicants, repos.NewBusinessRepo(db, log), log)
	f.runtime = NewRuntimeService(db, log, f.appRepo, uploadedFiles,
		f.snapshots, flow.NewEngine(log), validation.NewEngine(log), mapper)

	flowBody := fmt.Sprintf(`{
		"startScreen": %q,
		"screens": {
			%q: {"next": %q},
			%q: {"next": "__FLOW_END__"}
		}
	}`, f.screenA, f.screenA, f.screenB, f.screenB)
	f.seedActiveDoc(t, domain.KindFlow, f.flowID, flowBody)

	f.seedActiveDoc(t, domain.KindScreen, f.screenA, `{
		"title": "Personal Details",
		"uiConfig": {"fields": [{"id": "fullName", "type": "TEXT"}]}
	}`)
	f.seedActiveDoc(t, domain.KindValidation, f.screenA, `{
		"fields": {"fullName": {"required": true}}
	}`)
	f.seedActiveDoc(t, domain.KindFieldMapping, f.screenA, `{
		"mappings": [{
			"sourceFields": ["fullName"],
			"target": {"entity": "Applicant", "fields": ["fullName"]}
		}]
	}`)

	f.seedActiveDoc(t, domain.KindScreen, f.screenB, `{
		"title": "Selfie",
		"uiConfig": {"fields": [{"id": "selfie", "type": "CAMERA", "required": true}]}
	}`)

	return f
}

func (f *runtimeFixture) seedActiveDoc(t *testing.T, kind domain.ConfigKind, key, body string) {
	t.Helper()
	_, err := f.configRepo.Create(context.Background(), nil, &domain.ConfigDocument{
		Kind:       kind,
		LogicalKey: key,
		Status:     domain.StatusActive,
		Body:       datatypes.JSON([]byte(body)),
	})
	if err != nil {
		t.Fatalf("seed %s/%s: %v", kind, key, err)
	}
}

func TestProcessNextScreenFullJourney(t *testing.T) {
	f := newRuntimeFixture(t)
	ctx := context.Background()

	// Flow start: application created, snapshot frozen, start screen out.
	start, err := f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		FlowID:      f.flowID,
		ProductCode: "MSME_LOAN",
	})
	if err != nil {
		t.Fatalf("flow start: %v", err)
	}
	if start.NextScreenID == nil || *start.NextScreenID != f.screenA {
		t.Fatalf("start screen = %v, want %s", start.NextScreenID, f.screenA)
	}
	if start.Status != domain.AppInitiated {
		t.Fatalf("start status = %s, want INITIATED", start.Status)
	}
	if start.ScreenConfig == nil || start.ScreenConfig["title"] != "Personal Details" {
		t.Fatalf("start screen config = %v", start.ScreenConfig)
	}

	app, err := f.appRepo.GetByID(ctx, nil, start.ApplicationID)
	if err != nil {
		t.Fatalf("load application: %v", err)
	}
	if app.FlowSnapshotID == nil {
		t.Fatal("expected flow snapshot to be attached at start")
	}

	// Progression without the required field fails validation.
	_, err = f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		ApplicationID:   &start.ApplicationID,
		CurrentScreenID: f.screenA,
		FlowID:          f.flowID,
		FormData:        map[string]any{},
	})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Valid submission maps the applicant and moves to the next screen.
	step, err := f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		ApplicationID:   &start.ApplicationID,
		CurrentScreenID: f.screenA,
		FlowID:          f.flowID,
		FormData:        map[string]any{"fullName": "Asha Patel"},
	})
	if err != nil {
		t.Fatalf("progression: %v", err)
	}
	if step.NextScreenID == nil || *step.NextScreenID != f.screenB {
		t.Fatalf("next screen = %v, want %s", step.NextScreenID, f.screenB)
	}
	if step.Status != domain.AppInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", step.Status)
	}

	applicant, err := f.applicants.GetByApplicationID(ctx, nil, start.ApplicationID)
	if err != nil {
		t.Fatalf("load applicant: %v", err)
	}
	if applicant == nil || applicant.FullName != "Asha Patel" {
		t.Fatalf("applicant = %+v, want fullName mapped", applicant)
	}

	// The required camera capture is checked against stored uploads, so
	// a client claiming success in form data is not enough.
	_, err = f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		ApplicationID:   &start.ApplicationID,
		CurrentScreenID: f.screenB,
		FlowID:          f.flowID,
		FormData:        map[string]any{"selfie": "uploaded"},
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected upload validation error, got %v", err)
	}
	if verr.Fields[0].Code != "UPLOAD_REQUIRED" {
		t.Fatalf("code = %s, want UPLOAD_REQUIRED", verr.Fields[0].Code)
	}

	if _, err := f.uploads.Record(ctx, &UploadInput{
		ApplicationID: start.ApplicationID,
		ScreenID:      f.screenB,
		FieldID:       "selfie",
		FileName:      "selfie.jpg",
		ContentType:   "image/jpeg",
		Content:       []byte("fake-jpeg-bytes"),
	}); err != nil {
		t.Fatalf("record upload: %v", err)
	}

	done, err := f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		ApplicationID:   &start.ApplicationID,
		CurrentScreenID: f.screenB,
		FlowID:          f.flowID,
		FormData:        map[string]any{},
	})
	if err != nil {
		t.Fatalf("final step: %v", err)
	}
	if done.NextScreenID != nil {
		t.Fatalf("next screen after final step = %v, want nil", done.NextScreenID)
	}
	if done.Status != domain.AppCompleted {
		t.Fatalf("status = %s, want COMPLETED", done.Status)
	}

	// COMPLETED is terminal: a replayed submission must not reopen the
	// application or move it back to IN_PROGRESS.
	_, err = f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		ApplicationID:   &start.ApplicationID,
		CurrentScreenID: f.screenA,
		FlowID:          f.flowID,
		FormData:        map[string]any{"fullName": "Asha Patel"},
	})
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("replay after completion: expected ErrInvalidState, got %v", err)
	}
	final, err := f.appRepo.GetByID(ctx, nil, start.ApplicationID)
	if err != nil {
		t.Fatalf("re-load application: %v", err)
	}
	if final.Status != domain.AppCompleted {
		t.Fatalf("status after replay = %s, want COMPLETED", final.Status)
	}
}

func TestFlowStartRequiresFlowID(t *testing.T) {
	f := newRuntimeFixture(t)

	_, err := f.runtime.ProcessNextScreen(context.Background(), &NextScreenRequest{
		ProductCode: "MSME_LOAN",
	})
	if err == nil {
		t.Fatal("expected error for flow start without flowId")
	}
}

func TestSnapshotFreezesScreenConfigs(t *testing.T) {
	f := newRuntimeFixture(t)
	ctx := context.Background()

	start, err := f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		FlowID:      f.flowID,
		ProductCode: "MSME_LOAN",
	})
	if err != nil {
		t.Fatalf("flow start: %v", err)
	}
	app, err := f.appRepo.GetByID(ctx, nil, start.ApplicationID)
	if err != nil {
		t.Fatalf("load application: %v", err)
	}

	// Change the live ACTIVE config after the snapshot was taken.
	docs, err := f.configRepo.FindExactScope(ctx, nil, domain.KindScreen, f.screenA,
		domain.NewScope("", "", ""), domain.StatusActive)
	if err != nil || len(docs) != 1 {
		t.Fatalf("find live screen config: %v (%d docs)", err, len(docs))
	}
	if err := f.configRepo.UpdateBody(ctx, nil, docs[0].ID,
		datatypes.JSON([]byte(`{"title":"Renamed After Snapshot"}`))); err != nil {
		t.Fatalf("update live config: %v", err)
	}

	// The running application keeps seeing the frozen copy.
	bundle, err := f.snapshots.GetScreenSnapshot(ctx, nil, app, f.screenA)
	if err != nil {
		t.Fatalf("GetScreenSnapshot: %v", err)
	}
	if bundle.ScreenConfig["title"] != "Personal Details" {
		t.Fatalf("snapshot config title = %v, want frozen value", bundle.ScreenConfig["title"])
	}
}

func TestProgressionWithoutApplicationIDRecoversByScopeAndScreen(t *testing.T) {
	f := newRuntimeFixture(t)
	ctx := context.Background()

	start, err := f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		FlowID:      f.flowID,
		ProductCode: "RECOVERY_" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("flow start: %v", err)
	}

	// Re-load to learn the scope the application was created under.
	app, err := f.appRepo.GetByID(ctx, nil, start.ApplicationID)
	if err != nil {
		t.Fatalf("load application: %v", err)
	}

	step, err := f.runtime.ProcessNextScreen(ctx, &NextScreenRequest{
		CurrentScreenID: f.screenA,
		FlowID:          f.flowID,
		ProductCode:     app.ProductCode,
		FormData:        map[string]any{"fullName": "Asha Patel"},
	})
	if err != nil {
		t.Fatalf("id-less progression: %v", err)
	}
	if step.ApplicationID != start.ApplicationID {
		t.Fatalf("recovered application %s, want %s", step.ApplicationID, start.ApplicationID)
	}
}
