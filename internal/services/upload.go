package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// UploadInput is one captured file plus the step it belongs to.
type UploadInput struct {
	ApplicationID uuid.UUID
	ScreenID      string
	FieldID       string
	FileName      string
	ContentType   string
	Content       []byte
}

// UploadService records captured files against an application. Rows
// written here back the orchestrator's required-capture re-check.
type UploadService interface {
	Record(ctx context.Context, input *UploadInput) (*domain.UploadedFile, error)
	List(ctx context.Context, applicationID uuid.UUID) ([]*domain.UploadedFile, error)
}

type uploadService struct {
	log      *logger.Logger
	appRepo  repos.ApplicationRepo
	fileRepo repos.UploadedFileRepo
}

func NewUploadService(baseLog *logger.Logger, appRepo repos.ApplicationRepo, fileRepo repos.UploadedFileRepo) UploadService {
	return &uploadService{
		log:      baseLog.With("service", "UploadService"),
		appRepo:  appRepo,
		fileRepo: fileRepo,
	}
}

func (s *uploadService) Record(ctx context.Context, input *UploadInput) (*domain.UploadedFile, error) {
	if input.FieldID == "" {
		return nil, fmt.Errorf("fieldId is required: %w", apperrors.ErrInvalidArgument)
	}
	if len(input.Content) == 0 {
		return nil, fmt.Errorf("file content is empty: %w", apperrors.ErrInvalidArgument)
	}
	app, err := s.appRepo.GetByID(ctx, nil, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(input.Content)
	file, err := s.fileRepo.Create(ctx, nil, &domain.UploadedFile{
		ApplicationID: app.ID,
		FieldID:       input.FieldID,
		ScreenID:      input.ScreenID,
		FileName:      input.FileName,
		ContentType:   input.ContentType,
		SizeBytes:     int64(len(input.Content)),
		Sha256:        hex.EncodeToString(digest[:]),
		StorageKey:    fmt.Sprintf("uploads/%s/%s/%s", app.ID, input.FieldID, input.FileName),
	})
	if err != nil {
		return nil, fmt.Errorf("record uploaded file: %w", err)
	}
	s.log.Info("upload recorded", "application_id", app.ID,
		"field_id", input.FieldID, "size_bytes", file.SizeBytes)
	return file, nil
}

func (s *uploadService) List(ctx context.Context, applicationID uuid.UUID) ([]*domain.UploadedFile, error) {
	return s.fileRepo.ListByApplication(ctx, nil, applicationID)
}
