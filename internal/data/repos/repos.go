package repos

import (
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos/config"
	"github.com/crediflow/los-backend/internal/data/repos/masterdata"
	"github.com/crediflow/los-backend/internal/data/repos/runtime"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type ConfigDocumentRepo = config.ConfigDocumentRepo

type ApplicationRepo = runtime.ApplicationRepo
type FlowSnapshotRepo = runtime.FlowSnapshotRepo
type ApplicantRepo = runtime.ApplicantRepo
type BusinessRepo = runtime.BusinessRepo
type UploadedFileRepo = runtime.UploadedFileRepo

type ProductRepo = masterdata.ProductRepo
type PartnerRepo = masterdata.PartnerRepo
type BranchRepo = masterdata.BranchRepo

func NewConfigDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ConfigDocumentRepo {
	return config.NewConfigDocumentRepo(db, baseLog)
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return runtime.NewApplicationRepo(db, baseLog)
}
func NewFlowSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) FlowSnapshotRepo {
	return runtime.NewFlowSnapshotRepo(db, baseLog)
}
func NewApplicantRepo(db *gorm.DB, baseLog *logger.Logger) ApplicantRepo {
	return runtime.NewApplicantRepo(db, baseLog)
}
func NewBusinessRepo(db *gorm.DB, baseLog *logger.Logger) BusinessRepo {
	return runtime.NewBusinessRepo(db, baseLog)
}
func NewUploadedFileRepo(db *gorm.DB, baseLog *logger.Logger) UploadedFileRepo {
	return runtime.NewUploadedFileRepo(db, baseLog)
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return masterdata.NewProductRepo(db, baseLog)
}
func NewPartnerRepo(db *gorm.DB, baseLog *logger.Logger) PartnerRepo {
	return masterdata.NewPartnerRepo(db, baseLog)
}
func NewBranchRepo(db *gorm.DB, baseLog *logger.Logger) BranchRepo {
	return masterdata.NewBranchRepo(db, baseLog)
}
