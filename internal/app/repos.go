package app

import (
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type Repos struct {
	Config repos.ConfigDocumentRepo

	Application  repos.ApplicationRepo
	FlowSnapshot repos.FlowSnapshotRepo
	Applicant    repos.ApplicantRepo
	Business     repos.BusinessRepo
	UploadedFile repos.UploadedFileRepo

	Product repos.ProductRepo
	Partner repos.PartnerRepo
	Branch  repos.BranchRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Config: repos.NewConfigDocumentRepo(db, log),

		Application:  repos.NewApplicationRepo(db, log),
		FlowSnapshot: repos.NewFlowSnapshotRepo(db, log),
		Applicant:    repos.NewApplicantRepo(db, log),
		Business:     repos.NewBusinessRepo(db, log),
		UploadedFile: repos.NewUploadedFileRepo(db, log),

		Product: repos.NewProductRepo(db, log),
		Partner: repos.NewPartnerRepo(db, log),
		Branch:  repos.NewBranchRepo(db, log),
	}
}
