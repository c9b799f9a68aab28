package db

import (
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Config store
		&domain.ConfigDocument{},

		// Runtime
		&domain.Application{},
		&domain.FlowSnapshot{},
		&domain.Applicant{},
		&domain.Business{},
		&domain.UploadedFile{},

		// Master data
		&domain.Product{},
		&domain.Partner{},
		&domain.Branch{},
	)
}
