package app

import (
	"gorm.io/gorm"

	"github.com/crediflow/los-backend/internal/clients/redis"
	"github.com/crediflow/los-backend/internal/flow"
	"github.com/crediflow/los-backend/internal/mapping"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/qr"
	"github.com/crediflow/los-backend/internal/services"
	"github.com/crediflow/los-backend/internal/validation"
)

type Services struct {
	Resolution  services.ResolutionService
	Activation  services.ActivationService
	Snapshot    services.SnapshotService
	Runtime     services.RuntimeService
	ConfigAdmin services.ConfigAdminService
	Dashboard   services.DashboardService
	MasterData  services.MasterDataService
	WebView     services.WebViewService
	Upload      services.UploadService

	QRDecoder qr.Decoder
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	var cache redis.ConfigCache
	if cfg.RedisEnabled {
		c, err := redis.NewConfigCache(log)
		if err != nil {
			log.Warn("redis cache unavailable, continuing without caching", "error", err)
		} else {
			cache = c
		}
	}

	flowEngine := flow.NewEngine(log)
	validator := validation.NewEngine(log)
	mapper := mapping.NewEngine(reposet.Application, reposet.Applicant, reposet.Business, log)

	resolution := services.NewResolutionService(db, log, reposet.Config, cache)
	activation := services.NewActivationService(db, log, reposet.Config, resolution)
	snapshot := services.NewSnapshotService(db, log, resolution, reposet.FlowSnapshot, reposet.Application)
	runtime := services.NewRuntimeService(db, log, reposet.Application, reposet.UploadedFile,
		snapshot, flowEngine, validator, mapper)

	return Services{
		Resolution:  resolution,
		Activation:  activation,
		Snapshot:    snapshot,
		Runtime:     runtime,
		ConfigAdmin: services.NewConfigAdminService(db, log, reposet.Config),
		Dashboard:   services.NewDashboardService(log, reposet.Config),
		MasterData:  services.NewMasterDataService(log, reposet.Product, reposet.Partner, reposet.Branch),
		WebView:     services.NewWebViewService(log, reposet.Application),
		Upload:      services.NewUploadService(log, reposet.Application, reposet.UploadedFile),

		QRDecoder: qr.NewSecureQRDecoder(log),
	}
}
