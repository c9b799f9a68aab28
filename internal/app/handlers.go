package app

import (
	httpH "github.com/crediflow/los-backend/internal/http/handlers"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type Handlers struct {
	Config     *httpH.ConfigHandler
	Runtime    *httpH.RuntimeHandler
	Dashboard  *httpH.DashboardHandler
	MasterData *httpH.MasterDataHandler
	WebView    *httpH.WebViewHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Config:     httpH.NewConfigHandler(log, serviceset.ConfigAdmin, serviceset.Activation, serviceset.Resolution),
		Runtime:    httpH.NewRuntimeHandler(log, serviceset.Runtime, serviceset.Upload, serviceset.QRDecoder),
		Dashboard:  httpH.NewDashboardHandler(log, serviceset.Dashboard),
		MasterData: httpH.NewMasterDataHandler(log, serviceset.MasterData),
		WebView:    httpH.NewWebViewHandler(log, serviceset.WebView),
		Health:     httpH.NewHealthHandler(),
	}
}
