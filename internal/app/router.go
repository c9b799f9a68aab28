package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/crediflow/los-backend/internal/http"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:               log,
		AdminAuth:         middleware.AdminAuth,
		ConfigHandler:     handlerset.Config,
		RuntimeHandler:    handlerset.Runtime,
		DashboardHandler:  handlerset.Dashboard,
		MasterDataHandler: handlerset.MasterData,
		WebViewHandler:    handlerset.WebView,
		HealthHandler:     handlerset.Health,
	})
}
