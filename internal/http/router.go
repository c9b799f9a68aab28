package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/crediflow/los-backend/internal/http/handlers"
	httpMW "github.com/crediflow/los-backend/internal/http/middleware"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AdminAuth *httpMW.AdminAuth

	ConfigHandler     *httpH.ConfigHandler
	RuntimeHandler    *httpH.RuntimeHandler
	DashboardHandler  *httpH.DashboardHandler
	MasterDataHandler *httpH.MasterDataHandler
	WebViewHandler    *httpH.WebViewHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Config authoring and lifecycle (admin)
	if cfg.ConfigHandler != nil {
		admin := api.Group("/config")
		if cfg.AdminAuth != nil {
			admin.Use(cfg.AdminAuth.RequireAdmin())
		}
		admin.GET("/resolve", cfg.ConfigHandler.Resolve)
		admin.GET("/:kind", cfg.ConfigHandler.List)
		admin.POST("/:kind", cfg.ConfigHandler.Create)
		admin.GET("/:kind/:id", cfg.ConfigHandler.Get)
		admin.PUT("/:kind/:id", cfg.ConfigHandler.Update)
		admin.DELETE("/:kind/:id", cfg.ConfigHandler.Delete)
		admin.POST("/:kind/:id/clone", cfg.ConfigHandler.Clone)
		admin.POST("/:kind/:id/activate", cfg.ConfigHandler.Activate)
		admin.POST("/:kind/:id/deactivate", cfg.ConfigHandler.Deactivate)
	}

	// Applicant runtime
	if cfg.RuntimeHandler != nil {
		api.POST("/runtime/next-screen", cfg.RuntimeHandler.NextScreen)
		api.POST("/runtime/files", cfg.RuntimeHandler.UploadFile)
		api.GET("/runtime/applications/:id/files", cfg.RuntimeHandler.ListFiles)
		api.POST("/runtime/qr/decode", cfg.RuntimeHandler.DecodeQR)
	}

	if cfg.DashboardHandler != nil {
		api.GET("/dashboard/flows", cfg.DashboardHandler.ListFlows)
	}

	if cfg.MasterDataHandler != nil {
		api.GET("/masterdata", cfg.MasterDataHandler.Get)
	}

	if cfg.WebViewHandler != nil {
		api.POST("/webview/init", cfg.WebViewHandler.Init)
	}

	return r
}
