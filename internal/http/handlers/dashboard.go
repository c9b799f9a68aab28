package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/http/response"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:       log.With("handler", "DashboardHandler"),
		dashboard: dashboard,
	}
}

func (h *DashboardHandler) ListFlows(c *gin.Context) {
	scope := domain.NewScope(c.Query("productCode"), c.Query("partnerCode"), c.Query("branchCode"))
	flows, err := h.dashboard.ListFlows(c.Request.Context(), scope)
	if err != nil {
		h.log.Error("ListFlows failed", "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"flows": flows})
}
