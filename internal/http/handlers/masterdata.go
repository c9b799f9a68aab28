package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/crediflow/los-backend/internal/http/response"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/services"
)

type MasterDataHandler struct {
	log        *logger.Logger
	masterData services.MasterDataService
}

func NewMasterDataHandler(log *logger.Logger, masterData services.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{
		log:        log.With("handler", "MasterDataHandler"),
		masterData: masterData,
	}
}

func (h *MasterDataHandler) Get(c *gin.Context) {
	data, err := h.masterData.Get(c.Request.Context(), c.Query("partnerCode"))
	if err != nil {
		h.log.Error("Get failed", "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, data)
}
