package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crediflow/los-backend/internal/http/response"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/services"
)

type WebViewHandler struct {
	log     *logger.Logger
	webView services.WebViewService
}

func NewWebViewHandler(log *logger.Logger, webView services.WebViewService) *WebViewHandler {
	return &WebViewHandler{
		log:     log.With("handler", "WebViewHandler"),
		webView: webView,
	}
}

func (h *WebViewHandler) Init(c *gin.Context) {
	var req struct {
		ApplicationID string `json:"applicationId"`
		ScreenID      string `json:"screenId"`
		FieldID       string `json:"fieldId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	applicationID, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_application_id", err)
		return
	}
	session, err := h.webView.Init(c.Request.Context(), applicationID, req.ScreenID, req.FieldID)
	if err != nil {
		h.log.Error("Init failed", "application_id", req.ApplicationID, "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, session)
}
