package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crediflow/los-backend/internal/http/response"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/qr"
	"github.com/crediflow/los-backend/internal/services"
)

const maxUploadBytes = 10 << 20

// RuntimeHandler serves the applicant-facing wizard endpoints.
type RuntimeHandler struct {
	log     *logger.Logger
	runtime services.RuntimeService
	uploads services.UploadService
	decoder qr.Decoder
}

func NewRuntimeHandler(
	log *logger.Logger,
	runtime services.RuntimeService,
	uploads services.UploadService,
	decoder qr.Decoder,
) *RuntimeHandler {
	return &RuntimeHandler{
		log:     log.With("handler", "RuntimeHandler"),
		runtime: runtime,
		uploads: uploads,
		decoder: decoder,
	}
}

func (h *RuntimeHandler) NextScreen(c *gin.Context) {
	var req services.NextScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	resp, err := h.runtime.ProcessNextScreen(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("NextScreen failed", "current_screen_id", req.CurrentScreenID, "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, resp)
}

func (h *RuntimeHandler) UploadFile(c *gin.Context) {
	applicationID, err := uuid.Parse(c.PostForm("applicationId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_application_id", err)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}

	record, err := h.uploads.Record(c.Request.Context(), &services.UploadInput{
		ApplicationID: applicationID,
		ScreenID:      c.PostForm("screenId"),
		FieldID:       c.PostForm("fieldId"),
		FileName:      fileHeader.Filename,
		ContentType:   fileHeader.Header.Get("Content-Type"),
		Content:       content,
	})
	if err != nil {
		h.log.Error("UploadFile failed", "application_id", applicationID, "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondCreated(c, record)
}

func (h *RuntimeHandler) ListFiles(c *gin.Context) {
	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_application_id", err)
		return
	}
	files, err := h.uploads.List(c.Request.Context(), applicationID)
	if err != nil {
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

func (h *RuntimeHandler) DecodeQR(c *gin.Context) {
	var req struct {
		Payload string `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if req.Payload == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_payload", nil)
		return
	}
	record, err := h.decoder.Decode(req.Payload)
	if err != nil {
		h.log.Warn("DecodeQR failed", "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, record)
}
