package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/http/response"
	"github.com/crediflow/los-backend/internal/pkg/logger"
	"github.com/crediflow/los-backend/internal/services"
)

// kindFromPath maps the URL collection segment to a config kind.
var kindFromPath = map[string]domain.ConfigKind{
	"screens":     domain.KindScreen,
	"flows":       domain.KindFlow,
	"validations": domain.KindValidation,
	"mappings":    domain.KindFieldMapping,
}

// ConfigHandler serves the authoring and lifecycle endpoints for all
// four config kinds through one parameterized handler family.
type ConfigHandler struct {
	log        *logger.Logger
	admin      services.ConfigAdminService
	activation services.ActivationService
	resolution services.ResolutionService
}

func NewConfigHandler(
	log *logger.Logger,
	admin services.ConfigAdminService,
	activation services.ActivationService,
	resolution services.ResolutionService,
) *ConfigHandler {
	return &ConfigHandler{
		log:        log.With("handler", "ConfigHandler"),
		admin:      admin,
		activation: activation,
		resolution: resolution,
	}
}

func (h *ConfigHandler) kind(c *gin.Context) (domain.ConfigKind, bool) {
	kind, ok := kindFromPath[c.Param("kind")]
	if !ok {
		response.RespondError(c, http.StatusNotFound, "unknown_config_kind", nil)
		return "", false
	}
	return kind, true
}

func (h *ConfigHandler) configID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_config_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ConfigHandler) List(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	docs, err := h.admin.List(c.Request.Context(), kind, c.Query("key"))
	if err != nil {
		h.log.Error("List failed", "kind", kind, "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"configs": docs})
}

func (h *ConfigHandler) Get(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.configID(c)
	if !ok {
		return
	}
	doc, err := h.admin.Get(c.Request.Context(), kind, id)
	if err != nil {
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *ConfigHandler) Create(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var input services.CreateConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	input.Actor = actorFrom(c)
	doc, err := h.admin.Create(c.Request.Context(), kind, &input)
	if err != nil {
		h.log.Error("Create failed", "kind", kind, "logical_key", input.LogicalKey, "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondCreated(c, doc)
}

func (h *ConfigHandler) Update(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.configID(c)
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	doc, err := h.admin.Update(c.Request.Context(), kind, id, body, actorFrom(c))
	if err != nil {
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *ConfigHandler) Clone(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.configID(c)
	if !ok {
		return
	}
	var req struct {
		ProductCode string `json:"productCode"`
		PartnerCode string `json:"partnerCode"`
		BranchCode  string `json:"branchCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	scope := domain.NewScope(req.ProductCode, req.PartnerCode, req.BranchCode)
	doc, err := h.admin.Clone(c.Request.Context(), kind, id, scope, actorFrom(c))
	if err != nil {
		response.RespondMappedError(c, err)
		return
	}
	response.RespondCreated(c, doc)
}

func (h *ConfigHandler) Delete(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.configID(c)
	if !ok {
		return
	}
	if err := h.admin.Delete(c.Request.Context(), kind, id); err != nil {
		response.RespondMappedError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ConfigHandler) Activate(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.configID(c)
	if !ok {
		return
	}
	doc, err := h.activation.Activate(c.Request.Context(), kind, id, actorFrom(c))
	if err != nil {
		h.log.Error("Activate failed", "kind", kind, "config_id", id, "error", err)
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *ConfigHandler) Deactivate(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.configID(c)
	if !ok {
		return
	}
	doc, err := h.activation.Deactivate(c.Request.Context(), kind, id, actorFrom(c))
	if err != nil {
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

// Resolve serves the explicit resolution endpoint used by authoring UIs
// to preview what runtime would pick for a scope.
func (h *ConfigHandler) Resolve(c *gin.Context) {
	kind, ok := kindFromPath[c.Query("kind")]
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "unknown_config_kind", nil)
		return
	}
	key := c.Query("key")
	if key == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_key", nil)
		return
	}
	scope := domain.NewScope(c.Query("productCode"), c.Query("partnerCode"), c.Query("branchCode"))
	doc, err := h.resolution.Resolve(c.Request.Context(), nil, kind, key, scope)
	if err != nil {
		response.RespondMappedError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor"); actor != "" {
		return actor
	}
	return "system"
}
