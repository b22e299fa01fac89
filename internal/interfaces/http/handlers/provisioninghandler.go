package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fiscus/internal/application/provisioning"
	"fiscus/internal/domain/authz"
	"fiscus/internal/interfaces/http/middleware"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/utils"
)

// ProvisioningHandler exposes the invite/edit workflow over HTTP. A workflow
// is created once, then driven through toggle and transition calls by id.
type ProvisioningHandler struct {
	service  *provisioning.Service
	registry *provisioning.Registry
	logger   logger.Interface
}

func NewProvisioningHandler(service *provisioning.Service, registry *provisioning.Registry, logger logger.Interface) *ProvisioningHandler {
	return &ProvisioningHandler{
		service:  service,
		registry: registry,
		logger:   logger,
	}
}

// StartInvite creates an invite workflow with an empty draft.
func (h *ProvisioningHandler) StartInvite(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	workflow, err := h.service.NewInvite(c.Request.Context(), tenantID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.registry.Add(workflow)

	utils.CreatedResponse(c, workflow.Snapshot(), "invite workflow started")
}

// StartEdit creates an edit workflow prefilled from the member's profile.
func (h *ProvisioningHandler) StartEdit(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	memberID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid member ID")
		return
	}

	workflow, err := h.service.NewEdit(c.Request.Context(), tenantID, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.registry.Add(workflow)

	utils.CreatedResponse(c, workflow.Snapshot(), "edit workflow started")
}

func (h *ProvisioningHandler) workflow(c *gin.Context) (*provisioning.Workflow, bool) {
	workflow, err := h.registry.Get(c.Param("workflow_id"))
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return workflow, true
}

// Get renders the workflow's current snapshot.
func (h *ProvisioningHandler) Get(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

type SetEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *ProvisioningHandler) SetEmail(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	var req SetEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := workflow.SetEmail(req.Email); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

type ToggleRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

func (h *ProvisioningHandler) ToggleRole(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	var req ToggleRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := workflow.ToggleRole(req.RoleID); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

type ToggleOverrideRequest struct {
	AccountID uint `json:"account_id" binding:"required"`
}

func (h *ProvisioningHandler) ToggleOverride(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	var req ToggleOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := workflow.ToggleOverride(req.AccountID); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

type TogglePermissionRequest struct {
	AccountID uint   `json:"account_id" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

func (h *ProvisioningHandler) TogglePermission(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	var req TogglePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := workflow.TogglePermission(req.AccountID, authz.Action(req.Action)); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

// Next advances Editing -> Confirming once the draft passes validation.
func (h *ProvisioningHandler) Next(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	if err := workflow.Next(); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

// Cancel returns from confirmation (or a failed attempt) to editing.
func (h *ProvisioningHandler) Cancel(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	if err := workflow.Cancel(); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", workflow.Snapshot())
}

// Confirm launches the commit. The workflow is dropped from the registry on
// success; failed workflows stay retrievable for retry.
func (h *ProvisioningHandler) Confirm(c *gin.Context) {
	workflow, ok := h.workflow(c)
	if !ok {
		return
	}

	result, err := workflow.Confirm(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.registry.Remove(workflow.ID())
	utils.SuccessResponse(c, http.StatusOK, "member provisioned", result)
}
