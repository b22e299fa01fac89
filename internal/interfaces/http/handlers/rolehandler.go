package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appauthz "fiscus/internal/application/authz"
	"fiscus/internal/domain/authz"
	"fiscus/internal/interfaces/http/middleware"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/utils"
)

type RoleHandler struct {
	createRole *appauthz.CreateRoleUseCase
	updateRole *appauthz.UpdateRoleUseCase
	deleteRole *appauthz.DeleteRoleUseCase
	listRoles  *appauthz.ListRolesUseCase
	logger     logger.Interface
}

func NewRoleHandler(
	createRole *appauthz.CreateRoleUseCase,
	updateRole *appauthz.UpdateRoleUseCase,
	deleteRole *appauthz.DeleteRoleUseCase,
	listRoles *appauthz.ListRolesUseCase,
	logger logger.Interface,
) *RoleHandler {
	return &RoleHandler{
		createRole: createRole,
		updateRole: updateRole,
		deleteRole: deleteRole,
		listRoles:  listRoles,
		logger:     logger,
	}
}

type CreateRoleRequest struct {
	Name        string              `json:"name" binding:"required,max=50"`
	Description string              `json:"description"`
	Permissions map[string][]string `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        *string             `json:"name" binding:"omitempty,max=50"`
	Description *string             `json:"description"`
	Permissions map[string][]string `json:"permissions"`
}

type RoleResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	IsSystem    bool                `json:"is_system"`
	Permissions map[string][]string `json:"permissions"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toRoleResponse(role *authz.Role) RoleResponse {
	permissions := make(map[string][]string)
	for resource, actions := range role.Permissions() {
		list := make([]string, 0, len(actions))
		for _, a := range actions.Actions() {
			list = append(list, a.String())
		}
		permissions[resource.String()] = list
	}
	return RoleResponse{
		ID:          role.ID(),
		Name:        role.Name(),
		Description: role.Description(),
		IsSystem:    role.IsSystem(),
		Permissions: permissions,
		CreatedAt:   role.CreatedAt(),
		UpdatedAt:   role.UpdatedAt(),
	}
}

func (h *RoleHandler) Create(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	role, err := h.createRole.Execute(c.Request.Context(), appauthz.CreateRoleCommand{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toRoleResponse(role), "role created")
}

func (h *RoleHandler) List(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	roles, err := h.listRoles.Execute(c.Request.Context(), tenantID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toRoleResponse(role))
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

func (h *RoleHandler) Update(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	roleID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid role ID")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	role, err := h.updateRole.Execute(c.Request.Context(), appauthz.UpdateRoleCommand{
		TenantID:    tenantID,
		RoleID:      roleID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "role updated", toRoleResponse(role))
}

func (h *RoleHandler) Delete(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	roleID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid role ID")
		return
	}

	if err := h.deleteRole.Execute(c.Request.Context(), appauthz.DeleteRoleCommand{
		TenantID: tenantID,
		RoleID:   roleID,
	}); err != nil {
		respondWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
