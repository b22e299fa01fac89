package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appauthz "fiscus/internal/application/authz"
	"fiscus/internal/interfaces/http/middleware"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/utils"
)

// PermissionHandler serves the gating questions the dashboard asks: can this
// member do X, and what is a member's full effective profile.
type PermissionHandler struct {
	authzService *appauthz.Service
	logger       logger.Interface
}

func NewPermissionHandler(authzService *appauthz.Service, logger logger.Interface) *PermissionHandler {
	return &PermissionHandler{
		authzService: authzService,
		logger:       logger,
	}
}

type CheckPermissionResponse struct {
	Allowed bool `json:"allowed"`
}

// Check answers a single permission question for the calling member. The
// resource and action come from query parameters; account_id optionally
// scopes the check to one financial account.
func (h *PermissionHandler) Check(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)
	memberID, ok := middleware.MemberID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "member identity missing")
		return
	}

	resource := c.Query("resource")
	action := c.Query("action")
	if resource == "" || action == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "resource and action are required")
		return
	}

	var accountID uint
	if raw := c.Query("account_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid account_id")
			return
		}
		accountID = uint(parsed)
	}

	allowed, err := h.authzService.CanPerform(c.Request.Context(), tenantID, memberID, resource, action, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", CheckPermissionResponse{Allowed: allowed})
}

type FeatureCheckResponse struct {
	Enabled bool `json:"enabled"`
}

// CheckFeature reports whether the tenant's plan unlocks a feature flag.
func (h *PermissionHandler) CheckFeature(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	flag := c.Param("flag")
	enabled, err := h.authzService.CanAccessFeature(c.Request.Context(), tenantID, flag)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", FeatureCheckResponse{Enabled: enabled})
}

type AccountPermissionsResponse struct {
	AccountID  uint     `json:"account_id"`
	Overridden bool     `json:"overridden"`
	Actions    []string `json:"actions"`
}

type MemberSummaryResponse struct {
	MemberID    uint                         `json:"member_id"`
	Email       string                       `json:"email"`
	Status      string                       `json:"status"`
	RoleIDs     []uint                       `json:"role_ids"`
	Permissions map[string][]string          `json:"permissions"`
	Accounts    []AccountPermissionsResponse `json:"accounts"`
}

// MemberSummary renders a member's full effective permission profile.
func (h *PermissionHandler) MemberSummary(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	memberID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid member ID")
		return
	}

	summary, err := h.authzService.MemberPermissionSummary(c.Request.Context(), tenantID, memberID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	permissions := make(map[string][]string, len(summary.Permissions))
	for resource, actions := range summary.Permissions {
		list := make([]string, 0, len(actions))
		for _, a := range actions {
			list = append(list, a.String())
		}
		permissions[resource.String()] = list
	}

	accounts := make([]AccountPermissionsResponse, 0, len(summary.Accounts))
	for _, account := range summary.Accounts {
		actions := make([]string, 0, len(account.Actions))
		for _, a := range account.Actions {
			actions = append(actions, a.String())
		}
		accounts = append(accounts, AccountPermissionsResponse{
			AccountID:  account.AccountID,
			Overridden: account.Overridden,
			Actions:    actions,
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", MemberSummaryResponse{
		MemberID:    summary.MemberID,
		Email:       summary.Email,
		Status:      string(summary.Status),
		RoleIDs:     summary.RoleIDs,
		Permissions: permissions,
		Accounts:    accounts,
	})
}

type MemberResponse struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	Status             string `json:"status"`
	RoleIDs            []uint `json:"role_ids"`
	OverriddenAccounts []uint `json:"overridden_accounts"`
}

// ListMembers renders the tenant's member list for the members screen.
func (h *PermissionHandler) ListMembers(c *gin.Context) {
	tenantID, _ := middleware.TenantID(c)

	members, err := h.authzService.ListMembers(c.Request.Context(), tenantID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, MemberResponse{
			ID:                 member.ID(),
			Email:              member.Email(),
			Status:             string(member.Status()),
			RoleIDs:            member.RoleIDs(),
			OverriddenAccounts: member.OverriddenAccountIDs(),
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}
