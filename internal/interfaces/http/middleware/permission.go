package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appauthz "fiscus/internal/application/authz"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/utils"
)

type PermissionMiddleware struct {
	authzService *appauthz.Service
	logger       logger.Interface
}

func NewPermissionMiddleware(authzService *appauthz.Service, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		authzService: authzService,
		logger:       logger,
	}
}

// RequirePermission gates a route on a (resource, action) grant for the
// calling member. Unknown resource or action strings deny.
func (m *PermissionMiddleware) RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := TenantID(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "tenant identity missing")
			c.Abort()
			return
		}
		memberID, ok := MemberID(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "member identity missing")
			c.Abort()
			return
		}

		allowed, err := m.authzService.CanPerform(c.Request.Context(), tenantID, memberID, resource, action, 0)
		if err != nil {
			m.logger.Errorw("permission check failed",
				"error", err, "tenant_id", tenantID, "member_id", memberID,
				"resource", resource, "action", action)
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			c.Abort()
			return
		}
		if !allowed {
			m.logger.Warnw("permission denied",
				"tenant_id", tenantID, "member_id", memberID,
				"resource", resource, "action", action)
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireFeature gates a route on a plan feature flag. Unknown flag ids deny.
func (m *PermissionMiddleware) RequireFeature(flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := TenantID(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "tenant identity missing")
			c.Abort()
			return
		}

		enabled, err := m.authzService.CanAccessFeature(c.Request.Context(), tenantID, flag)
		if err != nil {
			m.logger.Errorw("feature check failed",
				"error", err, "tenant_id", tenantID, "feature", flag)
			utils.ErrorResponse(c, http.StatusInternalServerError, "feature check failed")
			c.Abort()
			return
		}
		if !enabled {
			m.logger.Warnw("feature not available on plan",
				"tenant_id", tenantID, "feature", flag)
			utils.ErrorResponse(c, http.StatusForbidden, "feature not available on current plan")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireQuota gates a creation route on remaining quota headroom for the
// given quota type. The authoritative check still happens inside the use case
// under the tenant lock; this produces the early upgrade prompt.
func (m *PermissionMiddleware) RequireQuota(quotaType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := TenantID(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "tenant identity missing")
			c.Abort()
			return
		}

		allowed, err := m.authzService.CanCreate(c.Request.Context(), tenantID, quotaType)
		if err != nil {
			m.logger.Errorw("quota check failed",
				"error", err, "tenant_id", tenantID, "quota_type", quotaType)
			utils.ErrorResponse(c, http.StatusInternalServerError, "quota check failed")
			c.Abort()
			return
		}
		if !allowed {
			m.logger.Warnw("quota exhausted",
				"tenant_id", tenantID, "quota_type", quotaType)
			utils.ErrorResponse(c, http.StatusPaymentRequired, "plan limit reached, upgrade to continue")
			c.Abort()
			return
		}

		c.Next()
	}
}
