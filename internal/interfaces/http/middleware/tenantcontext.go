package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fiscus/internal/shared/constants"
	"fiscus/internal/shared/utils"
)

// TenantContext extracts the calling tenant and member identity from the
// headers set by the authenticating edge proxy and stores them in the
// request context. Requests without a tenant id are rejected.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := parseIDHeader(c, "X-Tenant-ID")
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "tenant identity missing")
			c.Abort()
			return
		}
		c.Set(constants.ContextKeyTenantID, tenantID)

		if memberID, ok := parseIDHeader(c, "X-Member-ID"); ok {
			c.Set(constants.ContextKeyMemberID, memberID)
		}

		c.Next()
	}
}

func parseIDHeader(c *gin.Context, header string) (uint, bool) {
	raw := c.GetHeader(header)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// TenantID reads the tenant id placed by TenantContext.
func TenantID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyTenantID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// MemberID reads the member id placed by TenantContext.
func MemberID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyMemberID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
