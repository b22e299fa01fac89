package middleware

import (
	"github.com/gin-gonic/gin"

	"fiscus/internal/shared/constants"
	"fiscus/internal/shared/logger"
)

// RequestLogger logs each request with identity context when present.
func RequestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}

		if tenantID, exists := c.Get(constants.ContextKeyTenantID); exists {
			args = append(args, "tenant_id", tenantID)
		}
		if memberID, exists := c.Get(constants.ContextKeyMemberID); exists {
			args = append(args, "member_id", memberID)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("HTTP request completed with server error", args...)
		case status >= 400:
			log.Warnw("HTTP request completed with client error", args...)
		default:
			log.Debugw("HTTP request completed successfully", args...)
		}
	}
}
