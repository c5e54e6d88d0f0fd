package middleware

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/security"
)

// RequirePermission gates a route on the permission oracle's verdict for
// the given action (e.g. "purchase_order.receive").
func RequirePermission(oracle security.Oracle, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		user := appctx.GetUser(ctx)
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if !oracle.Allowed(ctx, user.Roles, action) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("action", action),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
