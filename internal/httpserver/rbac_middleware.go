package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/handler"
	"taskboard/pkg/rbac"
)

// RequirePermission rejects callers whose role lacks perm.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(handler.CtxUserID); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if err := rbac.CheckPermission(c.GetString(handler.CtxRole), permission); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
