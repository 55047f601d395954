package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/handler"
	"taskboard/pkg/logger"
	"taskboard/pkg/metrics"
	"taskboard/pkg/rbac"
	"taskboard/pkg/trace"
	"taskboard/pkg/util"
)

// TokenValidator resolves either kind of credential to a user id.
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
	ValidateCLIToken(ctx context.Context, token string) (string, error)
}

// TraceMiddleware reuses the caller's X-Trace-ID or starts a new one, and echoes it back.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.FromHeader(c.GetHeader(trace.HeaderName))
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

// RequestLogger records latency per route and logs every request once it completes.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), duration)

		logger.WithTrace(c.Request.Context(), log).Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// AuthMiddleware accepts either a Bearer JWT or an X-CLI-Token. The JWT wins when both
// are present. The role stored in the context decides what the caller may do.
func AuthMiddleware(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := util.ExtractToken(c.Request); token != "" {
			userID, err := validator.ValidateJWT(token)
			if err != nil {
				logger.WithTrace(c.Request.Context(), log).Warn("Rejected session token", zap.Error(err))
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				c.Abort()
				return
			}
			c.Set(handler.CtxUserID, userID)
			c.Set(handler.CtxRole, rbac.RoleUser)
			c.Next()
			return
		}

		if token := c.GetHeader(handler.HeaderCLIToken); token != "" {
			userID, err := validator.ValidateCLIToken(c.Request.Context(), token)
			if err != nil {
				logger.WithTrace(c.Request.Context(), log).Warn("Rejected CLI token", zap.Error(err))
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cli token"})
				c.Abort()
				return
			}
			c.Set(handler.CtxUserID, userID)
			c.Set(handler.CtxRole, rbac.RoleCLI)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		c.Abort()
	}
}
