package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service"
	"taskboard/pkg/logger"
)

// statusFor maps service errors onto HTTP status codes. A missing project on a write is a
// bad request, not a 404, matching what existing clients expect.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrInUse),
		errors.Is(err, service.ErrCrossProject),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidLogin), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err at a level matching its status and writes {"error": ...}.
// Internal errors never leak their message.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	status := statusFor(err)
	log = logger.WithTrace(c.Request.Context(), log)
	if status >= http.StatusInternalServerError {
		log.Error(op+": failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	log.Warn(op+": rejected", zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, log *zap.Logger, op string, err error) {
	logger.WithTrace(c.Request.Context(), log).Warn(op+": invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
