package handler

import (
	"github.com/gin-gonic/gin"
)

// Keys set by the auth middleware on every authenticated request.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

func currentUser(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

func currentRole(c *gin.Context) string {
	return c.GetString(CtxRole)
}
