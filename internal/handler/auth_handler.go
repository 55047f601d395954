package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderCLIToken carries the companion CLI's token.
const HeaderCLIToken = "X-CLI-Token"

type AuthHandler struct {
	auth   AuthAPI
	logger *zap.Logger
}

func NewAuthHandler(auth AuthAPI, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Register", err)
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, h.logger, "Register", err)
		return
	}

	h.logger.Info("Register: success", zap.String("user_id", u.ID))
	c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Login", err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "Login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// IssueCLIToken hands a new CLI token to a browser session.
func (h *AuthHandler) IssueCLIToken(c *gin.Context) {
	token, err := h.auth.IssueCLIToken(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.logger, "IssueCLIToken", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

type revokeRequest struct {
	Token string `json:"token"`
}

// RevokeCLIToken revokes the token in the body, or the one the request authenticated with.
func (h *AuthHandler) RevokeCLIToken(c *gin.Context) {
	var req revokeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.logger, "RevokeCLIToken", err)
			return
		}
	}
	if req.Token == "" {
		req.Token = c.GetHeader(HeaderCLIToken)
	}
	if req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	if err := h.auth.RevokeCLIToken(c.Request.Context(), req.Token, currentUser(c)); err != nil {
		respondError(c, h.logger, "RevokeCLIToken", err)
		return
	}
	c.Status(http.StatusNoContent)
}
