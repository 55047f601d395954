package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service"
)

type TeamHandler struct {
	teams  TeamAPI
	logger *zap.Logger
}

func NewTeamHandler(teams TeamAPI, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req service.CreateTeamInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "CreateTeam", err)
		return
	}
	team, err := h.teams.CreateTeam(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "CreateTeam", err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

type assignRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *TeamHandler) AssignUser(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "AssignUser", err)
		return
	}
	team, err := h.teams.AssignUser(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, h.logger, "AssignUser", err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) ListByProject(c *gin.Context) {
	teams, err := h.teams.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "ListTeams", err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) Metrics(c *gin.Context) {
	rows, err := h.teams.Metrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "TeamMetrics", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
