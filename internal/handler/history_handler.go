package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/effort"
	"taskboard/internal/service"
)

type HistoryHandler struct {
	history HistoryAPI
	logger  *zap.Logger
}

func NewHistoryHandler(history HistoryAPI, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// LogHistory appends a time entry. Entries without a userId are attributed to the caller.
func (h *HistoryHandler) LogHistory(c *gin.Context) {
	var req service.LogHistoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "LogHistory", err)
		return
	}
	if req.UserID == nil {
		if uid := currentUser(c); uid != "" {
			req.UserID = &uid
		}
	}

	entry, err := h.history.Log(c.Request.Context(), req, currentRole(c))
	if err != nil {
		respondError(c, h.logger, "LogHistory", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListHistory returns the task's entries newest first. ?user= keeps one contributor
// ("unknown" for anonymous entries) and ?limit= keeps the newest n.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	taskID := c.Param("id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.logger.Warn("ListHistory: invalid limit", zap.String("limit", raw))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.history.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.logger, "ListHistory", err)
		return
	}
	if user := c.Query("user"); user != "" {
		entries = effort.FilterByUser(entries, user)
	}
	if limit > 0 {
		entries = effort.Recent(entries, limit)
	}
	c.JSON(http.StatusOK, entries)
}

func (h *HistoryHandler) TotalElapsed(c *gin.Context) {
	taskID := c.Param("id")
	total, err := h.history.TotalElapsed(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, h.logger, "TotalElapsed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tarefaId":         taskID,
		"totalElapsedTime": total,
	})
}

type summaryResponse struct {
	*effort.Summary
	TotalLabel     string  `json:"totalLabel"`
	RemainingLabel *string `json:"remainingLabel"`
}

func (h *HistoryHandler) Summary(c *gin.Context) {
	s, err := h.history.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Summary", err)
		return
	}

	resp := summaryResponse{Summary: s, TotalLabel: effort.FormatHours(s.TotalHours)}
	if s.RemainingHours != nil {
		label := effort.FormatHours(*s.RemainingHours)
		resp.RemainingLabel = &label
	}
	c.JSON(http.StatusOK, resp)
}
