package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service"
	"taskboard/pkg/logger"
)

type TaskHandler struct {
	tasks  TaskAPI
	logger *zap.Logger
}

func NewTaskHandler(tasks TaskAPI, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "CreateTask", err)
		return
	}
	logger.WithTrace(c.Request.Context(), h.logger).Info("CreateTask request received",
		zap.String("project_id", req.ProjectID),
		zap.String("user_id", currentUser(c)),
	)

	task, err := h.tasks.CreateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "CreateTask", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "GetTask", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req service.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "UpdateTask", err)
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, "UpdateTask", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteTask", err)
		return
	}
	logger.WithTrace(c.Request.Context(), h.logger).Info("DeleteTask: success", zap.String("task_id", id))
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) Kanban(c *gin.Context) {
	b, err := h.tasks.Kanban(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Kanban", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ------------------ steps ------------------

func (h *TaskHandler) CreateStep(c *gin.Context) {
	var req service.CreateStepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "CreateStep", err)
		return
	}
	step, err := h.tasks.CreateStep(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "CreateStep", err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

func (h *TaskHandler) ListSteps(c *gin.Context) {
	steps, err := h.tasks.ListSteps(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "ListSteps", err)
		return
	}
	c.JSON(http.StatusOK, steps)
}

func (h *TaskHandler) UpdateStep(c *gin.Context) {
	var req service.UpdateStepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "UpdateStep", err)
		return
	}
	step, err := h.tasks.UpdateStep(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, "UpdateStep", err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *TaskHandler) DeleteStep(c *gin.Context) {
	if err := h.tasks.DeleteStep(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "DeleteStep", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ------------------ types ------------------

type createTypeRequest struct {
	Name      string `json:"name"`
	ProjectID string `json:"projetoId"`
}

type updateTypeRequest struct {
	Name *string `json:"name"`
}

func (h *TaskHandler) CreateType(c *gin.Context) {
	var req createTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "CreateType", err)
		return
	}
	tt, err := h.tasks.CreateType(c.Request.Context(), req.Name, req.ProjectID)
	if err != nil {
		respondError(c, h.logger, "CreateType", err)
		return
	}
	c.JSON(http.StatusCreated, tt)
}

func (h *TaskHandler) ListTypes(c *gin.Context) {
	types, err := h.tasks.ListTypes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "ListTypes", err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *TaskHandler) UpdateType(c *gin.Context) {
	var req updateTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "UpdateType", err)
		return
	}
	tt, err := h.tasks.UpdateType(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, h.logger, "UpdateType", err)
		return
	}
	c.JSON(http.StatusOK, tt)
}

func (h *TaskHandler) DeleteType(c *gin.Context) {
	if err := h.tasks.DeleteType(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "DeleteType", err)
		return
	}
	c.Status(http.StatusNoContent)
}
