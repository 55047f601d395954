package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects ProjectAPI
	tasks    TaskAPI
	logger   *zap.Logger
}

func NewProjectHandler(projects ProjectAPI, tasks TaskAPI, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, tasks: tasks, logger: logger}
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "CreateProject", err)
		return
	}
	p, err := h.projects.CreateProject(c.Request.Context(), req.Name, currentUser(c))
	if err != nil {
		respondError(c, h.logger, "CreateProject", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, err := h.projects.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "GetProject", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) ListTasks(c *gin.Context) {
	projectID := c.Param("id")
	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, "ListProjectTasks", err)
		return
	}
	h.logger.Debug("ListProjectTasks: success",
		zap.String("project_id", projectID),
		zap.Int("task_count", len(tasks)),
	)
	c.JSON(http.StatusOK, tasks)
}
