package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskboard/internal/handler"
	"taskboard/pkg/rbac"
)

// ReadyCheck is one dependency probed by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handlers struct {
	Auth     *handler.AuthHandler
	Projects *handler.ProjectHandler
	Tasks    *handler.TaskHandler
	History  *handler.HistoryHandler
	Teams    *handler.TeamHandler
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, validator TokenValidator, checks []ReadyCheck, logger *zap.Logger) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), RequestLogger(logger))

	// Health endpoints, registered before any auth middleware
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyHandler(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(validator, logger))
	{
		auth.POST("/cli/token", RequirePermission(rbac.PermissionIssueCLI), h.Auth.IssueCLIToken)
		auth.DELETE("/cli/token", h.Auth.RevokeCLIToken)

		read := RequirePermission(rbac.PermissionReadBoard)
		manageProjects := RequirePermission(rbac.PermissionManageProject)
		manageTeams := RequirePermission(rbac.PermissionManageTeams)
		writeTask := RequirePermission(rbac.PermissionWriteTask)
		deleteTask := RequirePermission(rbac.PermissionDeleteTask)
		logHistory := RequirePermission(rbac.PermissionLogHistory)
		manageSteps := RequirePermission(rbac.PermissionManageSteps)
		manageTypes := RequirePermission(rbac.PermissionManageTypes)

		auth.POST("/projetos", manageProjects, h.Projects.CreateProject)
		auth.GET("/projetos", read, h.Projects.ListProjects)
		auth.GET("/projetos/:id", read, h.Projects.GetProject)
		auth.GET("/projetos/:id/tarefas", read, h.Projects.ListTasks)
		auth.GET("/projetos/:id/times", read, h.Teams.ListByProject)
		auth.GET("/projetos/:id/times/metrics", read, h.Teams.Metrics)

		auth.POST("/times", manageTeams, h.Teams.CreateTeam)
		auth.POST("/times/:id/members", manageTeams, h.Teams.AssignUser)

		auth.POST("/tarefas", writeTask, h.Tasks.CreateTask)
		auth.POST("/tarefas/history", logHistory, h.History.LogHistory)
		auth.GET("/tarefas/projeto/:id/kanban", read, h.Tasks.Kanban)
		auth.GET("/tarefas/:id", read, h.Tasks.GetTask)
		auth.PATCH("/tarefas/:id", writeTask, h.Tasks.UpdateTask)
		auth.DELETE("/tarefas/:id", deleteTask, h.Tasks.DeleteTask)
		auth.GET("/tarefas/:id/history", read, h.History.ListHistory)
		auth.GET("/tarefas/:id/history/elapsed", read, h.History.TotalElapsed)
		auth.GET("/tarefas/:id/summary", read, h.History.Summary)

		auth.POST("/tarefas-steps", manageSteps, h.Tasks.CreateStep)
		auth.GET("/tarefas-steps/projeto/:id", read, h.Tasks.ListSteps)
		auth.PATCH("/tarefas-steps/:id", manageSteps, h.Tasks.UpdateStep)
		auth.DELETE("/tarefas-steps/:id", manageSteps, h.Tasks.DeleteStep)

		auth.POST("/tarefas-tipos", manageTypes, h.Tasks.CreateType)
		auth.GET("/tarefas-tipos/projeto/:id", read, h.Tasks.ListTypes)
		auth.PATCH("/tarefas-tipos/:id", manageTypes, h.Tasks.UpdateType)
		auth.DELETE("/tarefas-tipos/:id", manageTypes, h.Tasks.DeleteType)
	}

	return &Router{Engine: r}
}

func readyHandler(checks []ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": check.Name + "_not_ready",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
