package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskman/internal/handler"
	"taskman/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
	notificationHandler *handler.NotificationHandler,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Ops endpoints stay outside /api and outside auth.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public
	api.POST("/auth/register/public", authHandler.RegisterPublic)
	api.POST("/auth/login", authHandler.Login)

	// Protected
	auth := api.Group("/")
	auth.Use(AuthMiddleware(jwtSecret, logger))
	{
		admin := RequireRole(rbac.RoleAdmin)

		auth.POST("/auth/register", admin, authHandler.Register)
		auth.GET("/auth/me", authHandler.Me)

		auth.GET("/users", admin, userHandler.List)
		auth.POST("/users", admin, userHandler.Create)
		auth.GET("/users/:id", userHandler.Get)
		auth.PUT("/users/:id", userHandler.Update)
		auth.DELETE("/users/:id", admin, userHandler.Delete)
		auth.PUT("/users/:id/role", admin, userHandler.UpdateRole)
		auth.GET("/users/:id/tasks", userHandler.Tasks)
		auth.GET("/users/:id/projects", userHandler.Projects)

		auth.GET("/projects", projectHandler.List)
		auth.POST("/projects", admin, projectHandler.Create)
		auth.GET("/projects/:id", projectHandler.Get)
		auth.PUT("/projects/:id", projectHandler.Update)
		auth.DELETE("/projects/:id", admin, projectHandler.Delete)
		auth.POST("/projects/:id/team", admin, projectHandler.AddTeamMember)
		auth.DELETE("/projects/:id/team/:userId", admin, projectHandler.RemoveTeamMember)
		auth.POST("/projects/:id/milestones", projectHandler.AddMilestone)
		auth.PUT("/projects/:id/milestones/:milestoneId", projectHandler.CompleteMilestone)
		auth.POST("/projects/:id/documents", projectHandler.AddDocument)

		auth.GET("/tasks", taskHandler.List)
		auth.POST("/tasks", admin, taskHandler.Create)
		auth.GET("/tasks/assigned-to-me", taskHandler.AssignedToMe)
		auth.GET("/tasks/:id", taskHandler.Get)
		auth.PUT("/tasks/:id", admin, taskHandler.Update)
		auth.DELETE("/tasks/:id", admin, taskHandler.Delete)
		auth.PATCH("/tasks/:id/status", taskHandler.SetStatus)
		auth.POST("/tasks/:id/comments", taskHandler.AddComment)
		auth.POST("/tasks/:id/attachments", taskHandler.AddAttachment)

		auth.GET("/notifications", notificationHandler.List)
		auth.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
