package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/sprintdesk/backend/internal/middleware"
	"github.com/huangang/sprintdesk/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	// Rate limiter for the raw generation endpoint
	generateLimiter := middleware.NewRateLimiter(1, 5)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Users
		api.POST("/users", svc.userHandler.Create)
		api.POST("/users/validate", svc.userHandler.ValidateCredentials)
		api.GET("/users/:id", svc.userHandler.GetByID)
		api.PUT("/users/:id", svc.userHandler.Update)
		api.DELETE("/users/:id", svc.userHandler.Delete)
		api.GET("/users/:id/projects", svc.projectHandler.ListByUser)

		// Projects
		api.POST("/projects", svc.projectHandler.Create)
		api.GET("/projects/:id", svc.projectHandler.GetByID)
		api.PUT("/projects/:id", svc.projectHandler.Update)
		api.DELETE("/projects/:id", svc.projectHandler.Delete)
		api.GET("/projects/:id/users", svc.userHandler.ListByProject)
		api.GET("/projects/:id/users/available", svc.userHandler.ListNotInProject)
		api.GET("/projects/:id/sprints", svc.sprintHandler.ListByProject)
		api.GET("/projects/:id/tasks", svc.taskHandler.ListByProject)
		api.GET("/projects/:id/tasks/unassigned", svc.taskHandler.ListUnassigned)

		// Sprints
		api.POST("/sprints", svc.sprintHandler.Create)
		api.GET("/sprints/:id", svc.sprintHandler.GetByID)
		api.PUT("/sprints/:id", svc.sprintHandler.Update)
		api.POST("/sprints/:id/end", svc.sprintHandler.End)
		api.GET("/sprints/:id/stats", svc.sprintHandler.Stats)
		api.DELETE("/sprints/:id", svc.sprintHandler.Delete)

		// Tasks
		api.POST("/tasks", svc.taskHandler.Create)
		api.GET("/tasks/search", svc.taskHandler.Search)
		api.GET("/tasks/:id", svc.taskHandler.GetByID)
		api.PUT("/tasks/:id", svc.taskHandler.Update)
		api.POST("/tasks/:id/description", svc.taskHandler.RegenerateDescription)
		api.DELETE("/tasks/:id", svc.taskHandler.Delete)

		// Raw text generation (rate limited)
		api.POST("/generate", generateLimiter.Middleware(), svc.generateHandler.Generate)

		// Activity feed
		api.GET("/activity", svc.activityHandler.List)
	}
}
