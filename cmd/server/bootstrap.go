package main

import (
	"github.com/huangang/sprintdesk/backend/internal/config"
	"github.com/huangang/sprintdesk/backend/internal/handlers"
	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/internal/services"
	"github.com/huangang/sprintdesk/backend/internal/utils"
	"github.com/huangang/sprintdesk/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	aiService       *services.AIService
	userHandler     *handlers.UserHandler
	projectHandler  *handlers.ProjectHandler
	sprintHandler   *handlers.SprintHandler
	taskHandler     *handlers.TaskHandler
	generateHandler *handlers.GenerateHandler
	activityHandler *handlers.ActivityHandler
	healthHandler   *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize activity logger
	services.InitActivityLogger(models.GetDB())

	// Start activity log cleanup scheduler
	if err := services.StartCleanupScheduler(models.GetDB(), &cfg.Activity); err != nil {
		logger.Warn().Err(err).Msg("Failed to start activity cleanup scheduler")
	}

	aiService := services.NewAIService(&cfg.LLM)

	return &appServices{
		aiService:       aiService,
		userHandler:     handlers.NewUserHandler(models.GetDB(), &cfg.JWT),
		projectHandler:  handlers.NewProjectHandler(models.GetDB()),
		sprintHandler:   handlers.NewSprintHandler(models.GetDB(), cfg.Server.Region),
		taskHandler:     handlers.NewTaskHandler(models.GetDB(), aiService),
		generateHandler: handlers.NewGenerateHandler(aiService),
		activityHandler: handlers.NewActivityHandler(models.GetDB()),
		healthHandler:   handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	services.StopCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")
}
