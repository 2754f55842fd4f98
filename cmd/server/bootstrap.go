package main

import (
	"context"

	"github.com/aiguild/guildtracker/internal/config"
	"github.com/aiguild/guildtracker/internal/handlers"
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/services"
	"github.com/aiguild/guildtracker/internal/utils"
	"github.com/aiguild/guildtracker/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg            *config.Config
	outbox         *services.OutboxService
	taskQueue      services.TaskQueue
	worker         *services.Worker
	authHandler    *handlers.AuthHandler
	projectHandler *handlers.ProjectHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, mirror, schedulers.
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

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Spreadsheet mirror client (best-effort; a broken client just
	// disables mirroring)
	var mirror services.RowMirror
	if cfg.Sheets.Enabled {
		sheetsMirror, err := services.NewSheetsMirror(context.Background(), &cfg.Sheets)
		if err != nil {
			logger.Warn().Err(err).Msg("Mirror client unavailable, mirroring disabled")
		} else {
			mirror = sheetsMirror
		}
	}

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	outbox := services.NewOutboxService(models.GetDB(), mirror, taskQueue, cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(outbox.DeliverByID)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(outbox.DeliverByID)
			worker.Start()
		}
	}

	// Retry undelivered mirror ops on a schedule
	outbox.StartSweep()

	if cfg.Admin.PasswordHash == "" {
		logger.Warn().Msg("No admin password hash configured; edit and delete are locked out")
	}

	return &appServices{
		cfg:            cfg,
		outbox:         outbox,
		taskQueue:      taskQueue,
		worker:         worker,
		authHandler:    handlers.NewAuthHandler(cfg),
		projectHandler: handlers.NewProjectHandler(models.GetDB(), outbox),
		healthHandler:  handlers.NewHealthHandler(outbox),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.outbox.StopSweep()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
