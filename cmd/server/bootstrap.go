package main

import (
	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/handlers"
	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/internal/utils"
	"github.com/danodev/daworks/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	storage       *services.StorageService
	digestService *services.DigestService
	importService *services.ImportService
	taskQueue     services.TaskQueue
	worker        *services.Worker
	authHandler   *handlers.AuthHandler
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

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// File storage for client documents
	storage, err := services.NewStorageService(&cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Initialize and start the daily digest scheduler
	sysCfg := services.NewSystemConfigService(models.GetDB())
	if _, err := sysCfg.Get("digest_holiday_country"); err != nil {
		sysCfg.Set("digest_holiday_country", cfg.Digest.HolidayCountry)
	}
	notifier := services.NewNotifyBotService(models.GetDB())
	holiday := services.NewHolidayService()
	digestService := services.NewDigestService(models.GetDB(), sysCfg, notifier, holiday, cfg.Digest.HolidayCountry)
	digestService.StartScheduler()

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	importService := services.NewImportService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(importService.ProcessImportTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(importService.ProcessImportTask)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start async worker")
			}
		}
	}

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		storage:       storage,
		digestService: digestService,
		importService: importService,
		taskQueue:     taskQueue,
		worker:        worker,
		authHandler:   authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.digestService.StopScheduler()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
