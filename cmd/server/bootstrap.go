package main

import (
	"github.com/sisgic/backend/internal/config"
	"github.com/sisgic/backend/internal/handlers"
	"github.com/sisgic/backend/internal/models"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/internal/utils"
	"github.com/sisgic/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the
// application.
type appServices struct {
	store            *services.DiskStore
	hub              *services.EventHub
	reminderQueue    services.ReminderQueue
	reminderWorker   *services.ReminderWorker
	reminderService  *services.ReminderService
	reconcileService *services.ReconcileService
	authHandler      *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, storage,
// services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitSystemLogger(models.GetDB())

	store := services.NewDiskStore(&cfg.Storage, cfg.Server.BaseURL)
	hub := services.NewEventHub()

	// Nightly storage reconciliation and log cleanup
	reconcileService := services.NewReconcileService(
		models.GetDB(), store, services.NewSystemLogService(models.GetDB()))
	reconcileService.StartScheduler()

	// Meeting reminders: async over Redis when enabled, inline otherwise
	emailService := services.NewEmailService(models.GetDB())
	reminderQueue := services.NewReminderQueue(cfg)
	reminderService := services.NewReminderService(models.GetDB(), reminderQueue, emailService)
	if syncQueue, ok := reminderQueue.(*services.SyncReminderQueue); ok {
		syncQueue.SetProcessor(reminderService.Process)
	}

	var reminderWorker *services.ReminderWorker
	if cfg.Redis.Enabled {
		reminderWorker = services.NewReminderWorker(&cfg.Redis)
		if reminderWorker != nil {
			reminderWorker.SetProcessor(reminderService.Process)
			reminderWorker.Start()
		}
	}
	reminderService.StartScheduler()

	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateDefaultAdvisorIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create default advisor")
	}

	return &appServices{
		store:            store,
		hub:              hub,
		reminderQueue:    reminderQueue,
		reminderWorker:   reminderWorker,
		reminderService:  reminderService,
		reconcileService: reconcileService,
		authHandler:      authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.reminderService.StopScheduler()
	s.reconcileService.StopScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.reminderWorker != nil {
		s.reminderWorker.Stop()
	}
	if s.reminderQueue != nil {
		s.reminderQueue.Close()
	}
}
