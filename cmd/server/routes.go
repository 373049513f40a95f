package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/handlers"
	"github.com/sisgic/backend/internal/middleware"
	"github.com/sisgic/backend/internal/models"
	"github.com/sisgic/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	r.Use(middleware.AuditLog())

	// Rate limiter for the public auth endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	db := models.GetDB()

	// Health check
	healthHandler := handlers.NewHealthHandler(svc.reminderQueue, svc.hub)
	r.GET("/health", healthHandler.CheckHealth)

	// Public attachment downloads, served straight off the object store
	r.Static("/files/"+svc.store.Bucket(), svc.store.Dir())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// SSE events (public route with internal token validation, since
		// EventSource cannot set an Authorization header)
		eventsHandler := handlers.NewEventsHandler(svc.hub)
		api.GET("/events", eventsHandler.Stream)

		// Protected routes (both roles)
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(db, svc.store)
			protected.GET("/dashboard/overview", dashboardHandler.Overview)

			// Projects (read)
			projectHandler := handlers.NewProjectHandler(db, svc.store, svc.hub)
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.GET("/projects/:id/stages", projectHandler.ListStages)

			// Meetings (read)
			meetingHandler := handlers.NewMeetingHandler(db, svc.store, svc.hub)
			protected.GET("/meetings", meetingHandler.List)

			// Tasks: status moves and uploads belong to both roles, scoped
			// to the caller's own projects inside the service layer
			taskHandler := handlers.NewTaskHandler(db, svc.store, svc.hub)
			protected.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
			protected.POST("/tasks/:id/attachments", taskHandler.UploadAttachment)
		}

		// Advisor-only routes
		advisor := api.Group("")
		advisor.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdvisor))
		{
			// Projects (write)
			projectHandler := handlers.NewProjectHandler(db, svc.store, svc.hub)
			advisor.POST("/projects", projectHandler.Create)
			advisor.PUT("/projects/:id", projectHandler.Update)
			advisor.DELETE("/projects/:id", projectHandler.Delete)

			// Stages
			stageHandler := handlers.NewStageHandler(db, svc.store, svc.hub)
			advisor.POST("/projects/:id/stages", stageHandler.Create)
			advisor.PUT("/stages/:id", stageHandler.Update)
			advisor.DELETE("/stages/:id", stageHandler.Delete)
			advisor.POST("/stages/:id/tasks", stageHandler.CreateTask)

			// Tasks
			taskHandler := handlers.NewTaskHandler(db, svc.store, svc.hub)
			advisor.PUT("/tasks/:id", taskHandler.Update)
			advisor.DELETE("/tasks/:id", taskHandler.Delete)

			// Attachments
			attachmentHandler := handlers.NewAttachmentHandler(db, svc.store, svc.hub)
			advisor.DELETE("/attachments/:id", attachmentHandler.Delete)

			// Meetings (write)
			meetingHandler := handlers.NewMeetingHandler(db, svc.store, svc.hub)
			advisor.POST("/meetings", meetingHandler.Create)
			advisor.PUT("/meetings/:id", meetingHandler.Update)
			advisor.DELETE("/meetings/:id", meetingHandler.Delete)

			// Students
			studentHandler := handlers.NewStudentHandler(db)
			advisor.GET("/students", studentHandler.List)
			advisor.GET("/users/students", studentHandler.ListAll)

			// System Config
			systemConfigHandler := handlers.NewSystemConfigHandler(db)
			advisor.GET("/system/config/:group", systemConfigHandler.GetGroup)
			advisor.PUT("/system/config/:group", systemConfigHandler.UpdateGroup)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(db)
			advisor.GET("/system/logs", systemLogHandler.List)
			advisor.GET("/system/logs/modules", systemLogHandler.GetModules)
			advisor.GET("/system/logs/retention", systemLogHandler.GetRetention)
			advisor.PUT("/system/logs/retention", systemLogHandler.SetRetention)
			advisor.POST("/system/logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
