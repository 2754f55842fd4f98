package main

import (
	"github.com/aiguild/guildtracker/internal/handlers"
	"github.com/aiguild/guildtracker/internal/middleware"
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public register endpoint
	registerLimiter := middleware.NewRateLimiter(1, 5)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", svc.authHandler.Login)

		// Browse, search, metrics (public)
		api.GET("/projects", svc.projectHandler.List)
		api.GET("/projects/:name", svc.projectHandler.Get)

		dashboardHandler := handlers.NewDashboardHandler(models.GetDB())
		api.GET("/dashboard/stats", dashboardHandler.GetStats)

		statusHandler := handlers.NewStatusHandler()
		api.GET("/statuses", statusHandler.List)

		// Register (public, rate limited)
		api.POST("/projects", registerLimiter.Middleware(), svc.projectHandler.Create)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
		}

		// Admin only routes (edit/delete surface)
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.PUT("/projects/:name", svc.projectHandler.Update)
			admin.DELETE("/projects/:name", svc.projectHandler.Delete)

			systemLogHandler := handlers.NewSystemLogHandler(models.GetDB())
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
